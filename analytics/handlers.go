package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler serves the collect endpoint and the stats API.
type Handler struct {
	store    *Store
	log      *zap.SugaredLogger
	limiter  *rateLimiter
	siteHost string
	now      func() time.Time
}

// NewHandler creates a Handler. siteHost is the public host of the site;
// referrers from it count as direct traffic. The collect endpoint is
// limited to 60 requests per IP per minute.
func NewHandler(store *Store, siteHost string, log *zap.SugaredLogger) *Handler {
	return &Handler{
		store:    store,
		log:      log,
		limiter:  newRateLimiter(60, time.Minute),
		siteHost: siteHost,
		now:      time.Now,
	}
}

// CollectRequest is the body sent by the tracking script.
type CollectRequest struct {
	Path        string `json:"path"`
	Referrer    string `json:"referrer"`
	ScreenSize  string `json:"screen_size"`
	DurationSec int    `json:"duration_sec"`
}

const (
	maxBodyLen       = 8 << 10
	maxPathLen       = 2048
	maxReferrerLen   = 2048
	maxScreenSizeLen = 32
	maxDurationSec   = 86400
)

func (r *CollectRequest) validate() error {
	switch {
	case r.Path == "" || !strings.HasPrefix(r.Path, "/"):
		return errors.New("path must be absolute")
	case len(r.Path) > maxPathLen:
		return fmt.Errorf("path exceeds %d bytes", maxPathLen)
	case len(r.Referrer) > maxReferrerLen:
		return fmt.Errorf("referrer exceeds %d bytes", maxReferrerLen)
	case len(r.ScreenSize) > maxScreenSizeLen:
		return fmt.Errorf("screen_size exceeds %d bytes", maxScreenSizeLen)
	case r.DurationSec < 0 || r.DurationSec > maxDurationSec:
		return fmt.Errorf("duration_sec out of range")
	}
	return nil
}

// Collect records a page view or, when DurationSec is set, the time spent
// on the last view of the path. It always answers 204 to valid requests so
// the script never retries.
func (h *Handler) Collect(c echo.Context) error {
	if !h.limiter.allow(c.RealIP()) {
		return c.NoContent(http.StatusTooManyRequests)
	}
	if c.Request().Header.Get("DNT") == "1" || c.Request().Header.Get("Sec-GPC") == "1" {
		return c.NoContent(http.StatusNoContent)
	}

	// sendBeacon posts text/plain, so the body is decoded regardless of
	// the content type.
	var req CollectRequest
	if err := json.NewDecoder(io.LimitReader(c.Request().Body, maxBodyLen)).Decode(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}
	if path, _, found := strings.Cut(req.Path, "?"); found {
		req.Path = path
	}
	if err := req.validate(); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}

	ctx := c.Request().Context()
	ua := c.Request().UserAgent()
	ip := c.RealIP()
	now := h.now().UTC()
	salt := h.store.Salt()

	if IsBot(ua) {
		err := h.store.SaveBotVisit(ctx, &BotVisit{
			BotName:   ExtractBotName(ua),
			IPHash:    HashIP(salt, ip),
			UserAgent: ua,
			Path:      req.Path,
			Timestamp: now,
		})
		if err != nil {
			h.log.Errorw("save bot visit", "err", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	visitorID := VisitorID(salt, ip, ua)

	// A beacon with a duration updates the existing view instead of
	// counting a new one.
	if req.DurationSec > 0 {
		if err := h.store.UpdateVisitDuration(ctx, visitorID, req.Path, req.DurationSec); err != nil {
			h.log.Errorw("update visit duration", "err", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	browser, os, device := ParseUserAgent(ua)
	err := h.store.SaveVisit(ctx, &Visit{
		VisitorID:  visitorID,
		SessionID:  SessionID(visitorID, now),
		IPHash:     HashIP(salt, ip),
		Browser:    browser,
		OS:         os,
		Device:     device,
		Path:       req.Path,
		Referrer:   CleanReferrer(req.Referrer, h.siteHost),
		ScreenSize: req.ScreenSize,
		Timestamp:  now,
	})
	if err != nil {
		h.log.Errorw("save visit", "err", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Summary is everything the dashboard shows for one period.
type Summary struct {
	Period   Period
	Stats    *Stats
	Bots     *BotStats
	Realtime int
}

// Summary loads visitor and crawler stats for the named period.
func (h *Handler) Summary(ctx context.Context, period string) (*Summary, error) {
	p := ParsePeriod(period)
	now := h.now()
	from, to := p.Range(now)

	stats, err := h.store.GetStats(ctx, from, to, p.Bucket)
	if err != nil {
		return nil, err
	}
	bots, err := h.store.GetBotStats(ctx, from, to, p.Bucket)
	if err != nil {
		return nil, err
	}
	realtime, err := h.store.RealtimeVisitors(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("realtime visitors: %w", err)
	}
	return &Summary{Period: p, Stats: stats, Bots: bots, Realtime: realtime}, nil
}

// StatsResponse is the JSON body of the stats endpoint.
type StatsResponse struct {
	Stats      *Stats `json:"stats"`
	Realtime   int    `json:"realtime_visitors"`
	Period     string `json:"period"`
	PeriodDays int    `json:"period_days"`
}

// GetStats returns visitor statistics as JSON.
func (h *Handler) GetStats(c echo.Context) error {
	s, err := h.Summary(c.Request().Context(), c.QueryParam("period"))
	if err != nil {
		h.log.Errorw("get stats", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, StatsResponse{
		Stats:      s.Stats,
		Realtime:   s.Realtime,
		Period:     s.Period.Name,
		PeriodDays: s.Period.Days,
	})
}

// BotStatsResponse is the JSON body of the bot stats endpoint.
type BotStatsResponse struct {
	Stats      *BotStats `json:"stats"`
	Period     string    `json:"period"`
	PeriodDays int       `json:"period_days"`
}

// GetBotStats returns crawler statistics as JSON.
func (h *Handler) GetBotStats(c echo.Context) error {
	p := ParsePeriod(c.QueryParam("period"))
	from, to := p.Range(h.now())
	stats, err := h.store.GetBotStats(c.Request().Context(), from, to, p.Bucket)
	if err != nil {
		h.log.Errorw("get bot stats", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, BotStatsResponse{
		Stats:      stats,
		Period:     p.Name,
		PeriodDays: p.Days,
	})
}

// RegisterRoutes mounts the public collect endpoint on e and the stats API
// on the admin group, guarded by auth.
func (h *Handler) RegisterRoutes(e *echo.Echo, admin *echo.Group, auth echo.MiddlewareFunc) {
	e.POST("/api/analytics/collect", h.Collect)
	admin.GET("/api/stats", h.GetStats, auth)
	admin.GET("/api/bot-stats", h.GetBotStats, auth)
}
