package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const firefoxUA = "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0"

func newTestHandler(t *testing.T) (*Handler, *echo.Echo, time.Time) {
	t.Helper()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	h := NewHandler(newTestStore(t), "gofromts.tmkn.dev", zap.NewNop().Sugar())
	h.now = func() time.Time { return now }

	e := echo.New()
	admin := e.Group("/admin")
	h.RegisterRoutes(e, admin, func(next echo.HandlerFunc) echo.HandlerFunc { return next })
	return h, e, now
}

func collect(e *echo.Echo, body, ua string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/analytics/collect", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "text/plain;charset=UTF-8")
	req.Header.Set("User-Agent", ua)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCollectStoresVisitAndDuration(t *testing.T) {
	h, e, now := newTestHandler(t)
	ctx := context.Background()

	rec := collect(e, `{"path":"/basic/if/?utm=x","referrer":"https://www.google.com/","screen_size":"1920x1080"}`, firefoxUA, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = collect(e, `{"path":"/basic/if/","duration_sec":12}`, firefoxUA, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	from, to := ParsePeriod("week").Range(now)
	stats, err := h.store.GetStats(ctx, from, to, Daily)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalViews)
	assert.Equal(t, 12, stats.AvgDuration)
	assert.Equal(t, []PageStat{{Path: "/basic/if/", Views: 1}}, stats.TopPages)
	assert.Equal(t, []DimensionStat{{Name: "Google", Count: 1}}, stats.ReferrerStats)
}

func TestCollectSeparatesBots(t *testing.T) {
	h, e, now := newTestHandler(t)

	rec := collect(e, `{"path":"/"}`, "Mozilla/5.0 (compatible; bingbot/2.0)", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	from, to := ParsePeriod("week").Range(now)
	stats, err := h.store.GetStats(context.Background(), from, to, Daily)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalViews)

	bots, err := h.store.GetBotStats(context.Background(), from, to, Daily)
	require.NoError(t, err)
	assert.Equal(t, []DimensionStat{{Name: "Bingbot", Count: 1}}, bots.TopBots)
}

func TestCollectHonoursDoNotTrack(t *testing.T) {
	h, e, now := newTestHandler(t)

	rec := collect(e, `{"path":"/"}`, firefoxUA, map[string]string{"DNT": "1"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	from, to := ParsePeriod("week").Range(now)
	stats, err := h.store.GetStats(context.Background(), from, to, Daily)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalViews)
}

func TestCollectRejectsInvalidInput(t *testing.T) {
	_, e, _ := newTestHandler(t)

	for _, body := range []string{
		`not json`,
		`{"path":"relative"}`,
		`{"path":"/","duration_sec":-1}`,
		`{"path":"/","screen_size":"` + strings.Repeat("9", 40) + `"}`,
	} {
		rec := collect(e, body, firefoxUA, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestCollectRateLimit(t *testing.T) {
	_, e, _ := newTestHandler(t)

	var last int
	for i := 0; i < 61; i++ {
		last = collect(e, `{"path":"/"}`, firefoxUA, nil).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestGetStatsJSON(t *testing.T) {
	_, e, _ := newTestHandler(t)
	require.Equal(t, http.StatusNoContent, collect(e, `{"path":"/"}`, firefoxUA, nil).Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/stats?period=today", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "today", resp.Period)
	assert.Equal(t, 1, resp.Stats.TotalViews)
	assert.Len(t, resp.Stats.Views, 24)
	assert.Equal(t, 1, resp.Realtime)
}
