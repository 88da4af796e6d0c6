package gofromts

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/tmkn/gofromts/analytics"
	"github.com/tmkn/gofromts/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(a.siteView(), false, CsrfToken(c)))
	}
	data := views.DashboardData{
		Site:      a.siteView(),
		Period:    analytics.ParsePeriod(c.QueryParam("period")).Name,
		CSRFToken: CsrfToken(c),
	}
	if a.analyticsHandler != nil {
		s, err := a.analyticsHandler.Summary(c.Request().Context(), c.QueryParam("period"))
		if err != nil {
			return err
		}
		fillDashboard(&data, s)
	}
	return Render(c, a.Views.AdminDashboard(data))
}

func fillDashboard(d *views.DashboardData, s *analytics.Summary) {
	d.Enabled = true
	d.Period = s.Period.Name
	d.Realtime = s.Realtime
	d.TotalViews = s.Stats.TotalViews
	d.UniqueVisitors = s.Stats.UniqueVisitors
	d.AvgDuration = s.Stats.AvgDuration
	d.TopPages = lo.Map(s.Stats.TopPages, func(p analytics.PageStat, _ int) views.DimensionStat {
		return views.DimensionStat{Name: p.Path, Count: p.Views}
	})
	d.Referrers = dimensionRows(s.Stats.ReferrerStats)
	d.Browsers = dimensionRows(s.Stats.BrowserStats)
	d.Devices = dimensionRows(s.Stats.DeviceStats)
	d.DailyViews = lo.Map(s.Stats.Views, func(v analytics.DailyView, _ int) views.DimensionStat {
		return views.DimensionStat{Name: v.Date, Count: v.Views}
	})
	d.TopBots = dimensionRows(s.Bots.TopBots)
}

func dimensionRows(rows []analytics.DimensionStat) []views.DimensionStat {
	return lo.Map(rows, func(r analytics.DimensionStat, _ int) views.DimensionStat {
		return views.DimensionStat{Name: r.Name, Count: r.Count}
	})
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.site.Admin.Password)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Log.Infow("failed admin login", "ip", ip)
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(a.siteView(), true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// requireAdmin rejects requests without an authenticated admin session.
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
		return next(c)
	}
}
