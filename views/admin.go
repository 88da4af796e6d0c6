package views

import (
	"fmt"

	"github.com/a-h/templ"
)

// AdminLogin renders the dashboard login form.
func AdminLogin(site Site, showError bool, csrfToken string) templ.Component {
	return simplePage(site, "Admin", func(w *writer) {
		w.raw("<h1>Admin</h1>")
		if showError {
			w.raw(`<p class="error" role="alert">Invalid password.</p>`)
		}
		w.raw(`<form method="post" action="/admin/login/" class="login">`)
		w.raw(`<input type="hidden" name="_csrf"`)
		w.attr("value", csrfToken)
		w.raw(">")
		w.raw(`<label for="password">Password</label>`)
		w.raw(`<input id="password" type="password" name="password" autocomplete="current-password" required autofocus>`)
		w.raw(`<button type="submit">Sign in</button></form>`)
	})
}

var periods = []struct{ key, label string }{
	{"today", "Today"},
	{"week", "7 days"},
	{"month", "30 days"},
	{"year", "12 months"},
}

// AdminDashboard renders the analytics overview.
func AdminDashboard(d DashboardData) templ.Component {
	return simplePage(d.Site, "Analytics", func(w *writer) {
		w.raw(`<div class="admin-bar"><h1>Analytics</h1>`)
		w.raw(`<form method="post" action="/admin/logout/"><input type="hidden" name="_csrf"`)
		w.attr("value", d.CSRFToken)
		w.raw(`><button type="submit">Log out</button></form></div>`)

		if !d.Enabled {
			w.raw(`<p class="notice">Analytics is disabled for this site.</p>`)
			return
		}

		w.raw(`<nav class="periods">`)
		for _, p := range periods {
			w.raw("<a")
			w.attr("href", "/admin/?period="+p.key)
			if p.key == d.Period {
				w.raw(` class="active"`)
			}
			w.raw(">")
			w.text(p.label)
			w.raw("</a>")
		}
		w.raw("</nav>")

		w.raw(`<div class="cards">`)
		card(w, "Views", fmt.Sprint(d.TotalViews))
		card(w, "Visitors", fmt.Sprint(d.UniqueVisitors))
		card(w, "Avg. time", formatDuration(d.AvgDuration))
		card(w, "Right now", fmt.Sprint(d.Realtime))
		w.raw("</div>")

		statTable(w, "Views over time", "Date", d.DailyViews)
		statTable(w, "Top pages", "Page", d.TopPages)
		statTable(w, "Referrers", "Source", d.Referrers)
		statTable(w, "Browsers", "Browser", d.Browsers)
		statTable(w, "Devices", "Device", d.Devices)
		statTable(w, "Crawlers", "Bot", d.TopBots)
	})
}

func card(w *writer, label, value string) {
	w.raw(`<div class="card"><span class="label">`)
	w.text(label)
	w.raw(`</span><span class="value">`)
	w.text(value)
	w.raw("</span></div>")
}

func statTable(w *writer, title, column string, rows []DimensionStat) {
	w.raw(`<section class="stat"><h2>`)
	w.text(title)
	w.raw("</h2>")
	if len(rows) == 0 {
		w.raw(`<p class="empty">No data yet.</p></section>`)
		return
	}
	w.raw("<table><thead><tr><th>")
	w.text(column)
	w.raw("</th><th>Count</th></tr></thead><tbody>")
	for _, r := range rows {
		w.raw("<tr><td>")
		w.text(r.Name)
		w.rawf("</td><td>%d</td></tr>", r.Count)
	}
	w.raw("</tbody></table></section>")
}

func formatDuration(sec int) string {
	if sec < 60 {
		return fmt.Sprintf("%ds", sec)
	}
	return fmt.Sprintf("%dm %ds", sec/60, sec%60)
}
