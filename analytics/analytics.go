// Package analytics provides privacy-first page view collection for the
// documentation site. Visitors are identified by salted hashes only.
package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// Visit represents a single page view.
type Visit struct {
	ID          int64     `json:"-"`
	VisitorID   string    `json:"visitor_id"` // salted hash of IP and User-Agent
	SessionID   string    `json:"session_id"` // visitor hash scoped to one UTC day
	IPHash      string    `json:"-"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	Device      string    `json:"device"` // Desktop, Mobile, Tablet
	Path        string    `json:"path"`
	Referrer    string    `json:"referrer"` // cleaned source name
	ScreenSize  string    `json:"screen_size"`
	Timestamp   time.Time `json:"timestamp"`
	DurationSec int       `json:"duration_sec"`
}

// BotVisit represents a single crawler page view.
type BotVisit struct {
	ID        int64     `json:"-"`
	BotName   string    `json:"bot_name"`
	IPHash    string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats holds aggregated visitor data for a period.
type Stats struct {
	Period         string            `json:"period"`
	UniqueVisitors int               `json:"unique_visitors"`
	TotalViews     int               `json:"total_views"`
	AvgDuration    int               `json:"avg_duration_sec"`
	TopPages       []PageStat        `json:"top_pages"`
	LatestPages    []LatestPageVisit `json:"latest_pages"`
	BrowserStats   []DimensionStat   `json:"browsers"`
	OSStats        []DimensionStat   `json:"os"`
	DeviceStats    []DimensionStat   `json:"devices"`
	ReferrerStats  []DimensionStat   `json:"referrers"`
	Views          []DailyView       `json:"views"`
}

// BotStats holds aggregated crawler data for a period.
type BotStats struct {
	Period      string          `json:"period"`
	TotalVisits int             `json:"total_visits"`
	TopBots     []DimensionStat `json:"top_bots"`
	TopPages    []PageStat      `json:"top_pages"`
	Visits      []DailyView     `json:"visits"`
}

// PageStat is the number of views of one path.
type PageStat struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// LatestPageVisit is a single recent page view.
type LatestPageVisit struct {
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
	Browser   string `json:"browser"`
}

// DimensionStat is one row of a breakdown (browser, OS, referrer...).
type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyView is the number of views in one time bucket. Date is the bucket
// label: "15:00" for hours, "2024-05-01" for days, "2024-05" for months.
type DailyView struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

func hash16(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// HashIP creates a salted hash of an IP address.
func HashIP(salt, ip string) string {
	return hash16(salt, ip)
}

// VisitorID derives an anonymous visitor id from IP and User-Agent.
func VisitorID(salt, ip, userAgent string) string {
	return hash16(salt, ip, userAgent)
}

// SessionID scopes a visitor id to the UTC day of t.
func SessionID(visitorID string, t time.Time) string {
	return hash16(visitorID, t.UTC().Format("2006-01-02"))
}

// ParseUserAgent extracts browser, OS and device class from a User-Agent.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	// Specific tokens first: Edge and Opera UAs also contain "chrome".
	switch {
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		browser = "Opera"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome") || strings.Contains(ua, "crios"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	// Android UAs contain "linux".
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	// iPad UAs contain "mobile".
	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}
	return browser, os, device
}

var botTokens = []string{
	"bot", "crawler", "spider", "crawl", "slurp", "scrape",
	"yandex", "baidu", "facebookexternalhit", "headlesschrome",
}

// IsBot reports whether the User-Agent is likely a crawler.
func IsBot(ua string) bool {
	if strings.TrimSpace(ua) == "" {
		return true
	}
	ua = strings.ToLower(ua)
	for _, tok := range botTokens {
		if strings.Contains(ua, tok) {
			return true
		}
	}
	return false
}

// botNames is checked in order; generic tokens come last.
var botNames = []struct{ token, name string }{
	{"googlebot", "Googlebot"},
	{"bingbot", "Bingbot"},
	{"duckduckbot", "DuckDuckBot"},
	{"yandex", "Yandex"},
	{"baidu", "Baidu"},
	{"applebot", "Applebot"},
	{"facebookexternalhit", "Facebook"},
	{"twitterbot", "Twitterbot"},
	{"linkedinbot", "LinkedIn"},
	{"slackbot", "Slack"},
	{"discordbot", "Discord"},
	{"gptbot", "GPTBot"},
	{"claudebot", "ClaudeBot"},
	{"ahrefsbot", "Ahrefs"},
	{"semrushbot", "SEMrush"},
	{"mj12bot", "Majestic"},
	{"dotbot", "Moz"},
	{"slurp", "Yahoo Slurp"},
	{"headlesschrome", "Headless Chrome"},
	{"crawler", "Generic Crawler"},
	{"spider", "Generic Spider"},
}

// ExtractBotName names the crawler behind a User-Agent.
func ExtractBotName(ua string) string {
	ua = strings.ToLower(ua)
	for _, b := range botNames {
		if strings.Contains(ua, b.token) {
			return b.name
		}
	}
	if strings.Contains(ua, "bot") {
		return "Other Bot"
	}
	return "Unknown"
}

var knownReferrers = []struct{ token, name string }{
	{"google.", "Google"},
	{"bing.", "Bing"},
	{"duckduckgo.", "DuckDuckGo"},
	{"yahoo.", "Yahoo"},
	{"github.", "GitHub"},
	{"news.ycombinator.", "Hacker News"},
	{"reddit.", "Reddit"},
	{"t.co", "X"},
	{"x.com", "X"},
}

// CleanReferrer reduces a referrer URL to a source name. Referrers from
// selfHost count as direct traffic.
func CleanReferrer(ref, selfHost string) string {
	if ref == "" {
		return "Direct"
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return "Other"
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if selfHost != "" && host == strings.TrimPrefix(strings.ToLower(selfHost), "www.") {
		return "Direct"
	}
	for _, r := range knownReferrers {
		if host == r.token || strings.HasPrefix(host, r.token) || strings.Contains(host, "."+r.token) {
			return r.name
		}
	}
	return host
}

// Bucket is the granularity of a views-over-time series.
type Bucket int

const (
	Daily Bucket = iota
	Hourly
	Monthly
)

// Period is a named reporting window.
type Period struct {
	Name   string
	Days   int
	Bucket Bucket
}

// ParsePeriod maps today, week, month and year to a Period; anything else
// is week.
func ParsePeriod(name string) Period {
	switch name {
	case "today":
		return Period{Name: name, Days: 1, Bucket: Hourly}
	case "month":
		return Period{Name: name, Days: 30, Bucket: Daily}
	case "year":
		return Period{Name: name, Days: 365, Bucket: Monthly}
	default:
		return Period{Name: "week", Days: 7, Bucket: Daily}
	}
}

// Range returns the half-open [from, to) window of p ending at now.
// Hourly periods cover the last 24 whole hours including the current one.
func (p Period) Range(now time.Time) (from, to time.Time) {
	now = now.UTC()
	if p.Bucket == Hourly {
		to = now.Truncate(time.Hour).Add(time.Hour)
		return to.Add(-24 * time.Hour), to
	}
	to = now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	return to.AddDate(0, 0, -p.Days), to
}
