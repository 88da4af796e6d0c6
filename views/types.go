package views

import "time"

// Site holds the site-wide values every template needs.
type Site struct {
	Title       string
	Description string
	URL         string
	Social      []SocialLink
}

// SocialLink is an icon link in the site header.
type SocialLink struct {
	Icon  string
	Label string
	Href  string
}

// NavLink is a resolved sidebar entry.
type NavLink struct {
	Label    string
	Href     string
	Active   bool
	External bool
}

// NavGroup is a labelled sidebar group.
type NavGroup struct {
	Label string
	Items []NavLink
}

// HasActive reports whether the group contains the current page.
func (g NavGroup) HasActive() bool {
	for _, it := range g.Items {
		if it.Active {
			return true
		}
	}
	return false
}

// Heading is an entry of the "On this page" table of contents.
type Heading struct {
	Depth int
	Slug  string
	Text  string
}

// PageData carries everything the page template renders.
type PageData struct {
	Site        Site
	Title       string
	Head        string // rendered head tags, trusted
	Content     string // sanitized HTML
	Headings    []Heading
	Nav         []NavGroup
	Prev        *NavLink
	Next        *NavLink
	EditURL     string
	LastUpdated time.Time
}

// DimensionStat is one row of an analytics breakdown table.
type DimensionStat struct {
	Name  string
	Count int
}

// DashboardData is the view model of the analytics dashboard.
type DashboardData struct {
	Site           Site
	Period         string
	CSRFToken      string
	Enabled        bool
	TotalViews     int
	UniqueVisitors int
	AvgDuration    int
	Realtime       int
	TopPages       []DimensionStat
	Referrers      []DimensionStat
	Browsers       []DimensionStat
	Devices        []DimensionStat
	DailyViews     []DimensionStat
	TopBots        []DimensionStat
}
