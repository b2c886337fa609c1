package models

// ProfileDayCount is one profile's view count on a single day.
type ProfileDayCount struct {
	ProfileID string `json:"profileId"`
	Count     int    `json:"count"`
}

// DailyViews buckets view counts for one calendar day, labelled the way
// the dashboard renders it (e.g. "Jan 5").
type DailyViews struct {
	Date     string            `json:"date"`
	Profiles []ProfileDayCount `json:"profiles"`
}

// ProfileStats summarises one profile inside a statistics window.
type ProfileStats struct {
	ProfileID string  `json:"profileId"`
	Name      string  `json:"name"`
	Views     int     `json:"views"`
	Hours     float64 `json:"hours"`
	Favorites int     `json:"favorites"`
}

// GenreContentStats ranks one content item inside a genre bucket.
type GenreContentStats struct {
	ContentID  string `json:"contentId"`
	Title      string `json:"title"`
	Views      int    `json:"views"`
	Popularity int    `json:"popularity,omitempty"`
}

// GenreStats aggregates total views for a genre across the window.
type GenreStats struct {
	Genre      string              `json:"genre"`
	TotalViews int                 `json:"totalViews"`
	TopContent []GenreContentStats `json:"topContent"`
}

// StatisticsSummary is the dashboard payload for one user over a trailing
// N-day window. A user with no profiles or history gets a valid zeroed
// summary, never an error.
type StatisticsSummary struct {
	Days          int            `json:"days"`
	TotalViews    int            `json:"totalViews"`
	UniqueContent int            `json:"uniqueContent"`
	TotalHours    float64        `json:"totalHours"`
	LikedContent  int            `json:"likedContent"`
	DailyViews    []DailyViews   `json:"dailyViews"`
	ContentTypes  map[string]int `json:"contentTypes"`
	Profiles      []ProfileRef   `json:"profiles"`
	ProfileStats  []ProfileStats `json:"profileStats"`
	TopGenres     []GenreStats   `json:"topGenres"`
}

// ProfileRef is the minimal profile identity the dashboard needs for
// chart legends.
type ProfileRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
