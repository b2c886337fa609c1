package models

import "time"

// Content types recognised by the catalog.
const (
	ContentTypeMovie   = "movie"
	ContentTypeSeries  = "series"
	ContentTypeEpisode = "episode"
)

// ContentRatings lists the accepted certification labels.
var ContentRatings = []string{
	"G", "PG", "PG-13", "R", "NC-17",
	"TV-Y", "TV-Y7", "TV-G", "TV-PG", "TV-14", "TV-MA",
}

// Content models a single catalog item: a movie, a series, or one episode
// of a series. Episodes carry a back-reference to their parent series and
// are discovered by querying content with a matching SeriesID.
type Content struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	Year        int      `json:"year"`
	Duration    int      `json:"duration"` // minutes
	Rating      string   `json:"rating"`
	Type        string   `json:"type"` // movie | series | episode

	// Episode-specific fields
	EpisodeNumber int    `json:"episodeNumber,omitempty"`
	SeriesID      string `json:"seriesId,omitempty"`

	Director   string   `json:"director,omitempty"`
	Cast       []string `json:"cast,omitempty"`
	VideoURL   string   `json:"videoUrl,omitempty"`
	TrailerURL string   `json:"trailerUrl,omitempty"`
	ImageURL   string   `json:"imageUrl,omitempty"`

	StarRating int  `json:"starRating,omitempty"` // 1-5
	Popularity int  `json:"popularity,omitempty"` // 1-5
	IsActive   bool `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsEpisode reports whether the content is an episode of a series.
func (c Content) IsEpisode() bool {
	return c.Type == ContentTypeEpisode
}

// ValidRating reports whether the supplied certification label is known.
func ValidRating(rating string) bool {
	for _, r := range ContentRatings {
		if r == rating {
			return true
		}
	}
	return false
}

// ValidContentType reports whether the supplied type is one of the
// recognised content types.
func ValidContentType(contentType string) bool {
	switch contentType {
	case ContentTypeMovie, ContentTypeSeries, ContentTypeEpisode:
		return true
	}
	return false
}

// ContentUpsert captures the fields accepted when creating or updating a
// catalog item.
type ContentUpsert struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Genres        []string `json:"genres"`
	Year          int      `json:"year"`
	Duration      int      `json:"duration"`
	Rating        string   `json:"rating"`
	Type          string   `json:"type"`
	EpisodeNumber int      `json:"episodeNumber,omitempty"`
	SeriesID      string   `json:"seriesId,omitempty"`
	Director      string   `json:"director,omitempty"`
	Cast          []string `json:"cast,omitempty"`
	VideoURL      string   `json:"videoUrl,omitempty"`
	TrailerURL    string   `json:"trailerUrl,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	StarRating    int      `json:"starRating,omitempty"`
	Popularity    int      `json:"popularity,omitempty"`
}

// ContentPage is a paginated slice of catalog items.
type ContentPage struct {
	Items      []Content `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}
