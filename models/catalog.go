package models

import "time"

// Catalog types. A profile gets at most one watchlist and one favorites
// list; custom lists are unrestricted.
const (
	CatalogTypeWatchlist = "watchlist"
	CatalogTypeFavorites = "favorites"
	CatalogTypeCustom    = "custom"
)

// Catalog is a named, ordered list of content ids owned by one profile.
// Names are unique per profile and content ids are deduplicated.
type Catalog struct {
	ID          string    `json:"id"`
	ProfileID   string    `json:"profileId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ContentIDs  []string  `json:"contentIds"`
	IsPublic    bool      `json:"isPublic"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Contains reports whether the catalog already holds the content id.
func (c Catalog) Contains(contentID string) bool {
	for _, id := range c.ContentIDs {
		if id == contentID {
			return true
		}
	}
	return false
}

// CatalogUpsert captures data required to create or update a catalog.
type CatalogUpsert struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"isPublic"`
	Type        string `json:"type,omitempty"`
}

// ValidCatalogType reports whether the supplied type is recognised.
func ValidCatalogType(catalogType string) bool {
	switch catalogType {
	case CatalogTypeWatchlist, CatalogTypeFavorites, CatalogTypeCustom:
		return true
	}
	return false
}
