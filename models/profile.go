package models

import (
	"sort"
	"time"
)

// MaxProfileNameLength bounds the display name of a viewing profile.
const MaxProfileNameLength = 50

// WatchedHistoryEntry is a discrete "this profile watched this title"
// record embedded in a profile. Repeat watches of the same target append
// to WatchedAt rather than creating duplicate entries.
type WatchedHistoryEntry struct {
	ContentID string      `json:"contentId"`
	WatchedAt []time.Time `json:"watchedAt"`
	Duration  float64     `json:"duration"` // session length in seconds
}

// LastWatched returns the most recent accumulated timestamp, or the zero
// time when the entry has none.
func (e WatchedHistoryEntry) LastWatched() time.Time {
	var last time.Time
	for _, ts := range e.WatchedAt {
		if ts.After(last) {
			last = ts
		}
	}
	return last
}

// Profile is a named viewing identity under a user account. It
// exclusively owns its watch-progress map, liked set, completed-series
// set, and watched-history list; all mutations flow through the
// watch-progress reconciler or the profiles service.
type Profile struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`

	WatchProgress   map[string]float64    `json:"watchProgress"` // contentID -> seconds
	LikedContent    []string              `json:"likedContent"`
	CompletedSeries []string              `json:"completedSeries"`
	WatchedHistory  []WatchedHistoryEntry `json:"watchedHistory"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate without aliasing the
// stored document.
func (p Profile) Clone() Profile {
	out := p
	out.WatchProgress = make(map[string]float64, len(p.WatchProgress))
	for id, pos := range p.WatchProgress {
		out.WatchProgress[id] = pos
	}
	out.LikedContent = append([]string(nil), p.LikedContent...)
	out.CompletedSeries = append([]string(nil), p.CompletedSeries...)
	out.WatchedHistory = make([]WatchedHistoryEntry, len(p.WatchedHistory))
	for i, entry := range p.WatchedHistory {
		entry.WatchedAt = append([]time.Time(nil), entry.WatchedAt...)
		out.WatchedHistory[i] = entry
	}
	return out
}

// Likes reports whether the profile has liked the given content.
func (p Profile) Likes(contentID string) bool {
	for _, id := range p.LikedContent {
		if id == contentID {
			return true
		}
	}
	return false
}

// HasCompletedSeries reports whether the series id is in the profile's
// completed set.
func (p Profile) HasCompletedSeries(seriesID string) bool {
	for _, id := range p.CompletedSeries {
		if id == seriesID {
			return true
		}
	}
	return false
}

// HistoryEntry returns a pointer to the history entry for the given
// content id, or nil when none exists.
func (p *Profile) HistoryEntry(contentID string) *WatchedHistoryEntry {
	for i := range p.WatchedHistory {
		if p.WatchedHistory[i].ContentID == contentID {
			return &p.WatchedHistory[i]
		}
	}
	return nil
}

// RemoveHistoryEntry drops any history entry for the given content id and
// reports whether one was removed.
func (p *Profile) RemoveHistoryEntry(contentID string) bool {
	for i := range p.WatchedHistory {
		if p.WatchedHistory[i].ContentID == contentID {
			p.WatchedHistory = append(p.WatchedHistory[:i], p.WatchedHistory[i+1:]...)
			return true
		}
	}
	return false
}

// HistoryByRecency returns the watched history sorted by most recent
// watch timestamp first.
func (p Profile) HistoryByRecency() []WatchedHistoryEntry {
	entries := make([]WatchedHistoryEntry, len(p.WatchedHistory))
	copy(entries, p.WatchedHistory)
	sort.Slice(entries, func(i, j int) bool {
		li, lj := entries[i].LastWatched(), entries[j].LastWatched()
		if li.Equal(lj) {
			return entries[i].ContentID < entries[j].ContentID
		}
		return li.After(lj)
	})
	return entries
}
