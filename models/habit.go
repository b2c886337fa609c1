package models

import "time"

// ViewingHabit is the legacy per profile-and-content tracking record,
// kept in its own table with a unique (profile, content) pair. It runs in
// parallel to the profile's embedded watch state.
type ViewingHabit struct {
	ID            string    `json:"id"`
	ProfileID     string    `json:"profileId"`
	ContentID     string    `json:"contentId"`
	WatchProgress float64   `json:"watchProgress"` // seconds
	Liked         bool      `json:"liked"`
	LastWatched   time.Time `json:"lastWatched"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HabitUpsert captures a create-or-update request for a viewing habit.
type HabitUpsert struct {
	ContentID     string   `json:"contentId"`
	WatchProgress *float64 `json:"watchProgress,omitempty"`
	Liked         *bool    `json:"liked,omitempty"`
}
