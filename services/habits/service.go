package habits

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cinehub/models"
)

var (
	ErrHabitNotFound     = errors.New("viewing habit not found")
	ErrProfileIDRequired = errors.New("profile ID is required")
	ErrContentIDRequired = errors.New("content ID is required")
)

// Service stores the per profile-and-content viewing records. The unique
// (profile_id, content_id) constraint makes Upsert a true merge: a second
// write for the same pair updates the existing row.
type Service struct {
	db *sql.DB
}

// NewService creates a habit repository backed by the shared database.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

const habitColumns = `id, profile_id, content_id, watch_progress, liked, last_watched, created_at, updated_at`

// Upsert creates the record for the (profile, content) pair or merges the
// provided fields into the existing one. Omitted fields keep their stored
// values; last_watched always advances to now.
func (s *Service) Upsert(profileID string, req models.HabitUpsert) (*models.ViewingHabit, error) {
	if profileID == "" {
		return nil, ErrProfileIDRequired
	}
	if req.ContentID == "" {
		return nil, ErrContentIDRequired
	}

	now := time.Now().UTC()
	existing, err := s.Get(profileID, req.ContentID)
	if err != nil && !errors.Is(err, ErrHabitNotFound) {
		return nil, err
	}

	habit := models.ViewingHabit{
		ID:          uuid.New().String(),
		ProfileID:   profileID,
		ContentID:   req.ContentID,
		LastWatched: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existing != nil {
		habit = *existing
		habit.LastWatched = now
		habit.UpdatedAt = now
	}
	if req.WatchProgress != nil {
		progress := *req.WatchProgress
		if progress < 0 {
			progress = 0
		}
		habit.WatchProgress = progress
	}
	if req.Liked != nil {
		habit.Liked = *req.Liked
	}

	_, err = s.db.Exec(`
		INSERT INTO viewing_habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (profile_id, content_id) DO UPDATE SET
			watch_progress = excluded.watch_progress,
			liked = excluded.liked,
			last_watched = excluded.last_watched,
			updated_at = excluded.updated_at`,
		habit.ID, habit.ProfileID, habit.ContentID, habit.WatchProgress,
		habit.Liked, habit.LastWatched, habit.CreatedAt, habit.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save viewing habit: %w", err)
	}

	return s.Get(profileID, req.ContentID)
}

// Get returns the record for the pair, or ErrHabitNotFound.
func (s *Service) Get(profileID, contentID string) (*models.ViewingHabit, error) {
	row := s.db.QueryRow(`
		SELECT `+habitColumns+`
		FROM viewing_habits
		WHERE profile_id = ? AND content_id = ?`, profileID, contentID)

	habit, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load viewing habit: %w", err)
	}
	return habit, nil
}

// ListByProfile returns the profile's records, most recently watched
// first.
func (s *Service) ListByProfile(profileID string) ([]models.ViewingHabit, error) {
	if profileID == "" {
		return nil, ErrProfileIDRequired
	}

	rows, err := s.db.Query(`
		SELECT `+habitColumns+`
		FROM viewing_habits
		WHERE profile_id = ?
		ORDER BY last_watched DESC`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list viewing habits: %w", err)
	}
	defer rows.Close()

	habits := []models.ViewingHabit{}
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan viewing habit: %w", err)
		}
		habits = append(habits, *habit)
	}
	return habits, rows.Err()
}

// Delete removes the record for the pair.
func (s *Service) Delete(profileID, contentID string) error {
	result, err := s.db.Exec(`
		DELETE FROM viewing_habits
		WHERE profile_id = ? AND content_id = ?`, profileID, contentID)
	if err != nil {
		return fmt.Errorf("failed to delete viewing habit: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrHabitNotFound
	}
	return nil
}

// DeleteByProfile drops every record belonging to the profile. Used when
// a profile is removed.
func (s *Service) DeleteByProfile(profileID string) error {
	_, err := s.db.Exec(`DELETE FROM viewing_habits WHERE profile_id = ?`, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete viewing habits: %w", err)
	}
	return nil
}

// CountLiked returns how many of the profile's records are liked.
func (s *Service) CountLiked(profileID string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM viewing_habits
		WHERE profile_id = ? AND liked = 1`, profileID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count liked habits: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (*models.ViewingHabit, error) {
	var habit models.ViewingHabit
	err := row.Scan(&habit.ID, &habit.ProfileID, &habit.ContentID,
		&habit.WatchProgress, &habit.Liked, &habit.LastWatched,
		&habit.CreatedAt, &habit.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &habit, nil
}
