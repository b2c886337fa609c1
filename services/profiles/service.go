package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cinehub/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrUserIDRequired     = errors.New("user id is required")
	ErrNameRequired       = errors.New("profile name is required")
	ErrNameTooLong        = errors.New("profile name exceeds 50 characters")
	ErrNameTaken          = errors.New("profile name already exists for this user")
	ErrProfileLimit       = errors.New("maximum of 5 profiles allowed per user")
)

// Service manages persistence of viewing profiles. Each profile is a
// whole document: FindByID hands out a deep copy and Save replaces the
// stored document in full. Two concurrent read-modify-write cycles on the
// same profile therefore race, and the last writer wins; callers accept
// that (see the watchprog tests).
type Service struct {
	mu       sync.RWMutex
	path     string
	profiles map[string]models.Profile
}

// NewService creates a profiles service storing data inside the provided
// directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create profiles dir: %w", err)
	}

	svc := &Service{
		path:     filepath.Join(storageDir, "profiles.json"),
		profiles: make(map[string]models.Profile),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Create registers a new profile for the user, enforcing the name length,
// per-user uniqueness, and the five-profile cap.
func (s *Service) Create(userID, name string) (models.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Profile{}, ErrUserIDRequired
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Profile{}, ErrNameRequired
	}
	if len(name) > models.MaxProfileNameLength {
		return models.Profile{}, ErrNameTooLong
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owned := 0
	for _, p := range s.profiles {
		if p.UserID != userID {
			continue
		}
		owned++
		if strings.EqualFold(p.Name, name) {
			return models.Profile{}, ErrNameTaken
		}
	}
	if owned >= models.MaxProfilesPerUser {
		return models.Profile{}, ErrProfileLimit
	}

	now := time.Now().UTC()
	profile := models.Profile{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            name,
		WatchProgress:   make(map[string]float64),
		LikedContent:    []string{},
		CompletedSeries: []string{},
		WatchedHistory:  []models.WatchedHistoryEntry{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	s.profiles[profile.ID] = profile

	if err := s.saveLocked(); err != nil {
		return models.Profile{}, err
	}

	return profile.Clone(), nil
}

// Rename updates the profile display name, keeping it unique per user.
func (s *Service) Rename(id, name string) (models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Profile{}, ErrNameRequired
	}
	if len(name) > models.MaxProfileNameLength {
		return models.Profile{}, ErrNameTooLong
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[strings.TrimSpace(id)]
	if !ok {
		return models.Profile{}, ErrProfileNotFound
	}

	for _, other := range s.profiles {
		if other.ID != profile.ID && other.UserID == profile.UserID && strings.EqualFold(other.Name, name) {
			return models.Profile{}, ErrNameTaken
		}
	}

	profile.Name = name
	profile.UpdatedAt = time.Now().UTC()
	s.profiles[profile.ID] = profile

	if err := s.saveLocked(); err != nil {
		return models.Profile{}, err
	}

	return profile.Clone(), nil
}

// FindByID returns a deep copy of the profile, or nil when unknown.
func (s *Service) FindByID(id string) (*models.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}

	clone := profile.Clone()
	return &clone, nil
}

// Exists reports whether a profile with the provided ID is registered.
func (s *Service) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.profiles[strings.TrimSpace(id)]
	return ok
}

// ListByUser returns the user's profiles sorted by creation time.
func (s *Service) ListByUser(userID string) []models.Profile {
	userID = strings.TrimSpace(userID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Profile, 0)
	for _, p := range s.profiles {
		if p.UserID == userID {
			out = append(out, p.Clone())
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}

// Save replaces the stored profile document wholesale. The caller is
// expected to have obtained the document via FindByID; no version check
// is performed, so the last writer wins.
func (s *Service) Save(profile models.Profile) error {
	id := strings.TrimSpace(profile.ID)
	if id == "" {
		return ErrProfileNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; !ok {
		return ErrProfileNotFound
	}

	profile.UpdatedAt = time.Now().UTC()
	s.profiles[id] = profile.Clone()

	return s.saveLocked()
}

// Delete removes a profile by ID.
func (s *Service) Delete(id string) error {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; !ok {
		return ErrProfileNotFound
	}

	delete(s.profiles, id)

	return s.saveLocked()
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open profiles file: %w", err)
	}
	defer file.Close()

	dec := json.NewDecoder(file)
	var stored []models.Profile
	if err := dec.Decode(&stored); err != nil {
		return fmt.Errorf("decode profiles: %w", err)
	}

	s.profiles = make(map[string]models.Profile, len(stored))
	for _, profile := range stored {
		if strings.TrimSpace(profile.ID) == "" {
			continue
		}
		if profile.WatchProgress == nil {
			profile.WatchProgress = make(map[string]float64)
		}
		if profile.LikedContent == nil {
			profile.LikedContent = []string{}
		}
		if profile.CompletedSeries == nil {
			profile.CompletedSeries = []string{}
		}
		if profile.WatchedHistory == nil {
			profile.WatchedHistory = []models.WatchedHistoryEntry{}
		}
		s.profiles[profile.ID] = profile
	}

	return nil
}

func (s *Service) saveLocked() error {
	profiles := make([]models.Profile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		profiles = append(profiles, profile)
	}

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].ID < profiles[j].ID
		}
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create profiles temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profiles); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode profiles: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close profiles temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace profiles file: %w", err)
	}

	return nil
}
