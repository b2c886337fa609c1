package catalogs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
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
	ErrProfileIDRequired  = errors.New("profile id is required")
	ErrCatalogIDRequired  = errors.New("catalog id is required")
	ErrContentIDRequired  = errors.New("content id is required")
	ErrNameRequired       = errors.New("catalog name is required")
	ErrNameTaken          = errors.New("a catalog with that name already exists")
	ErrInvalidType        = errors.New("invalid catalog type")
	ErrCatalogNotFound    = errors.New("catalog not found")
)

// Service manages persistence and retrieval of per-profile content
// catalogs (watchlist, favorites and custom lists).
type Service struct {
	mu       sync.RWMutex
	path     string
	catalogs map[string]map[string]models.Catalog // profileID -> catalogID -> catalog
}

// NewService creates a catalog service storing data inside the provided directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create catalogs dir: %w", err)
	}

	svc := &Service{
		path:     filepath.Join(storageDir, "catalogs.json"),
		catalogs: make(map[string]map[string]models.Catalog),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// ListByProfile returns the profile's catalogs sorted by most recent first.
func (s *Service) ListByProfile(profileID string) ([]models.Catalog, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, ErrProfileIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	catalogs := make([]models.Catalog, 0)
	if perProfile, ok := s.catalogs[profileID]; ok {
		catalogs = make([]models.Catalog, 0, len(perProfile))
		for _, catalog := range perProfile {
			catalogs = append(catalogs, cloneCatalog(catalog))
		}
	}

	sort.Slice(catalogs, func(i, j int) bool {
		if catalogs[i].CreatedAt.Equal(catalogs[j].CreatedAt) {
			return catalogs[i].ID < catalogs[j].ID
		}
		return catalogs[i].CreatedAt.After(catalogs[j].CreatedAt)
	})

	return catalogs, nil
}

// Get returns one catalog belonging to the profile.
func (s *Service) Get(profileID, catalogID string) (models.Catalog, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return models.Catalog{}, ErrProfileIDRequired
	}
	if strings.TrimSpace(catalogID) == "" {
		return models.Catalog{}, ErrCatalogIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	catalog, ok := s.catalogs[profileID][catalogID]
	if !ok {
		return models.Catalog{}, ErrCatalogNotFound
	}

	return cloneCatalog(catalog), nil
}

// Create adds a new catalog for the profile. Names are unique per
// profile, compared case-insensitively.
func (s *Service) Create(profileID string, input models.CatalogUpsert) (models.Catalog, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return models.Catalog{}, ErrProfileIDRequired
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Catalog{}, ErrNameRequired
	}

	catalogType := strings.ToLower(strings.TrimSpace(input.Type))
	if catalogType == "" {
		catalogType = models.CatalogTypeCustom
	}
	if !models.ValidCatalogType(catalogType) {
		return models.Catalog{}, ErrInvalidType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perProfile := s.ensureProfileLocked(profileID)
	if s.nameTakenLocked(perProfile, name, "") {
		return models.Catalog{}, ErrNameTaken
	}

	now := time.Now().UTC()
	catalog := models.Catalog{
		ID:          uuid.New().String(),
		ProfileID:   profileID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		ContentIDs:  []string{},
		IsPublic:    input.IsPublic,
		Type:        catalogType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	perProfile[catalog.ID] = catalog

	if err := s.saveLocked(); err != nil {
		return models.Catalog{}, err
	}

	return cloneCatalog(catalog), nil
}

// Update modifies a catalog's metadata. The type is fixed at creation.
func (s *Service) Update(profileID, catalogID string, input models.CatalogUpsert) (models.Catalog, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return models.Catalog{}, ErrProfileIDRequired
	}
	if strings.TrimSpace(catalogID) == "" {
		return models.Catalog{}, ErrCatalogIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perProfile := s.ensureProfileLocked(profileID)
	catalog, ok := perProfile[catalogID]
	if !ok {
		return models.Catalog{}, ErrCatalogNotFound
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		if s.nameTakenLocked(perProfile, name, catalogID) {
			return models.Catalog{}, ErrNameTaken
		}
		catalog.Name = name
	}
	if input.Description != "" {
		catalog.Description = strings.TrimSpace(input.Description)
	}
	catalog.IsPublic = input.IsPublic
	catalog.UpdatedAt = time.Now().UTC()

	perProfile[catalogID] = catalog

	if err := s.saveLocked(); err != nil {
		return models.Catalog{}, err
	}

	return cloneCatalog(catalog), nil
}

// AddContent appends a content id to the catalog; adding an id that is
// already present is a no-op.
func (s *Service) AddContent(profileID, catalogID, contentID string) (models.Catalog, error) {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return models.Catalog{}, ErrContentIDRequired
	}

	return s.mutate(profileID, catalogID, func(catalog *models.Catalog) {
		if catalog.Contains(contentID) {
			return
		}
		catalog.ContentIDs = append(catalog.ContentIDs, contentID)
		catalog.UpdatedAt = time.Now().UTC()
	})
}

// RemoveContent drops a content id from the catalog; removing an absent
// id is a no-op.
func (s *Service) RemoveContent(profileID, catalogID, contentID string) (models.Catalog, error) {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return models.Catalog{}, ErrContentIDRequired
	}

	return s.mutate(profileID, catalogID, func(catalog *models.Catalog) {
		kept := catalog.ContentIDs[:0]
		removed := false
		for _, id := range catalog.ContentIDs {
			if id == contentID {
				removed = true
				continue
			}
			kept = append(kept, id)
		}
		catalog.ContentIDs = kept
		if removed {
			catalog.UpdatedAt = time.Now().UTC()
		}
	})
}

// Delete removes a catalog entirely.
func (s *Service) Delete(profileID, catalogID string) error {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return ErrProfileIDRequired
	}
	if strings.TrimSpace(catalogID) == "" {
		return ErrCatalogIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perProfile, ok := s.catalogs[profileID]
	if !ok {
		return ErrCatalogNotFound
	}
	if _, exists := perProfile[catalogID]; !exists {
		return ErrCatalogNotFound
	}

	delete(perProfile, catalogID)

	return s.saveLocked()
}

// DeleteByProfile drops every catalog belonging to the profile.
func (s *Service) DeleteByProfile(profileID string) error {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return ErrProfileIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalogs[profileID]; !ok {
		return nil
	}

	delete(s.catalogs, profileID)

	return s.saveLocked()
}

func (s *Service) mutate(profileID, catalogID string, apply func(*models.Catalog)) (models.Catalog, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return models.Catalog{}, ErrProfileIDRequired
	}
	if strings.TrimSpace(catalogID) == "" {
		return models.Catalog{}, ErrCatalogIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perProfile := s.ensureProfileLocked(profileID)
	catalog, ok := perProfile[catalogID]
	if !ok {
		return models.Catalog{}, ErrCatalogNotFound
	}

	apply(&catalog)
	perProfile[catalogID] = catalog

	if err := s.saveLocked(); err != nil {
		return models.Catalog{}, err
	}

	return cloneCatalog(catalog), nil
}

func (s *Service) nameTakenLocked(perProfile map[string]models.Catalog, name, excludeID string) bool {
	for id, catalog := range perProfile {
		if id == excludeID {
			continue
		}
		if strings.EqualFold(catalog.Name, name) {
			return true
		}
	}
	return false
}

func (s *Service) ensureProfileLocked(profileID string) map[string]models.Catalog {
	perProfile, ok := s.catalogs[profileID]
	if !ok {
		perProfile = make(map[string]models.Catalog)
		s.catalogs[profileID] = perProfile
	}
	return perProfile
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.catalogs = make(map[string]map[string]models.Catalog)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open catalogs: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read catalogs: %w", err)
	}
	if len(data) == 0 {
		s.catalogs = make(map[string]map[string]models.Catalog)
		return nil
	}

	var byProfile map[string][]models.Catalog
	if err := json.Unmarshal(data, &byProfile); err != nil {
		return fmt.Errorf("decode catalogs: %w", err)
	}

	s.catalogs = make(map[string]map[string]models.Catalog, len(byProfile))
	for profileID, list := range byProfile {
		profileID = strings.TrimSpace(profileID)
		if profileID == "" {
			continue
		}
		perProfile := make(map[string]models.Catalog, len(list))
		for _, catalog := range list {
			if catalog.ContentIDs == nil {
				catalog.ContentIDs = []string{}
			}
			perProfile[catalog.ID] = catalog
		}
		s.catalogs[profileID] = perProfile
	}

	return nil
}

func (s *Service) saveLocked() error {
	byProfile := make(map[string][]models.Catalog, len(s.catalogs))
	for profileID, collection := range s.catalogs {
		list := make([]models.Catalog, 0, len(collection))
		for _, catalog := range collection {
			list = append(list, catalog)
		}

		sort.Slice(list, func(i, j int) bool {
			if list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].ID < list[j].ID
			}
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})

		byProfile[profileID] = list
	}

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create catalogs temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(byProfile); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode catalogs: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync catalogs: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close catalogs temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace catalogs file: %w", err)
	}

	return nil
}

func cloneCatalog(catalog models.Catalog) models.Catalog {
	copied := catalog
	copied.ContentIDs = append([]string(nil), catalog.ContentIDs...)
	if copied.ContentIDs == nil {
		copied.ContentIDs = []string{}
	}
	return copied
}
