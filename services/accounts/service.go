package accounts

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
	"golang.org/x/crypto/bcrypt"

	"cinehub/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameRequired   = errors.New("username is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrUserExists         = errors.New("user with this email or username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Service manages persistence of user accounts.
type Service struct {
	mu    sync.RWMutex
	path  string
	users map[string]models.User
}

// NewService creates an accounts service storing data inside the provided
// directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create accounts dir: %w", err)
	}

	svc := &Service{
		path:  filepath.Join(storageDir, "users.json"),
		users: make(map[string]models.User),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(req models.RegisterRequest) (models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if username == "" {
		return models.User{}, ErrUsernameRequired
	}
	if email == "" {
		return models.User{}, ErrEmailRequired
	}
	if req.Password == "" {
		return models.User{}, ErrPasswordRequired
	}
	if len(req.Password) < 6 {
		return models.User{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, username) || existing.Email == email {
			return models.User{}, ErrUserExists
		}
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		ProfileIDs:   []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.users[user.ID] = user

	if err := s.saveLocked(); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Authenticate verifies credentials against the stored hash. The username
// argument matches either username or email.
func (s *Service) Authenticate(username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	s.mu.RLock()
	var found *models.User
	for _, user := range s.users {
		if strings.EqualFold(user.Username, username) || strings.EqualFold(user.Email, username) {
			u := user
			found = &u
			break
		}
	}
	s.mu.RUnlock()

	if found == nil {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return *found, nil
}

// List returns all accounts sorted by creation time, then username.
func (s *Service) List() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Username < users[j].Username
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users
}

// Get returns the account with the given ID if present.
func (s *Service) Get(id string) (models.User, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.User{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	return user, ok
}

// Exists reports whether an account with the provided ID is registered.
func (s *Service) Exists(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Update applies the mutable account fields.
func (s *Service) Update(id string, update models.UserUpdate) (models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.User{}, ErrUserNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}

	if username := strings.TrimSpace(update.Username); username != "" {
		for otherID, other := range s.users {
			if otherID != id && strings.EqualFold(other.Username, username) {
				return models.User{}, ErrUserExists
			}
		}
		user.Username = username
	}
	if email := strings.ToLower(strings.TrimSpace(update.Email)); email != "" {
		for otherID, other := range s.users {
			if otherID != id && other.Email == email {
				return models.User{}, ErrUserExists
			}
		}
		user.Email = email
	}
	if first := strings.TrimSpace(update.FirstName); first != "" {
		user.FirstName = first
	}
	if last := strings.TrimSpace(update.LastName); last != "" {
		user.LastName = last
	}

	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user

	if err := s.saveLocked(); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// AttachProfile records profile ownership on the account.
func (s *Service) AttachProfile(userID, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}

	for _, id := range user.ProfileIDs {
		if id == profileID {
			return nil
		}
	}

	user.ProfileIDs = append(user.ProfileIDs, profileID)
	user.UpdatedAt = time.Now().UTC()
	s.users[userID] = user

	return s.saveLocked()
}

// DetachProfile removes profile ownership from the account.
func (s *Service) DetachProfile(userID, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}

	kept := user.ProfileIDs[:0]
	for _, id := range user.ProfileIDs {
		if id != profileID {
			kept = append(kept, id)
		}
	}
	user.ProfileIDs = kept
	user.UpdatedAt = time.Now().UTC()
	s.users[userID] = user

	return s.saveLocked()
}

// SetAdmin flags or unflags the account as an administrator.
func (s *Service) SetAdmin(id string, isAdmin bool) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}

	user.IsAdmin = isAdmin
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user

	if err := s.saveLocked(); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Delete removes an account by ID.
func (s *Service) Delete(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrUserNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrUserNotFound
	}

	delete(s.users, id)

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
		return fmt.Errorf("open users file: %w", err)
	}
	defer file.Close()

	dec := json.NewDecoder(file)
	var stored []models.User
	if err := dec.Decode(&stored); err != nil {
		return fmt.Errorf("decode users: %w", err)
	}

	s.users = make(map[string]models.User, len(stored))
	for _, user := range stored {
		if strings.TrimSpace(user.ID) == "" {
			continue
		}
		if user.ProfileIDs == nil {
			user.ProfileIDs = []string{}
		}
		s.users[user.ID] = user
	}

	return nil
}

func (s *Service) saveLocked() error {
	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Username < users[j].Username
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create users temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(users); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode users: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close users temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}

	return nil
}
