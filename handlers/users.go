package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cinehub/models"
	"cinehub/services/accounts"
	"cinehub/services/profiles"
	"cinehub/services/stats"
)

type accountService interface {
	Register(req models.RegisterRequest) (models.User, error)
	Authenticate(username, password string) (models.User, error)
	List() []models.User
	Get(id string) (models.User, bool)
	Exists(id string) bool
	Update(id string, update models.UserUpdate) (models.User, error)
	AttachProfile(userID, profileID string) error
	DetachProfile(userID, profileID string) error
	Delete(id string) error
}

var _ accountService = (*accounts.Service)(nil)

type profileService interface {
	Create(userID, name string) (models.Profile, error)
	Rename(id, name string) (models.Profile, error)
	FindByID(id string) (*models.Profile, error)
	ListByUser(userID string) []models.Profile
	Delete(id string) error
}

var _ profileService = (*profiles.Service)(nil)

type statisticsService interface {
	Summary(userID string, days int) (models.StatisticsSummary, error)
}

var _ statisticsService = (*stats.Service)(nil)

// profileCleanup removes per-profile data held outside the profile
// document when a profile goes away.
type profileCleanup interface {
	DeleteByProfile(profileID string) error
}

// UserHandler serves accounts, their viewing profiles and the
// statistics dashboard.
type UserHandler struct {
	Accounts accountService
	Profiles profileService
	Stats    statisticsService

	// Cleanups run after a profile delete; failures are logged, not
	// surfaced.
	Cleanups []profileCleanup
}

func NewUserHandler(accountsSvc accountService, profilesSvc profileService, statsSvc statisticsService, cleanups ...profileCleanup) *UserHandler {
	return &UserHandler{Accounts: accountsSvc, Profiles: profilesSvc, Stats: statsSvc, Cleanups: cleanups}
}

// Register creates an account plus its first viewing profile.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.Accounts.Register(req)
	if err != nil {
		respondAccountError(w, err)
		return
	}

	profileName := strings.TrimSpace(req.ProfileName)
	if profileName == "" {
		profileName = user.Username
	}

	profile, err := h.Profiles.Create(user.ID, profileName)
	if err != nil {
		log.Printf("[users] initial profile for %s: %v", user.ID, err)
	} else if err := h.Accounts.AttachProfile(user.ID, profile.ID); err != nil {
		log.Printf("[users] attach profile %s to %s: %v", profile.ID, user.ID, err)
	}

	refreshed, _ := h.Accounts.Get(user.ID)
	respondData(w, http.StatusCreated, refreshed.Public())
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials and returns the account with its profiles.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	user, err := h.Accounts.Authenticate(payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondAccountError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"user":     user.Public(),
		"profiles": h.Profiles.ListByUser(user.ID),
	})
}

// List returns every account without password material.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users := h.Accounts.List()
	public := make([]models.User, 0, len(users))
	for _, user := range users {
		public = append(public, user.Public())
	}
	respondData(w, http.StatusOK, public)
}

// Get returns one account.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	user, _ := h.Accounts.Get(userID)
	respondData(w, http.StatusOK, user.Public())
}

// Update modifies account fields.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var update models.UserUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	user, err := h.Accounts.Update(userID, update)
	if err != nil {
		respondAccountError(w, err)
		return
	}

	respondData(w, http.StatusOK, user.Public())
}

// Delete removes the account and all of its profiles.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	for _, profile := range h.Profiles.ListByUser(userID) {
		h.removeProfile(profile.ID)
	}

	if err := h.Accounts.Delete(userID); err != nil {
		respondAccountError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "user deleted")
}

type createProfilePayload struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// CreateProfile adds a viewing profile to an account.
func (h *UserHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var payload createProfilePayload
	if !decodeBody(w, r, &payload) {
		return
	}

	if !h.Accounts.Exists(strings.TrimSpace(payload.UserID)) {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	profile, err := h.Profiles.Create(payload.UserID, payload.Name)
	if err != nil {
		respondProfileError(w, err)
		return
	}

	if err := h.Accounts.AttachProfile(payload.UserID, profile.ID); err != nil {
		log.Printf("[users] attach profile %s to %s: %v", profile.ID, payload.UserID, err)
	}

	respondData(w, http.StatusCreated, profile)
}

// ListProfiles returns the account's viewing profiles.
func (h *UserHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	respondData(w, http.StatusOK, h.Profiles.ListByUser(userID))
}

// GetProfile returns one viewing profile with its embedded watch state.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfileID(w, r)
	if !ok {
		return
	}

	profile, err := h.Profiles.FindByID(profileID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}

	respondData(w, http.StatusOK, profile)
}

type renameProfilePayload struct {
	Name string `json:"name"`
}

// RenameProfile changes a profile's display name.
func (h *UserHandler) RenameProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfileID(w, r)
	if !ok {
		return
	}

	var payload renameProfilePayload
	if !decodeBody(w, r, &payload) {
		return
	}

	profile, err := h.Profiles.Rename(profileID, payload.Name)
	if err != nil {
		respondProfileError(w, err)
		return
	}

	respondData(w, http.StatusOK, profile)
}

// DeleteProfile removes a viewing profile and its side data.
func (h *UserHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfileID(w, r)
	if !ok {
		return
	}

	profile, err := h.Profiles.FindByID(profileID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}

	h.removeProfile(profileID)

	if err := h.Accounts.DetachProfile(profile.UserID, profileID); err != nil {
		log.Printf("[users] detach profile %s from %s: %v", profileID, profile.UserID, err)
	}

	respondMessage(w, http.StatusOK, "profile deleted")
}

// Statistics serves the dashboard summary for a user's trailing window.
func (h *UserHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userID := strings.TrimSpace(query.Get("userId"))
	if userID == "" {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if !h.Accounts.Exists(userID) {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	days := intQuery(query.Get("days"), 0)
	summary, err := h.Stats.Summary(userID, days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(w, http.StatusOK, summary)
}

func (h *UserHandler) removeProfile(profileID string) {
	if err := h.Profiles.Delete(profileID); err != nil {
		log.Printf("[users] delete profile %s: %v", profileID, err)
		return
	}
	for _, cleanup := range h.Cleanups {
		if err := cleanup.DeleteByProfile(profileID); err != nil {
			log.Printf("[users] cleanup for profile %s: %v", profileID, err)
		}
	}
}

func (h *UserHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	vars := mux.Vars(r)
	userID := strings.TrimSpace(vars["userID"])
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user id is required")
		return "", false
	}

	if !h.Accounts.Exists(userID) {
		respondError(w, http.StatusNotFound, "user not found")
		return "", false
	}

	return userID, true
}

func requireProfileID(w http.ResponseWriter, r *http.Request) (string, bool) {
	vars := mux.Vars(r)
	profileID := strings.TrimSpace(vars["profileID"])
	if profileID == "" {
		respondError(w, http.StatusBadRequest, "profile id is required")
		return "", false
	}
	return profileID, true
}

func respondAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounts.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, accounts.ErrUserExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, accounts.ErrUsernameRequired),
		errors.Is(err, accounts.ErrEmailRequired),
		errors.Is(err, accounts.ErrPasswordRequired),
		errors.Is(err, accounts.ErrPasswordTooShort):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profiles.ErrProfileNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, profiles.ErrNameTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, profiles.ErrUserIDRequired),
		errors.Is(err, profiles.ErrNameRequired),
		errors.Is(err, profiles.ErrNameTooLong),
		errors.Is(err, profiles.ErrProfileLimit):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
