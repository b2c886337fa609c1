package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"cinehub/handlers"
	"cinehub/models"
	"cinehub/services/accounts"
	"cinehub/services/profiles"
)

type fakeAccountService struct {
	users    map[string]models.User
	authErr  error
	regErr   error
	attached []string
	detached []string
}

func newFakeAccounts(users ...models.User) *fakeAccountService {
	f := &fakeAccountService{users: map[string]models.User{}}
	for _, user := range users {
		f.users[user.ID] = user
	}
	return f
}

func (f *fakeAccountService) Register(req models.RegisterRequest) (models.User, error) {
	if f.regErr != nil {
		return models.User{}, f.regErr
	}
	user := models.User{ID: "u-new", Username: req.Username, Email: req.Email, PasswordHash: "hash"}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeAccountService) Authenticate(username, password string) (models.User, error) {
	if f.authErr != nil {
		return models.User{}, f.authErr
	}
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, accounts.ErrInvalidCredentials
}

func (f *fakeAccountService) List() []models.User {
	out := make([]models.User, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, user)
	}
	return out
}

func (f *fakeAccountService) Get(id string) (models.User, bool) {
	user, ok := f.users[id]
	return user, ok
}

func (f *fakeAccountService) Exists(id string) bool {
	_, ok := f.users[id]
	return ok
}

func (f *fakeAccountService) Update(id string, update models.UserUpdate) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, accounts.ErrUserNotFound
	}
	if update.Email != "" {
		user.Email = update.Email
	}
	f.users[id] = user
	return user, nil
}

func (f *fakeAccountService) AttachProfile(userID, profileID string) error {
	f.attached = append(f.attached, profileID)
	return nil
}

func (f *fakeAccountService) DetachProfile(userID, profileID string) error {
	f.detached = append(f.detached, profileID)
	return nil
}

func (f *fakeAccountService) Delete(id string) error {
	if _, ok := f.users[id]; !ok {
		return accounts.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeProfileService struct {
	byID      map[string]models.Profile
	createErr error
	deleted   []string
}

func newFakeProfiles(items ...models.Profile) *fakeProfileService {
	f := &fakeProfileService{byID: map[string]models.Profile{}}
	for _, item := range items {
		f.byID[item.ID] = item
	}
	return f
}

func (f *fakeProfileService) Create(userID, name string) (models.Profile, error) {
	if f.createErr != nil {
		return models.Profile{}, f.createErr
	}
	profile := models.Profile{ID: "p-" + name, UserID: userID, Name: name}
	f.byID[profile.ID] = profile
	return profile, nil
}

func (f *fakeProfileService) Rename(id, name string) (models.Profile, error) {
	profile, ok := f.byID[id]
	if !ok {
		return models.Profile{}, profiles.ErrProfileNotFound
	}
	profile.Name = name
	f.byID[id] = profile
	return profile, nil
}

func (f *fakeProfileService) FindByID(id string) (*models.Profile, error) {
	profile, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (f *fakeProfileService) ListByUser(userID string) []models.Profile {
	var out []models.Profile
	for _, profile := range f.byID {
		if profile.UserID == userID {
			out = append(out, profile)
		}
	}
	return out
}

func (f *fakeProfileService) Delete(id string) error {
	if _, ok := f.byID[id]; !ok {
		return profiles.ErrProfileNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStatsService struct {
	summary models.StatisticsSummary
	err     error
}

func (f *fakeStatsService) Summary(userID string, days int) (models.StatisticsSummary, error) {
	return f.summary, f.err
}

type recordingCleanup struct {
	profiles []string
}

func (r *recordingCleanup) DeleteByProfile(profileID string) error {
	r.profiles = append(r.profiles, profileID)
	return nil
}

func TestUserHandler_RegisterCreatesFirstProfile(t *testing.T) {
	accountsSvc := newFakeAccounts()
	profilesSvc := newFakeProfiles()
	handler := handlers.NewUserHandler(accountsSvc, profilesSvc, &fakeStatsService{})

	body, _ := json.Marshal(models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var user models.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	if user.PasswordHash != "" {
		t.Fatal("password hash leaked into the response")
	}

	// The first profile inherits the username when no name was given.
	if _, ok := profilesSvc.byID["p-alice"]; !ok {
		t.Fatalf("expected default profile, have %v", profilesSvc.byID)
	}
	if len(accountsSvc.attached) != 1 {
		t.Fatalf("expected one attach, got %v", accountsSvc.attached)
	}
}

func TestUserHandler_RegisterConflict(t *testing.T) {
	accountsSvc := newFakeAccounts()
	accountsSvc.regErr = accounts.ErrUserExists
	handler := handlers.NewUserHandler(accountsSvc, newFakeProfiles(), &fakeStatsService{})

	body, _ := json.Marshal(models.RegisterRequest{Username: "alice", Email: "a@b.c", Password: "supersecret"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestUserHandler_LoginReturnsProfiles(t *testing.T) {
	user := models.User{ID: "u1", Username: "alice", PasswordHash: "hash"}
	profile := models.Profile{ID: "p1", UserID: "u1", Name: "Main"}
	handler := handlers.NewUserHandler(newFakeAccounts(user), newFakeProfiles(profile), &fakeStatsService{})

	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "supersecret"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var data struct {
		User     models.User      `json:"user"`
		Profiles []models.Profile `json:"profiles"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.User.PasswordHash != "" {
		t.Fatal("password hash leaked into the response")
	}
	if len(data.Profiles) != 1 || data.Profiles[0].ID != "p1" {
		t.Fatalf("unexpected profiles: %+v", data.Profiles)
	}
}

func TestUserHandler_LoginRejectsBadCredentials(t *testing.T) {
	accountsSvc := newFakeAccounts()
	accountsSvc.authErr = accounts.ErrInvalidCredentials
	handler := handlers.NewUserHandler(accountsSvc, newFakeProfiles(), &fakeStatsService{})

	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestUserHandler_GetUnknownUser(t *testing.T) {
	handler := handlers.NewUserHandler(newFakeAccounts(), newFakeProfiles(), &fakeStatsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/missing", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": "missing"})
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestUserHandler_DeleteCascadesProfiles(t *testing.T) {
	user := models.User{ID: "u1", Username: "alice"}
	main := models.Profile{ID: "p1", UserID: "u1", Name: "Main"}
	kids := models.Profile{ID: "p2", UserID: "u1", Name: "Kids"}

	accountsSvc := newFakeAccounts(user)
	profilesSvc := newFakeProfiles(main, kids)
	cleanup := &recordingCleanup{}
	handler := handlers.NewUserHandler(accountsSvc, profilesSvc, &fakeStatsService{}, cleanup)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/u1", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": "u1"})
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if accountsSvc.Exists("u1") {
		t.Fatal("account should be gone")
	}
	if len(profilesSvc.deleted) != 2 {
		t.Fatalf("expected both profiles deleted, got %v", profilesSvc.deleted)
	}
	if len(cleanup.profiles) != 2 {
		t.Fatalf("expected cleanup per profile, got %v", cleanup.profiles)
	}
}

func TestUserHandler_CreateProfileRequiresUser(t *testing.T) {
	handler := handlers.NewUserHandler(newFakeAccounts(), newFakeProfiles(), &fakeStatsService{})

	body, _ := json.Marshal(map[string]string{"userId": "missing", "name": "Kids"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/profiles", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateProfile(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestUserHandler_CreateProfileLimitMapsTo400(t *testing.T) {
	user := models.User{ID: "u1", Username: "alice"}
	accountsSvc := newFakeAccounts(user)
	profilesSvc := newFakeProfiles()
	profilesSvc.createErr = profiles.ErrProfileLimit
	handler := handlers.NewUserHandler(accountsSvc, profilesSvc, &fakeStatsService{})

	body, _ := json.Marshal(map[string]string{"userId": "u1", "name": "Sixth"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/profiles", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateProfile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestUserHandler_DeleteProfileRunsCleanups(t *testing.T) {
	user := models.User{ID: "u1", Username: "alice"}
	profile := models.Profile{ID: "p1", UserID: "u1", Name: "Main"}

	accountsSvc := newFakeAccounts(user)
	profilesSvc := newFakeProfiles(profile)
	cleanup := &recordingCleanup{}
	handler := handlers.NewUserHandler(accountsSvc, profilesSvc, &fakeStatsService{}, cleanup)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/profiles/p1", nil)
	req = mux.SetURLVars(req, map[string]string{"profileID": "p1"})
	rec := httptest.NewRecorder()

	handler.DeleteProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if len(cleanup.profiles) != 1 || cleanup.profiles[0] != "p1" {
		t.Fatalf("unexpected cleanups: %v", cleanup.profiles)
	}
	if len(accountsSvc.detached) != 1 || accountsSvc.detached[0] != "p1" {
		t.Fatalf("expected detach, got %v", accountsSvc.detached)
	}
}

func TestUserHandler_StatisticsValidation(t *testing.T) {
	user := models.User{ID: "u1", Username: "alice"}
	handler := handlers.NewUserHandler(newFakeAccounts(user), newFakeProfiles(), &fakeStatsService{
		summary: models.StatisticsSummary{Days: 7, TotalViews: 3},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users/statistics", nil)
	rec := httptest.NewRecorder()
	handler.Statistics(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without userId, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/users/statistics?userId=missing", nil)
	rec = httptest.NewRecorder()
	handler.Statistics(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/users/statistics?userId=u1&days=7", nil)
	rec = httptest.NewRecorder()
	handler.Statistics(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var summary models.StatisticsSummary
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if summary.TotalViews != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
