package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cinehub/models"
	"cinehub/services/habits"
)

type habitService interface {
	Upsert(profileID string, req models.HabitUpsert) (*models.ViewingHabit, error)
	Get(profileID, contentID string) (*models.ViewingHabit, error)
	ListByProfile(profileID string) ([]models.ViewingHabit, error)
	Delete(profileID, contentID string) error
}

var _ habitService = (*habits.Service)(nil)

// HabitHandler serves the per-profile viewing-habit records.
type HabitHandler struct {
	Service habitService
}

func NewHabitHandler(service habitService) *HabitHandler {
	return &HabitHandler{Service: service}
}

// Upsert creates or merges the record for the (profile, content) pair.
func (h *HabitHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfileID(w, r)
	if !ok {
		return
	}

	var req models.HabitUpsert
	if !decodeBody(w, r, &req) {
		return
	}

	habit, err := h.Service.Upsert(profileID, req)
	if err != nil {
		respondHabitError(w, err)
		return
	}

	respondData(w, http.StatusOK, habit)
}

// List returns the profile's records, most recently watched first.
func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfileID(w, r)
	if !ok {
		return
	}

	records, err := h.Service.ListByProfile(profileID)
	if err != nil {
		respondHabitError(w, err)
		return
	}

	respondData(w, http.StatusOK, records)
}

// Get returns the record for one (profile, content) pair.
func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, contentID, ok := requireHabitPair(w, r)
	if !ok {
		return
	}

	habit, err := h.Service.Get(profileID, contentID)
	if err != nil {
		respondHabitError(w, err)
		return
	}

	respondData(w, http.StatusOK, habit)
}

// Delete removes the record for one pair.
func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profileID, contentID, ok := requireHabitPair(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(profileID, contentID); err != nil {
		respondHabitError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "viewing habit deleted")
}

func requireHabitPair(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	vars := mux.Vars(r)
	profileID := strings.TrimSpace(vars["profileID"])
	contentID := strings.TrimSpace(vars["contentID"])
	if profileID == "" || contentID == "" {
		respondError(w, http.StatusBadRequest, "profile id and content id are required")
		return "", "", false
	}
	return profileID, contentID, true
}

func respondHabitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, habits.ErrHabitNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, habits.ErrProfileIDRequired),
		errors.Is(err, habits.ErrContentIDRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
