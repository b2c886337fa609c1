package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cinehub/models"
	"cinehub/services/watchprog"
)

type watchProgressService interface {
	RecordProgress(profileID, contentID string, position float64) error
	Progress(profileID, contentID string) (float64, bool, error)
	ResetProgress(profileID, contentID string) error
	ResetSeriesProgress(profileID string, episodeIDs []string) error
	ToggleLike(profileID, contentID string) (bool, error)
	TrackWatch(profileID, contentID string) error
	MarkWatched(profileID, contentID string, watched bool, duration float64) error
	ContinueWatching(profileID string, limit int) ([]models.Content, error)
}

var _ watchProgressService = (*watchprog.Service)(nil)

// WatchProgressHandler exposes the watch-state reconciler over HTTP.
type WatchProgressHandler struct {
	Service watchProgressService
}

func NewWatchProgressHandler(service watchProgressService) *WatchProgressHandler {
	return &WatchProgressHandler{Service: service}
}

type progressPayload struct {
	ProfileID string  `json:"profileId"`
	ContentID string  `json:"contentId"`
	Position  float64 `json:"position"`
}

// Record stores a playback position reported by the player.
func (h *WatchProgressHandler) Record(w http.ResponseWriter, r *http.Request) {
	var payload progressPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	if err := h.Service.RecordProgress(payload.ProfileID, payload.ContentID, payload.Position); err != nil {
		respondWatchError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "watch progress updated")
}

// Get returns the stored position and liked flag for the pair; unknown
// pairs answer with zero progress rather than an error.
func (h *WatchProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, contentID, ok := requirePair(w, r)
	if !ok {
		return
	}

	position, liked, err := h.Service.Progress(profileID, contentID)
	if err != nil {
		respondWatchError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"profileId":     profileID,
		"contentId":     contentID,
		"watchProgress": position,
		"liked":         liked,
	})
}

// Update overwrites the stored position for the pair named in the URL.
func (h *WatchProgressHandler) Update(w http.ResponseWriter, r *http.Request) {
	profileID, contentID, ok := requirePair(w, r)
	if !ok {
		return
	}

	var payload progressPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	if err := h.Service.RecordProgress(profileID, contentID, payload.Position); err != nil {
		respondWatchError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "watch progress updated")
}

type resetPayload struct {
	ProfileID string `json:"profileId"`
	ContentID string `json:"contentId"`
}

// Reset clears progress for a single content item.
func (h *WatchProgressHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var payload resetPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	if err := h.Service.ResetProgress(payload.ProfileID, payload.ContentID); err != nil {
		respondWatchError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "watch progress reset")
}

type resetSeriesPayload struct {
	ProfileID  string   `json:"profileId"`
	EpisodeIDs []string `json:"episodeIds"`
}

// ResetSeries zeroes every listed episode's progress. The operation is
// best effort: a failing episode lookup stops the sweep but what was
// already zeroed stays applied.
func (h *WatchProgressHandler) ResetSeries(w http.ResponseWriter, r *http.Request) {
	var payload resetSeriesPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	if len(payload.EpisodeIDs) == 0 {
		respondError(w, http.StatusBadRequest, "episodeIds is required")
		return
	}

	if err := h.Service.ResetSeriesProgress(payload.ProfileID, payload.EpisodeIDs); err != nil {
		respondWatchError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "series progress reset")
}

// Like toggles the liked flag and reports the new state.
func (h *WatchProgressHandler) Like(w http.ResponseWriter, r *http.Request) {
	var payload resetPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	liked, err := h.Service.ToggleLike(payload.ProfileID, payload.ContentID)
	if err != nil {
		respondWatchError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{"liked": liked})
}

// TrackWatch appends a view timestamp to the profile's history. Episode
// ids are attributed to their parent series.
func (h *WatchProgressHandler) TrackWatch(w http.ResponseWriter, r *http.Request) {
	var payload resetPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	if err := h.Service.TrackWatch(payload.ProfileID, payload.ContentID); err != nil {
		respondWatchError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "watch recorded")
}

type markWatchedPayload struct {
	ProfileID string  `json:"profileId"`
	ContentID string  `json:"contentId"`
	Watched   bool    `json:"watched"`
	Duration  float64 `json:"duration"`
}

// MarkWatched flips an item in or out of the watched history.
func (h *WatchProgressHandler) MarkWatched(w http.ResponseWriter, r *http.Request) {
	var payload markWatchedPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	if err := h.Service.MarkWatched(payload.ProfileID, payload.ContentID, payload.Watched, payload.Duration); err != nil {
		respondWatchError(w, err)
		return
	}

	if payload.Watched {
		respondMessage(w, http.StatusOK, "content marked as watched")
		return
	}
	respondMessage(w, http.StatusOK, "content removed from watched history")
}

// ContinueWatching returns the resumable shelf for a profile.
func (h *WatchProgressHandler) ContinueWatching(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	profileID := strings.TrimSpace(vars["profileID"])
	if profileID == "" {
		respondError(w, http.StatusBadRequest, "profile id is required")
		return
	}

	items, err := h.Service.ContinueWatching(profileID, watchprog.DefaultContinueWatchingLimit)
	if err != nil {
		respondWatchError(w, err)
		return
	}

	respondData(w, http.StatusOK, items)
}

func requirePair(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	vars := mux.Vars(r)
	profileID := strings.TrimSpace(vars["profileID"])
	contentID := strings.TrimSpace(vars["contentID"])
	if profileID == "" || contentID == "" {
		respondError(w, http.StatusBadRequest, "profile id and content id are required")
		return "", "", false
	}
	return profileID, contentID, true
}

func respondWatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, watchprog.ErrProfileNotFound),
		errors.Is(err, watchprog.ErrContentNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, watchprog.ErrProfileIDRequired),
		errors.Is(err, watchprog.ErrContentIDRequired),
		errors.Is(err, watchprog.ErrNegativePosition):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
