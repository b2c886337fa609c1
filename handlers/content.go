package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cinehub/models"
	"cinehub/services/content"
	"cinehub/services/ratings"
)

type contentService interface {
	Create(input models.ContentUpsert) (models.Content, error)
	Update(id string, input models.ContentUpsert) (models.Content, error)
	SoftDelete(id string) error
	FindByID(id string) (*models.Content, error)
	Find(filter content.Filter) (models.ContentPage, error)
	Episodes(seriesID string) ([]models.Content, error)
	MostPopular(limit int) ([]models.Content, error)
	NewestMovies(limit int) ([]models.Content, error)
	NewestSeries(limit int) ([]models.Content, error)
	ByGenre(genre string) ([]models.Content, error)
	Similar(id string, limit int) ([]models.Content, error)
}

var _ contentService = (*content.Service)(nil)

const defaultShelfLimit = 10

// ContentHandler serves the catalog endpoints. Ratings is optional;
// without it the rating lookup answers 503.
type ContentHandler struct {
	Service contentService
	Ratings *ratings.Client
}

func NewContentHandler(service contentService, ratingsClient *ratings.Client) *ContentHandler {
	return &ContentHandler{Service: service, Ratings: ratingsClient}
}

// List serves the filtered, paginated catalog.
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := content.Filter{
		Type:   strings.TrimSpace(query.Get("type")),
		Search: strings.TrimSpace(query.Get("search")),
		Sort:   strings.TrimSpace(query.Get("sort")),
	}
	if genre := strings.TrimSpace(query.Get("genre")); genre != "" {
		filter.Genres = strings.Split(genre, ",")
	}
	filter.Year = intQuery(query.Get("year"), 0)
	filter.Page = intQuery(query.Get("page"), 0)
	filter.Limit = intQuery(query.Get("limit"), 0)

	page, err := h.Service.Find(filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(w, http.StatusOK, page)
}

// Get returns one catalog item by id.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireContentID(w, r)
	if !ok {
		return
	}

	item, err := h.Service.FindByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		respondError(w, http.StatusNotFound, "content not found")
		return
	}

	respondData(w, http.StatusOK, item)
}

// Create adds a catalog item.
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.ContentUpsert
	if !decodeBody(w, r, &input) {
		return
	}

	item, err := h.Service.Create(input)
	if err != nil {
		respondContentError(w, err)
		return
	}

	respondData(w, http.StatusCreated, item)
}

// Update modifies a catalog item.
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireContentID(w, r)
	if !ok {
		return
	}

	var input models.ContentUpsert
	if !decodeBody(w, r, &input) {
		return
	}

	item, err := h.Service.Update(id, input)
	if err != nil {
		respondContentError(w, err)
		return
	}

	respondData(w, http.StatusOK, item)
}

// Delete soft-deletes a catalog item; it disappears from listings but
// stays resolvable by id.
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireContentID(w, r)
	if !ok {
		return
	}

	if err := h.Service.SoftDelete(id); err != nil {
		respondContentError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "content deleted")
}

// Episodes lists a series' episodes in order.
func (h *ContentHandler) Episodes(w http.ResponseWriter, r *http.Request) {
	id, ok := requireContentID(w, r)
	if !ok {
		return
	}

	episodes, err := h.Service.Episodes(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(w, http.StatusOK, episodes)
}

func (h *ContentHandler) MostPopular(w http.ResponseWriter, r *http.Request) {
	h.shelf(w, r, h.Service.MostPopular)
}

func (h *ContentHandler) NewestMovies(w http.ResponseWriter, r *http.Request) {
	h.shelf(w, r, h.Service.NewestMovies)
}

func (h *ContentHandler) NewestSeries(w http.ResponseWriter, r *http.Request) {
	h.shelf(w, r, h.Service.NewestSeries)
}

// ByGenre lists active content carrying the genre tag.
func (h *ContentHandler) ByGenre(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	genre := strings.TrimSpace(vars["genre"])
	if genre == "" {
		respondError(w, http.StatusBadRequest, "genre is required")
		return
	}

	items, err := h.Service.ByGenre(genre)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(w, http.StatusOK, items)
}

// Similar suggests catalog items sharing genres with the given one.
func (h *ContentHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id, ok := requireContentID(w, r)
	if !ok {
		return
	}

	limit := intQuery(r.URL.Query().Get("limit"), defaultShelfLimit)
	items, err := h.Service.Similar(id, limit)
	if err != nil {
		respondContentError(w, err)
		return
	}

	respondData(w, http.StatusOK, items)
}

// ExternalRatings proxies the upstream ratings lookup for one item.
func (h *ContentHandler) ExternalRatings(w http.ResponseWriter, r *http.Request) {
	id, ok := requireContentID(w, r)
	if !ok {
		return
	}

	if h.Ratings == nil || !h.Ratings.IsEnabled() {
		respondError(w, http.StatusServiceUnavailable, "ratings lookup is not configured")
		return
	}

	item, err := h.Service.FindByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		respondError(w, http.StatusNotFound, "content not found")
		return
	}

	result, err := h.Ratings.GetRatings(r.Context(), item.Title, item.Year)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondData(w, http.StatusOK, result)
}

func (h *ContentHandler) shelf(w http.ResponseWriter, r *http.Request, fetch func(int) ([]models.Content, error)) {
	limit := intQuery(r.URL.Query().Get("limit"), defaultShelfLimit)
	items, err := fetch(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(w, http.StatusOK, items)
}

func requireContentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	vars := mux.Vars(r)
	id := strings.TrimSpace(vars["contentID"])
	if id == "" {
		respondError(w, http.StatusBadRequest, "content id is required")
		return "", false
	}
	return id, true
}

func respondContentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, content.ErrContentNotFound),
		errors.Is(err, content.ErrSeriesNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, content.ErrTitleRequired),
		errors.Is(err, content.ErrGenreRequired),
		errors.Is(err, content.ErrInvalidRating),
		errors.Is(err, content.ErrInvalidType),
		errors.Is(err, content.ErrInvalidDuration),
		errors.Is(err, content.ErrInvalidYear),
		errors.Is(err, content.ErrSeriesRequired),
		errors.Is(err, content.ErrNotASeries),
		errors.Is(err, content.ErrDescriptionNeeded):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func intQuery(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
