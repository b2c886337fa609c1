package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cinehub/models"
	"cinehub/services/catalogs"
)

type catalogService interface {
	ListByProfile(profileID string) ([]models.Catalog, error)
	Get(profileID, catalogID string) (models.Catalog, error)
	Create(profileID string, input models.CatalogUpsert) (models.Catalog, error)
	Update(profileID, catalogID string, input models.CatalogUpsert) (models.Catalog, error)
	AddContent(profileID, catalogID, contentID string) (models.Catalog, error)
	RemoveContent(profileID, catalogID, contentID string) (models.Catalog, error)
	Delete(profileID, catalogID string) error
}

var _ catalogService = (*catalogs.Service)(nil)

// CatalogHandler serves the per-profile content lists.
type CatalogHandler struct {
	Service catalogService
}

func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{Service: service}
}

// List returns the profile's catalogs.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfileID(w, r)
	if !ok {
		return
	}

	lists, err := h.Service.ListByProfile(profileID)
	if err != nil {
		respondCatalogError(w, err)
		return
	}

	respondData(w, http.StatusOK, lists)
}

// Get returns one catalog.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, catalogID, ok := requireCatalogPair(w, r)
	if !ok {
		return
	}

	catalog, err := h.Service.Get(profileID, catalogID)
	if err != nil {
		respondCatalogError(w, err)
		return
	}

	respondData(w, http.StatusOK, catalog)
}

// Create adds a catalog for the profile.
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfileID(w, r)
	if !ok {
		return
	}

	var input models.CatalogUpsert
	if !decodeBody(w, r, &input) {
		return
	}

	catalog, err := h.Service.Create(profileID, input)
	if err != nil {
		respondCatalogError(w, err)
		return
	}

	respondData(w, http.StatusCreated, catalog)
}

// Update modifies catalog metadata.
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	profileID, catalogID, ok := requireCatalogPair(w, r)
	if !ok {
		return
	}

	var input models.CatalogUpsert
	if !decodeBody(w, r, &input) {
		return
	}

	catalog, err := h.Service.Update(profileID, catalogID, input)
	if err != nil {
		respondCatalogError(w, err)
		return
	}

	respondData(w, http.StatusOK, catalog)
}

type catalogContentPayload struct {
	ContentID string `json:"contentId"`
}

// AddContent appends a content id to the catalog.
func (h *CatalogHandler) AddContent(w http.ResponseWriter, r *http.Request) {
	profileID, catalogID, ok := requireCatalogPair(w, r)
	if !ok {
		return
	}

	var payload catalogContentPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	catalog, err := h.Service.AddContent(profileID, catalogID, payload.ContentID)
	if err != nil {
		respondCatalogError(w, err)
		return
	}

	respondData(w, http.StatusOK, catalog)
}

// RemoveContent drops a content id from the catalog.
func (h *CatalogHandler) RemoveContent(w http.ResponseWriter, r *http.Request) {
	profileID, catalogID, ok := requireCatalogPair(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	contentID := strings.TrimSpace(vars["contentID"])
	if contentID == "" {
		respondError(w, http.StatusBadRequest, "content id is required")
		return
	}

	catalog, err := h.Service.RemoveContent(profileID, catalogID, contentID)
	if err != nil {
		respondCatalogError(w, err)
		return
	}

	respondData(w, http.StatusOK, catalog)
}

// Delete removes a catalog.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profileID, catalogID, ok := requireCatalogPair(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(profileID, catalogID); err != nil {
		respondCatalogError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "catalog deleted")
}

func requireCatalogPair(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	vars := mux.Vars(r)
	profileID := strings.TrimSpace(vars["profileID"])
	catalogID := strings.TrimSpace(vars["catalogID"])
	if profileID == "" || catalogID == "" {
		respondError(w, http.StatusBadRequest, "profile id and catalog id are required")
		return "", "", false
	}
	return profileID, catalogID, true
}

func respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalogs.ErrCatalogNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, catalogs.ErrNameTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalogs.ErrProfileIDRequired),
		errors.Is(err, catalogs.ErrCatalogIDRequired),
		errors.Is(err, catalogs.ErrContentIDRequired),
		errors.Is(err, catalogs.ErrNameRequired),
		errors.Is(err, catalogs.ErrInvalidType):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
