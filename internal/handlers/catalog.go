package handlers

import (
	"context"
	"net/http"

	"icarus-bknd/internal/models"

	"go.uber.org/zap"
)

type Catalog interface {
	Specialties(ctx context.Context) ([]models.Specialty, error)
	Languages(ctx context.Context) ([]models.Language, error)
	Designations(ctx context.Context) ([]models.Designation, error)
}

type CatalogHandler struct {
	catalog Catalog
	logr    *zap.Logger
}

func NewCatalogHandler(c Catalog, logr *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: c, logr: logr}
}

func (h *CatalogHandler) Specialties(w http.ResponseWriter, r *http.Request) {
	rows, err := h.catalog.Specialties(r.Context())
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"specialties": rows})
}

func (h *CatalogHandler) Languages(w http.ResponseWriter, r *http.Request) {
	rows, err := h.catalog.Languages(r.Context())
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": rows})
}

func (h *CatalogHandler) Designations(w http.ResponseWriter, r *http.Request) {
	rows, err := h.catalog.Designations(r.Context())
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"designations": rows})
}
