package handler

import (
	"net/http"

	"github.com/duelarena/server/internal/api/response"
	"github.com/duelarena/server/internal/coordinator"
)

// CatalogHandler handles character catalog endpoints
type CatalogHandler struct {
	coord *coordinator.Coordinator
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(coord *coordinator.Coordinator) *CatalogHandler {
	return &CatalogHandler{coord: coord}
}

// List handles GET /api/v1/characters
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	chars := h.coord.Characters()
	response.JSON(w, http.StatusOK, response.CharacterListFromModel(chars))
}
