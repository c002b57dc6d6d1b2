package handlers

import (
	"net/http"

	"github.com/compete-app/compete-backend/services"
)

type NewsHandler struct {
	service services.NewsService
}

func NewNewsHandler(service services.NewsService) *NewsHandler {
	return &NewsHandler{service: service}
}

// List always responds 200; an unavailable feed shows as an empty list.
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.service.Fetch(r.Context())
	writeJSON(w, http.StatusOK, envelope{"items": items})
}
