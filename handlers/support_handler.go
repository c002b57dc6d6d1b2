package handlers

import (
	"net/http"

	"github.com/compete-app/compete-backend/middleware"
	"github.com/compete-app/compete-backend/models"
	"github.com/compete-app/compete-backend/services"
	"github.com/go-chi/chi/v5"
)

type SupportHandler struct {
	service services.SupportService
}

func NewSupportHandler(service services.SupportService) *SupportHandler {
	return &SupportHandler{service: service}
}

func (h *SupportHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var input services.SupportMessageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	m, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *SupportHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}

	messages, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"messages": messages})
}

// ListAll is admin-only; an optional status query parameter narrows the
// list.
func (h *SupportHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	var status *models.SupportStatus
	if raw := queryString(r, "status"); raw != "" {
		s := models.SupportStatus(raw)
		switch s {
		case models.SupportPending, models.SupportInProgress, models.SupportResolved:
			status = &s
		default:
			errorJSON(w, http.StatusBadRequest, "unknown support status")
			return
		}
	}

	messages, err := h.service.ListAll(r.Context(), status)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"messages": messages})
}

func (h *SupportHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var input services.SupportRespondInput
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	m, err := h.service.Respond(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *SupportHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.service.MarkRead(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
