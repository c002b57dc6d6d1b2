package handlers

import (
	"net/http"

	"github.com/compete-app/compete-backend/middleware"
	"github.com/compete-app/compete-backend/services"
	"github.com/go-chi/chi/v5"
)

type AlertHandler struct {
	service services.AlertService
}

func NewAlertHandler(service services.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}

	alerts, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"alerts": alerts})
}

func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var input services.AlertInput
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	a, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AlertHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var input services.AlertInput
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	a, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "alert deleted"})
}
