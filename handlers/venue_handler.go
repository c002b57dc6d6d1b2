package handlers

import (
	"net/http"

	"github.com/compete-app/compete-backend/services"
	"github.com/go-chi/chi/v5"
)

const defaultVenueRadiusMiles = 25.0

type VenueHandler struct {
	service services.VenueService
}

func NewVenueHandler(service services.VenueService) *VenueHandler {
	return &VenueHandler{service: service}
}

func (h *VenueHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		badRequest(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		badRequest(w, err)
		return
	}

	venues, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"venues": venues})
}

func (h *VenueHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Near handles GET /api/venues/near?zip_code=85051&radius=25.
func (h *VenueHandler) Near(w http.ResponseWriter, r *http.Request) {
	radius := defaultVenueRadiusMiles
	if v, err := queryFloatPtr(r, "radius"); err != nil {
		badRequest(w, err)
		return
	} else if v != nil {
		radius = *v
	}

	venues, err := h.service.Near(r.Context(), queryString(r, "zip_code"), radius)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"venues": venues})
}

func (h *VenueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.VenueInput
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	v, err := h.service.Create(r.Context(), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *VenueHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input services.VenueInput
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	v, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *VenueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "venue deleted"})
}
