package handlers

import (
	"net/http"
	"time"

	"github.com/compete-app/compete-backend/services"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	service services.AdminService
}

func NewAdminHandler(service services.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// VenueLikeStats handles GET /api/admin/venues/{id}/like-stats?from=...&to=...
// with a trailing-90-days default window.
func (h *AdminHandler) VenueLikeStats(w http.ResponseWriter, r *http.Request) {
	to := time.Now()
	from := to.AddDate(0, 0, -90)

	if t, err := queryDatePtr(r, "from"); err != nil {
		badRequest(w, err)
		return
	} else if t != nil {
		from = *t
	}
	if t, err := queryDatePtr(r, "to"); err != nil {
		badRequest(w, err)
		return
	} else if t != nil {
		to = *t
	}

	stats, err := h.service.VenueLikeStats(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"stats": stats})
}

// ArchiveExpired triggers the archival sweep on demand, outside the
// scheduler's cadence.
func (h *AdminHandler) ArchiveExpired(w http.ResponseWriter, r *http.Request) {
	archived, err := h.service.ArchiveExpiredTournaments(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"archived": archived})
}
