package handlers

import (
	"errors"
	"net/http"

	"github.com/compete-app/compete-backend/middleware"
	"github.com/compete-app/compete-backend/models"
	"github.com/compete-app/compete-backend/repositories"
	"github.com/compete-app/compete-backend/services"
	"github.com/go-chi/chi/v5"
)

type TournamentHandler struct {
	service  services.TournamentService
	likeRepo repositories.LikeRepository
}

func NewTournamentHandler(service services.TournamentService, likeRepo repositories.LikeRepository) *TournamentHandler {
	return &TournamentHandler{service: service, likeRepo: likeRepo}
}

// Search handles GET /api/tournaments. Every filter arrives as a query
// parameter; the caller's role (anonymous defaults to player) controls
// whether inactive and past rows are visible.
func (h *TournamentHandler) Search(w http.ResponseWriter, r *http.Request) {
	filters, err := parseTournamentFilters(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	role := models.RolePlayer
	if ctxRole, ok := middleware.GetUserRoleFromContext(r.Context()); ok {
		role = ctxRole
	}

	result, err := h.service.Search(r.Context(), role, filters)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseTournamentFilters(r *http.Request) (services.TournamentFilters, error) {
	var f services.TournamentFilters
	var err error

	f.SearchTerm = queryString(r, "search")
	f.GameType = queryString(r, "game_type")
	f.Format = queryString(r, "format")
	f.TableSize = queryString(r, "table_size")
	f.Equipment = queryString(r, "equipment")
	f.CustomEquipment = queryString(r, "custom_equipment")
	f.City = queryString(r, "city")
	f.State = queryString(r, "state")
	f.ZipCode = queryString(r, "zip_code")
	f.Lat = queryString(r, "lat")
	f.Lng = queryString(r, "lng")

	if f.FeeMin, err = queryFloatPtr(r, "fee_min"); err != nil {
		return f, err
	}
	if f.FeeMax, err = queryFloatPtr(r, "fee_max"); err != nil {
		return f, err
	}
	if f.FargoMin, err = queryIntPtr(r, "fargo_min"); err != nil {
		return f, err
	}
	if f.FargoMax, err = queryIntPtr(r, "fargo_max"); err != nil {
		return f, err
	}
	if f.ReportsToFargo, err = queryBoolPtr(r, "reports_to_fargo"); err != nil {
		return f, err
	}
	if f.IsHandicapped, err = queryBoolPtr(r, "is_handicapped"); err != nil {
		return f, err
	}
	if f.HasAddedMoney, err = queryBoolPtr(r, "has_added_money"); err != nil {
		return f, err
	}
	if f.MinGuaranteedGames, err = queryIntPtr(r, "min_games"); err != nil {
		return f, err
	}
	if f.DateFrom, err = queryDatePtr(r, "date_from"); err != nil {
		return f, err
	}
	if f.DateTo, err = queryDatePtr(r, "date_to"); err != nil {
		return f, err
	}
	if f.Radius, err = queryFloatPtr(r, "radius"); err != nil {
		return f, err
	}
	if f.DaysOfWeek, err = queryIntList(r, "days_of_week"); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(r, "limit", 0); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(r, "offset", 0); err != nil {
		return f, err
	}

	return f, nil
}

func (h *TournamentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	result, err := h.service.Create(r.Context(), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	t, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TournamentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status models.TournamentStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequest(w, err)
		return
	}

	t, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), input.Status)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "tournament deleted"})
}

// UploadFlyer handles POST /api/tournaments/{id}/flyer as a multipart form
// with a "flyer" file field.
func (h *TournamentHandler) UploadFlyer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRequestBodyBytes * 10); err != nil {
		badRequest(w, err)
		return
	}
	file, header, err := r.FormFile("flyer")
	if err != nil {
		badRequest(w, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	t, err := h.service.UploadFlyer(r.Context(), chi.URLParam(r, "id"), contentType, file)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TournamentHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.likeRepo.Like(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *TournamentHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.likeRepo.Unlike(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, repositories.ErrLikeNotFound) {
			errorJSON(w, http.StatusNotFound, err.Error())
			return
		}
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *TournamentHandler) LikeCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.likeRepo.CountByTournament(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"count": count})
}
