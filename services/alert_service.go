package services

import (
	"context"
	"errors"

	"github.com/compete-app/compete-backend/models"
	"github.com/compete-app/compete-backend/repositories"
)

type AlertInput struct {
	SearchTerm  string   `json:"search_term"`
	GameType    string   `json:"game_type"`
	ZipCode     string   `json:"zip_code"`
	RadiusMiles float64  `json:"radius_miles"`
	MaxEntryFee *float64 `json:"max_entry_fee"`
	IsActive    *bool    `json:"is_active"`
}

type AlertService interface {
	Create(ctx context.Context, userID string, input AlertInput) (*models.Alert, error)
	ListByUser(ctx context.Context, userID string) ([]models.Alert, error)
	Update(ctx context.Context, userID, alertID string, input AlertInput) (*models.Alert, error)
	Delete(ctx context.Context, userID, alertID string) error
}

type alertService struct {
	repo repositories.AlertRepository
}

func NewAlertService(repo repositories.AlertRepository) AlertService {
	return &alertService{repo: repo}
}

func (s *alertService) Create(ctx context.Context, userID string, input AlertInput) (*models.Alert, error) {
	if input.ZipCode == "" {
		return nil, ErrAlertZipRequired
	}
	a := &models.Alert{
		UserID:      userID,
		SearchTerm:  input.SearchTerm,
		GameType:    input.GameType,
		ZipCode:     input.ZipCode,
		RadiusMiles: input.RadiusMiles,
		MaxEntryFee: input.MaxEntryFee,
		IsActive:    true,
	}
	if input.IsActive != nil {
		a.IsActive = *input.IsActive
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *alertService) ListByUser(ctx context.Context, userID string) ([]models.Alert, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update rewrites an alert after an ownership check; a caller editing
// another user's alert gets not-found, not forbidden, to avoid confirming
// the alert exists.
func (s *alertService) Update(ctx context.Context, userID, alertID string, input AlertInput) (*models.Alert, error) {
	a, err := s.getOwned(ctx, userID, alertID)
	if err != nil {
		return nil, err
	}
	if input.ZipCode == "" {
		return nil, ErrAlertZipRequired
	}

	a.SearchTerm = input.SearchTerm
	a.GameType = input.GameType
	a.ZipCode = input.ZipCode
	a.RadiusMiles = input.RadiusMiles
	a.MaxEntryFee = input.MaxEntryFee
	if input.IsActive != nil {
		a.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, repositories.ErrAlertNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *alertService) Delete(ctx context.Context, userID, alertID string) error {
	if _, err := s.getOwned(ctx, userID, alertID); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, alertID)
	if errors.Is(err, repositories.ErrAlertNotFound) {
		return ErrAlertNotFound
	}
	return err
}

func (s *alertService) getOwned(ctx context.Context, userID, alertID string) (*models.Alert, error) {
	a, err := s.repo.GetByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, repositories.ErrAlertNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrAlertNotFound
	}
	return a, nil
}
