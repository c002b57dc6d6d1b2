package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/compete-app/compete-backend/models"
	"github.com/compete-app/compete-backend/repositories"
)

type VenueInput struct {
	Name       string   `json:"name"`
	Address    *string  `json:"address"`
	City       *string  `json:"city"`
	State      *string  `json:"state"`
	ZipCode    *string  `json:"zip_code"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Phone      *string  `json:"phone"`
	TableCount *int     `json:"table_count"`
}

type VenueService interface {
	Create(ctx context.Context, input VenueInput) (*models.Venue, error)
	GetByID(ctx context.Context, id string) (*models.Venue, error)
	List(ctx context.Context, limit, offset int) ([]models.Venue, error)
	Update(ctx context.Context, id string, input VenueInput) (*models.Venue, error)
	Delete(ctx context.Context, id string) error
	// Near lists venues within radiusMiles of a ZIP code origin.
	Near(ctx context.Context, zip string, radiusMiles float64) ([]models.Venue, error)
}

type venueService struct {
	repo      repositories.VenueRepository
	locations *LocationResolver
}

func NewVenueService(repo repositories.VenueRepository, locations *LocationResolver) VenueService {
	return &venueService{repo: repo, locations: locations}
}

func (s *venueService) Create(ctx context.Context, input VenueInput) (*models.Venue, error) {
	if input.Name == "" {
		return nil, ErrVenueNameRequired
	}
	v := venueFromInput(input)
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *venueService) GetByID(ctx context.Context, id string) (*models.Venue, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrVenueNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *venueService) List(ctx context.Context, limit, offset int) ([]models.Venue, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *venueService) Update(ctx context.Context, id string, input VenueInput) (*models.Venue, error) {
	if input.Name == "" {
		return nil, ErrVenueNameRequired
	}
	v := venueFromInput(input)
	v.ID = id
	if err := s.repo.Update(ctx, v); err != nil {
		if errors.Is(err, repositories.ErrVenueNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *venueService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrVenueNotFound) {
		return ErrVenueNotFound
	}
	return err
}

func (s *venueService) Near(ctx context.Context, zip string, radiusMiles float64) ([]models.Venue, error) {
	if zip == "" {
		return nil, fmt.Errorf("%w: zip code is required", ErrValidationFailed)
	}
	origin := s.locations.ResolveZipOrigin(ctx, zip)
	if origin == nil {
		return nil, ErrOriginUnresolvable
	}
	return s.repo.WithinRadius(ctx, origin.Latitude, origin.Longitude, DWithinMeters(radiusMiles))
}

func venueFromInput(input VenueInput) *models.Venue {
	return &models.Venue{
		Name:       input.Name,
		Address:    input.Address,
		City:       input.City,
		State:      input.State,
		ZipCode:    input.ZipCode,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Phone:      input.Phone,
		TableCount: input.TableCount,
	}
}
