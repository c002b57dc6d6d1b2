package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/compete-app/compete-backend/models"
	"github.com/compete-app/compete-backend/notifications"
	"github.com/compete-app/compete-backend/repositories"
	"github.com/compete-app/compete-backend/storage"
	"github.com/google/uuid"
)

const defaultPageSize = 20

// recurringWeeks is how many weekly rows a recurring series seeds, the
// master included.
const recurringWeeks = 4

// SearchResult is one page of tournaments plus the total for the same
// predicates. Page and total always come from a single filter evaluation.
type SearchResult struct {
	Tournaments []models.Tournament `json:"tournaments"`
	TotalCount  int                 `json:"total_count"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
}

type CreateTournamentInput struct {
	Name            string   `json:"name"`
	GameType        string   `json:"game_type"`
	Format          string   `json:"format"`
	TableSize       string   `json:"table_size"`
	Equipment       string   `json:"equipment"`
	CustomEquipment *string  `json:"custom_equipment"`
	Description     *string  `json:"description"`
	StartDate       string   `json:"start_date"` // YYYY-MM-DD
	StartTime       *string  `json:"start_time"`
	EntryFee        float64  `json:"entry_fee"`
	GuaranteedGames int      `json:"guaranteed_games"`
	FargoRating     *int     `json:"fargo_rating"`
	ReportsToFargo  bool     `json:"reports_to_fargo"`
	IsHandicapped   bool     `json:"is_handicapped"`
	HasAddedMoney   bool     `json:"has_added_money"`
	Address         *string  `json:"address"`
	ZipCode         *string  `json:"zip_code"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	VenueID         *string  `json:"venue_id"`
	DirectorName    *string  `json:"director_name"`
	DirectorPhone   *string  `json:"director_phone"`
	IsRecurring     bool     `json:"is_recurring"`
}

type UpdateTournamentInput struct {
	Name            *string  `json:"name"`
	GameType        *string  `json:"game_type"`
	Format          *string  `json:"format"`
	TableSize       *string  `json:"table_size"`
	Equipment       *string  `json:"equipment"`
	CustomEquipment *string  `json:"custom_equipment"`
	Description     *string  `json:"description"`
	StartDate       *string  `json:"start_date"`
	StartTime       *string  `json:"start_time"`
	EntryFee        *float64 `json:"entry_fee"`
	GuaranteedGames *int     `json:"guaranteed_games"`
	FargoRating     *int     `json:"fargo_rating"`
	ReportsToFargo  *bool    `json:"reports_to_fargo"`
	IsHandicapped   *bool    `json:"is_handicapped"`
	HasAddedMoney   *bool    `json:"has_added_money"`
	Address         *string  `json:"address"`
	ZipCode         *string  `json:"zip_code"`
	VenueID         *string  `json:"venue_id"`
	DirectorName    *string  `json:"director_name"`
	DirectorPhone   *string  `json:"director_phone"`
}

// CreateTournamentResult reports a creation, including partial recurring
// outcomes: per-week failures are collected, not fatal, as long as at least
// one row landed.
type CreateTournamentResult struct {
	Tournament *models.Tournament  `json:"tournament"`
	Series     []models.Tournament `json:"series,omitempty"`
	WeekErrors []string            `json:"week_errors,omitempty"`
}

type TournamentService interface {
	Search(ctx context.Context, role models.UserRole, filters TournamentFilters) (*SearchResult, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	Create(ctx context.Context, input CreateTournamentInput) (*CreateTournamentResult, error)
	Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, id string, status models.TournamentStatus) (*models.Tournament, error)
	Delete(ctx context.Context, id string) error
	UploadFlyer(ctx context.Context, id string, contentType string, reader io.Reader) (*models.Tournament, error)
	ArchiveExpired(ctx context.Context) error
}

type tournamentService struct {
	repo      repositories.TournamentRepository
	likeRepo  repositories.LikeRepository
	locations *LocationResolver
	uploader  storage.FileUploader
	hub       *notifications.Hub
	logger    *slog.Logger
}

func NewTournamentService(
	repo repositories.TournamentRepository,
	likeRepo repositories.LikeRepository,
	locations *LocationResolver,
	uploader storage.FileUploader,
	hub *notifications.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		repo:      repo,
		likeRepo:  likeRepo,
		locations: locations,
		uploader:  uploader,
		hub:       hub,
		logger:    logger,
	}
}

// Search runs one filter evaluation and derives both the page and the total
// from it. Column predicates are pushed to the database; radius and
// day-of-week are applied in-process, against the full filtered set, exactly
// once. Repository errors surface alongside an empty result, never a panic
// or a nil slice.
func (s *tournamentService) Search(ctx context.Context, role models.UserRole, filters TournamentFilters) (*SearchResult, error) {
	f := sanitizeFilters(filters)

	limit := f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	empty := &SearchResult{Tournaments: []models.Tournament{}, Limit: limit, Offset: offset}
	colFilter := buildSearchFilter(f, role)

	var page []models.Tournament
	var total int

	if !hasResidualFilters(f) {
		var err error
		page, total, err = s.repo.Search(ctx, colFilter, limit, offset)
		if err != nil {
			return empty, err
		}
	} else {
		all, err := s.repo.SearchAll(ctx, colFilter)
		if err != nil {
			return empty, err
		}

		if hasRadiusFilter(f) {
			origin := s.locations.ResolveOrigin(ctx, f)
			if origin == nil {
				// No origin means the radius predicate cannot be evaluated;
				// show the unfiltered set rather than nothing.
				s.logger.Warn("radius filter skipped, origin unresolvable",
					slog.String("zip", f.ZipCode))
			} else {
				all = s.locations.FilterByRadius(all, *origin, *f.Radius)
			}
		}

		if len(f.DaysOfWeek) > 0 {
			all = filterByDaysOfWeek(all, f.DaysOfWeek)
		}

		total = len(all)
		page = pageSlice(all, limit, offset)
	}

	// The single-evaluation pipeline should make this impossible; if the
	// invariant ever breaks, keep pagination usable and make noise.
	if minTotal := offset + len(page); total < minTotal {
		s.logger.Warn("total count below page extent, clamping",
			slog.Int("total", total), slog.Int("min_total", minTotal))
		total = minTotal
	}

	for i := range page {
		s.attachFlyerURL(&page[i])
	}

	return &SearchResult{
		Tournaments: page,
		TotalCount:  total,
		Limit:       limit,
		Offset:      offset,
	}, nil
}

func pageSlice(all []models.Tournament, limit, offset int) []models.Tournament {
	if offset >= len(all) {
		return []models.Tournament{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func (s *tournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	s.attachFlyerURL(t)
	return t, nil
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*CreateTournamentResult, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.StartDate == "" {
		return nil, ErrTournamentDateRequired
	}
	if input.EntryFee < 0 {
		return nil, ErrTournamentInvalidFee
	}
	startDate, err := time.Parse("2006-01-02", input.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start_date %q", ErrTournamentDateRequired, input.StartDate)
	}

	if !input.IsRecurring {
		t := tournamentFromInput(input, startDate)
		if err := s.repo.Create(ctx, nil, t); err != nil {
			return nil, err
		}
		s.broadcastCreated(t)
		return &CreateTournamentResult{Tournament: t}, nil
	}

	return s.createRecurringSeries(ctx, input, startDate)
}

// createRecurringSeries inserts the master row on the original date and
// three weekly children. Inserts run sequentially; a failed week is recorded
// and skipped so the series degrades instead of aborting.
func (s *tournamentService) createRecurringSeries(ctx context.Context, input CreateTournamentInput, startDate time.Time) (*CreateTournamentResult, error) {
	seriesID := uuid.NewString()

	result := &CreateTournamentResult{Series: make([]models.Tournament, 0, recurringWeeks)}
	for week := 0; week < recurringWeeks; week++ {
		t := tournamentFromInput(input, startDate.AddDate(0, 0, 7*week))
		t.IsRecurring = true
		t.RecurringSeriesID = &seriesID
		t.IsRecurringMaster = week == 0

		if err := s.repo.Create(ctx, nil, t); err != nil {
			s.logger.Error("recurring series insert failed",
				slog.String("series_id", seriesID), slog.Int("week", week), slog.Any("error", err))
			result.WeekErrors = append(result.WeekErrors, fmt.Sprintf("week %d: %v", week, err))
			continue
		}

		result.Series = append(result.Series, *t)
		if result.Tournament == nil {
			result.Tournament = t
		}
	}

	if result.Tournament == nil {
		return nil, ErrRecurringCreationFailed
	}
	s.broadcastCreated(result.Tournament)
	return result, nil
}

func tournamentFromInput(input CreateTournamentInput, startDate time.Time) *models.Tournament {
	return &models.Tournament{
		Name:            input.Name,
		GameType:        input.GameType,
		Format:          input.Format,
		TableSize:       input.TableSize,
		Equipment:       input.Equipment,
		CustomEquipment: input.CustomEquipment,
		Description:     input.Description,
		StartDate:       startDate,
		StartTime:       input.StartTime,
		EntryFee:        input.EntryFee,
		GuaranteedGames: input.GuaranteedGames,
		FargoRating:     input.FargoRating,
		ReportsToFargo:  input.ReportsToFargo,
		IsHandicapped:   input.IsHandicapped,
		HasAddedMoney:   input.HasAddedMoney,
		Status:          models.StatusActive,
		Address:         input.Address,
		ZipCode:         input.ZipCode,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		VenueID:         input.VenueID,
		DirectorName:    input.DirectorName,
		DirectorPhone:   input.DirectorPhone,
	}
}

func (s *tournamentService) Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrTournamentNameRequired
		}
		t.Name = *input.Name
	}
	if input.GameType != nil {
		t.GameType = *input.GameType
	}
	if input.Format != nil {
		t.Format = *input.Format
	}
	if input.TableSize != nil {
		t.TableSize = *input.TableSize
	}
	if input.Equipment != nil {
		t.Equipment = *input.Equipment
	}
	if input.CustomEquipment != nil {
		t.CustomEquipment = input.CustomEquipment
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.StartDate != nil {
		startDate, parseErr := time.Parse("2006-01-02", *input.StartDate)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: invalid start_date %q", ErrTournamentDateRequired, *input.StartDate)
		}
		t.StartDate = startDate
	}
	if input.StartTime != nil {
		t.StartTime = input.StartTime
	}
	if input.EntryFee != nil {
		if *input.EntryFee < 0 {
			return nil, ErrTournamentInvalidFee
		}
		t.EntryFee = *input.EntryFee
	}
	if input.GuaranteedGames != nil {
		t.GuaranteedGames = *input.GuaranteedGames
	}
	if input.FargoRating != nil {
		t.FargoRating = input.FargoRating
	}
	if input.ReportsToFargo != nil {
		t.ReportsToFargo = *input.ReportsToFargo
	}
	if input.IsHandicapped != nil {
		t.IsHandicapped = *input.IsHandicapped
	}
	if input.HasAddedMoney != nil {
		t.HasAddedMoney = *input.HasAddedMoney
	}
	if input.Address != nil {
		t.Address = input.Address
	}
	if input.ZipCode != nil {
		t.ZipCode = input.ZipCode
	}
	if input.VenueID != nil {
		t.VenueID = input.VenueID
	}
	if input.DirectorName != nil {
		t.DirectorName = input.DirectorName
	}
	if input.DirectorPhone != nil {
		t.DirectorPhone = input.DirectorPhone
	}

	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id string, status models.TournamentStatus) (*models.Tournament, error) {
	switch status {
	case models.StatusActive, models.StatusPending, models.StatusDeleted:
	default:
		return nil, ErrTournamentInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, nil, id, status); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete archives the tournament via the stored archival function; on any
// failure there it falls back to a hard delete with manual cleanup of
// dependent likes. A failed likes cleanup is logged and accepted (orphan
// risk) rather than blocking the delete.
func (s *tournamentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.ArchiveManual(ctx, id); err == nil {
		s.broadcastDeleted(id)
		return nil
	} else {
		s.logger.Warn("archival function failed, falling back to manual delete",
			slog.String("tournament_id", id), slog.Any("error", err))
	}

	if err := s.likeRepo.DeleteByTournament(ctx, nil, id); err != nil {
		s.logger.Error("failed to clean up likes before delete",
			slog.String("tournament_id", id), slog.Any("error", err))
	}

	if err := s.repo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	s.broadcastDeleted(id)
	return nil
}

func (s *tournamentService) UploadFlyer(ctx context.Context, id string, contentType string, reader io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, errors.New("flyer storage is not configured")
	}

	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("flyers/%s/%s", t.ID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload flyer: %w", err)
	}

	if err := s.repo.UpdateFlyerKey(ctx, t.ID, &result.Key); err != nil {
		return nil, err
	}

	if t.FlyerKey != nil {
		if delErr := s.uploader.Delete(ctx, *t.FlyerKey); delErr != nil {
			s.logger.Warn("failed to delete previous flyer",
				slog.String("key", *t.FlyerKey), slog.Any("error", delErr))
		}
	}

	t.FlyerKey = &result.Key
	t.FlyerURL = &result.Location
	return t, nil
}

// ArchiveExpired is the scheduler entry point.
func (s *tournamentService) ArchiveExpired(ctx context.Context) error {
	archived, err := s.repo.ArchiveExpired(ctx)
	if err != nil {
		return err
	}
	if archived > 0 {
		s.logger.Info("archived expired tournaments", slog.Int("count", archived))
	}
	return nil
}

func (s *tournamentService) attachFlyerURL(t *models.Tournament) {
	if s.uploader == nil || t.FlyerKey == nil {
		return
	}
	u := s.uploader.GetPublicURL(*t.FlyerKey)
	if u != "" {
		t.FlyerURL = &u
	}
}

func (s *tournamentService) broadcastCreated(t *models.Tournament) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(notifications.FeedRoom, notifications.Message{
		Type:    notifications.TypeTournamentCreated,
		Payload: t,
	})
}

func (s *tournamentService) broadcastDeleted(id string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(notifications.FeedRoom, notifications.Message{
		Type:    notifications.TypeTournamentDeleted,
		Payload: map[string]string{"id": id},
	})
}
