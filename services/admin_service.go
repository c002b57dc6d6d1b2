package services

import (
	"context"
	"time"

	"github.com/compete-app/compete-backend/models"
	"github.com/compete-app/compete-backend/repositories"
	"golang.org/x/sync/errgroup"
)

// DashboardStats is the admin landing-screen aggregate.
type DashboardStats struct {
	ActiveTournaments  int `json:"active_tournaments"`
	PendingTournaments int `json:"pending_tournaments"`
	TotalUsers         int `json:"total_users"`
	PendingSupport     int `json:"pending_support"`
}

type AdminService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	VenueLikeStats(ctx context.Context, venueID string, from, to time.Time) ([]repositories.VenueLikeStats, error)
	ArchiveExpiredTournaments(ctx context.Context) (int, error)
}

type adminService struct {
	tournamentRepo repositories.TournamentRepository
	userRepo       repositories.UserRepository
	supportRepo    repositories.SupportRepository
	likeRepo       repositories.LikeRepository
}

func NewAdminService(
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
	supportRepo repositories.SupportRepository,
	likeRepo repositories.LikeRepository,
) AdminService {
	return &adminService{
		tournamentRepo: tournamentRepo,
		userRepo:       userRepo,
		supportRepo:    supportRepo,
		likeRepo:       likeRepo,
	}
}

// Dashboard gathers the counters concurrently; the first failing query
// cancels the rest.
func (s *adminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		status := models.StatusActive
		n, err := s.tournamentRepo.Count(gctx, &status)
		stats.ActiveTournaments = n
		return err
	})
	g.Go(func() error {
		status := models.StatusPending
		n, err := s.tournamentRepo.Count(gctx, &status)
		stats.PendingTournaments = n
		return err
	})
	g.Go(func() error {
		n, err := s.userRepo.Count(gctx)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		status := models.SupportPending
		messages, err := s.supportRepo.ListAll(gctx, &status)
		stats.PendingSupport = len(messages)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *adminService) VenueLikeStats(ctx context.Context, venueID string, from, to time.Time) ([]repositories.VenueLikeStats, error) {
	return s.likeRepo.VenueStatsByPeriod(ctx, venueID, from, to)
}

func (s *adminService) ArchiveExpiredTournaments(ctx context.Context) (int, error) {
	return s.tournamentRepo.ArchiveExpired(ctx)
}
