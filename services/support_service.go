package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/compete-app/compete-backend/models"
	"github.com/compete-app/compete-backend/notifications"
	"github.com/compete-app/compete-backend/repositories"
)

type SupportMessageInput struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type SupportRespondInput struct {
	Response string                `json:"response"`
	Status   *models.SupportStatus `json:"status"`
}

type SupportService interface {
	Create(ctx context.Context, userID string, input SupportMessageInput) (*models.SupportMessage, error)
	ListByUser(ctx context.Context, userID string) ([]models.SupportMessage, error)
	ListAll(ctx context.Context, status *models.SupportStatus) ([]models.SupportMessage, error)
	// Respond stores an admin reply, notifies the author over email and the
	// websocket user room, and moves the message out of pending.
	Respond(ctx context.Context, messageID string, input SupportRespondInput) (*models.SupportMessage, error)
	UpdateStatus(ctx context.Context, messageID string, status models.SupportStatus) error
	MarkRead(ctx context.Context, userID, messageID string) error
}

type supportService struct {
	repo     repositories.SupportRepository
	userRepo repositories.UserRepository
	mailer   Mailer
	hub      *notifications.Hub
	logger   *slog.Logger
}

func NewSupportService(
	repo repositories.SupportRepository,
	userRepo repositories.UserRepository,
	mailer Mailer,
	hub *notifications.Hub,
	logger *slog.Logger,
) SupportService {
	return &supportService{repo: repo, userRepo: userRepo, mailer: mailer, hub: hub, logger: logger}
}

func (s *supportService) Create(ctx context.Context, userID string, input SupportMessageInput) (*models.SupportMessage, error) {
	if input.Subject == "" {
		return nil, ErrSupportSubjectRequired
	}
	if input.Message == "" {
		return nil, ErrSupportMessageRequired
	}
	m := &models.SupportMessage{
		UserID:  userID,
		Subject: input.Subject,
		Message: input.Message,
		Status:  models.SupportPending,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *supportService) ListByUser(ctx context.Context, userID string) ([]models.SupportMessage, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *supportService) ListAll(ctx context.Context, status *models.SupportStatus) ([]models.SupportMessage, error) {
	return s.repo.ListAll(ctx, status)
}

func (s *supportService) Respond(ctx context.Context, messageID string, input SupportRespondInput) (*models.SupportMessage, error) {
	if input.Response == "" {
		return nil, ErrSupportMessageRequired
	}

	status := models.SupportResolved
	if input.Status != nil {
		status = *input.Status
	}

	if err := s.repo.Respond(ctx, messageID, input.Response, status); err != nil {
		if errors.Is(err, repositories.ErrSupportMessageNotFound) {
			return nil, ErrSupportMessageNotFound
		}
		return nil, err
	}

	m, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	// Notification failures never roll back the stored reply.
	s.notifyAuthor(ctx, m)

	return m, nil
}

func (s *supportService) notifyAuthor(ctx context.Context, m *models.SupportMessage) {
	if s.hub != nil {
		s.hub.BroadcastToRoom(notifications.UserRoom(m.UserID), notifications.Message{
			Type:    notifications.TypeSupportReply,
			Payload: m,
		})
	}

	if s.mailer == nil {
		return
	}
	u, err := s.userRepo.GetByID(ctx, m.UserID)
	if err != nil {
		s.logger.Warn("could not load user for support reply email",
			slog.String("user_id", m.UserID), slog.Any("error", err))
		return
	}
	body := "Our team replied to your support request \"" + m.Subject + "\":\n\n" + *m.AdminResponse
	if err := s.mailer.Send(u.Email, "Re: "+m.Subject, body); err != nil {
		s.logger.Warn("support reply email failed",
			slog.String("user_id", m.UserID), slog.Any("error", err))
	}
}

func (s *supportService) UpdateStatus(ctx context.Context, messageID string, status models.SupportStatus) error {
	err := s.repo.UpdateStatus(ctx, messageID, status)
	if errors.Is(err, repositories.ErrSupportMessageNotFound) {
		return ErrSupportMessageNotFound
	}
	return err
}

func (s *supportService) MarkRead(ctx context.Context, userID, messageID string) error {
	m, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrSupportMessageNotFound) {
			return ErrSupportMessageNotFound
		}
		return err
	}
	if m.UserID != userID {
		return ErrSupportMessageNotFound
	}
	return s.repo.MarkRead(ctx, messageID, true)
}
