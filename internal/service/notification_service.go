package service

import (
	"context"

	"quadra/internal/domain"
	"quadra/internal/metrics"
	"quadra/internal/models"

	"github.com/rs/zerolog"
)

type NotificationService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewNotificationService(repo domain.Repository, logger *zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

func (s *NotificationService) List(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.repo.ListNotifications(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkNotificationRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}

// Emit appends one notification to a user's inbox.
func (s *NotificationService) Emit(ctx context.Context, recipientID int64, typeTag, message string) error {
	n := &models.Notification{
		UserID:  recipientID,
		Type:    typeTag,
		Message: message,
	}
	if err := s.repo.InsertNotification(ctx, n); err != nil {
		return err
	}
	metrics.IncNotificationEmitted()
	return nil
}
