package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/clients/redis"
	"github.com/skillforge/skillforge-backend/internal/data/repos/notifications"
	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

type NotifierService interface {
	// Notify persists one notification per recipient and fans it out on the
	// bus. Bus failures are logged, not returned; the persisted row is the
	// source of truth.
	Notify(ctx context.Context, userIDs []uuid.UUID, notifType, title, message, actionURL, referenceType string, referenceID *uuid.UUID) error
}

type notifierService struct {
	log              *logger.Logger
	notificationRepo notifications.NotificationRepo
	bus              redis.NotificationBus
}

// NewNotifierService accepts a nil bus; notifications are then persisted only.
func NewNotifierService(baseLog *logger.Logger, notificationRepo notifications.NotificationRepo, bus redis.NotificationBus) NotifierService {
	return &notifierService{
		log:              baseLog.With("service", "NotifierService"),
		notificationRepo: notificationRepo,
		bus:              bus,
	}
}

func (s *notifierService) Notify(ctx context.Context, userIDs []uuid.UUID, notifType, title, message, actionURL, referenceType string, referenceID *uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}

	rows := make([]*domain.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, &domain.Notification{
			UserID:        userID,
			Type:          notifType,
			Title:         title,
			Message:       message,
			ActionURL:     actionURL,
			ReferenceType: referenceType,
			ReferenceID:   referenceID,
		})
	}
	if _, err := s.notificationRepo.Create(ctx, nil, rows); err != nil {
		return err
	}

	if s.bus == nil {
		return nil
	}
	for _, row := range rows {
		msg := redis.BusMessage{
			UserID:        row.UserID,
			Type:          row.Type,
			Title:         row.Title,
			Message:       row.Message,
			ActionURL:     row.ActionURL,
			ReferenceType: row.ReferenceType,
		}
		if referenceID != nil {
			msg.ReferenceID = referenceID.String()
		}
		if err := s.bus.Publish(ctx, msg); err != nil {
			s.log.Warn("notification publish failed", "user_id", row.UserID, "error", err)
		}
	}
	return nil
}
