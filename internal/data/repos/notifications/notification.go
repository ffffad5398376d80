package notifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

type NotificationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, notifications []*domain.Notification) ([]*domain.Notification, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, tx *gorm.DB, userID, notificationID uuid.UUID) error
	AdminUserIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error)
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	repoLog := baseLog.With("repo", "NotificationRepo")
	return &notificationRepo{db: db, log: repoLog}
}

func (r *notificationRepo) Create(ctx context.Context, tx *gorm.DB, notifications []*domain.Notification) ([]*domain.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(notifications) == 0 {
		return []*domain.Notification{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit <= 0 {
		limit = 50
	}

	var notifications []domain.Notification
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, userID, notificationID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}

func (r *notificationRepo) AdminUserIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	err := transaction.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_type = ? AND status = ?", domain.UserTypeAdmin, domain.UserStatusActive).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
