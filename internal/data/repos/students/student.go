package students

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

type StudentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, students []*domain.Student) ([]*domain.Student, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*domain.Student, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.Student, error)
}

type studentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	repoLog := baseLog.With("repo", "StudentRepo")
	return &studentRepo{db: db, log: repoLog}
}

func (r *studentRepo) Create(ctx context.Context, tx *gorm.DB, students []*domain.Student) ([]*domain.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(students) == 0 {
		return []*domain.Student{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*domain.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Student
	if len(studentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", studentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studentRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result domain.Student
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&result).Error
	if err != nil {
		return nil, err
	}
	if result.ID == uuid.Nil {
		return nil, nil
	}
	return &result, nil
}
