package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

type EnrollmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, enrollments []*domain.Enrollment) ([]*domain.Enrollment, error)
	// CompletedCourseTitles includes courses with an issued certificate even
	// when the enrollment status lags behind.
	CompletedCourseTitles(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]string, error)
	ActiveCourseTitles(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]string, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	repoLog := baseLog.With("repo", "EnrollmentRepo")
	return &enrollmentRepo{db: db, log: repoLog}
}

func (r *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, enrollments []*domain.Enrollment) ([]*domain.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(enrollments) == 0 {
		return []*domain.Enrollment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) CompletedCourseTitles(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var titles []string
	err := transaction.WithContext(ctx).
		Table("enrollment AS e").
		Joins("JOIN course c ON c.id = e.course_id").
		Where("e.student_id = ? AND (e.status = ? OR e.certificate_issued = TRUE)", studentID, domain.EnrollmentCompleted).
		Order("e.completed_at DESC NULLS LAST").
		Pluck("c.title", &titles).Error
	if err != nil {
		return nil, err
	}
	return titles, nil
}

func (r *enrollmentRepo) ActiveCourseTitles(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var titles []string
	err := transaction.WithContext(ctx).
		Table("enrollment AS e").
		Joins("JOIN course c ON c.id = e.course_id").
		Where("e.student_id = ? AND e.status = ?", studentID, domain.EnrollmentActive).
		Order("e.enrolled_at DESC").
		Pluck("c.title", &titles).Error
	if err != nil {
		return nil, err
	}
	return titles, nil
}
