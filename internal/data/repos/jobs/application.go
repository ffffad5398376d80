package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

// ApplicationRow is one application joined with job title and company brief
// for the student-facing application list.
type ApplicationRow struct {
	ID               uuid.UUID  `json:"id"`
	JobID            uuid.UUID  `json:"job_id"`
	Status           string     `json:"status"`
	CoverLetter      string     `json:"cover_letter"`
	ExpectedSalary   *float64   `json:"expected_salary"`
	NoticePeriodDays *int       `json:"notice_period_days"`
	AdminMatchScore  *float64   `json:"match_score"` // 0-100 snapshot taken at apply time
	AppliedAt        time.Time  `json:"applied_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	JobTitle         string     `json:"job_title"`
	CompanyName      string     `json:"company_name"`
	CompanyLogo      string     `json:"company_logo"`
}

type ApplicationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, applications []*domain.Application) ([]*domain.Application, error)
	Exists(ctx context.Context, tx *gorm.DB, studentID, jobID uuid.UUID) (bool, error)
	GetByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]ApplicationRow, error)
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	repoLog := baseLog.With("repo", "ApplicationRepo")
	return &applicationRepo{db: db, log: repoLog}
}

func (r *applicationRepo) Create(ctx context.Context, tx *gorm.DB, applications []*domain.Application) ([]*domain.Application, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(applications) == 0 {
		return []*domain.Application{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *applicationRepo) Exists(ctx context.Context, tx *gorm.DB, studentID, jobID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	err := transaction.WithContext(ctx).
		Model(&domain.Application{}).
		Where("student_id = ? AND job_id = ?", studentID, jobID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *applicationRepo) GetByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]ApplicationRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []ApplicationRow
	err := transaction.WithContext(ctx).
		Table("application AS a").
		Select(`a.id, a.job_id, a.status, a.cover_letter, a.expected_salary,
			a.notice_period_days, a.admin_match_score, a.applied_at, a.updated_at,
			j.title AS job_title, c.name AS company_name, c.logo_url AS company_logo`).
		Joins("JOIN job j ON j.id = a.job_id").
		Joins("JOIN company c ON c.id = j.company_id").
		Where("a.student_id = ?", studentID).
		Order("a.applied_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
