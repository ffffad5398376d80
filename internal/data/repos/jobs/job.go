package jobs

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

// BrowseFilter narrows the active-job listing. Zero values mean "no filter".
type BrowseFilter struct {
	Search         string
	EmploymentType string
	RemoteType     string
	Location       string
	Limit          int
	Offset         int
}

type JobRepo interface {
	Create(ctx context.Context, tx *gorm.DB, jobs []*domain.Job) ([]*domain.Job, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, jobIDs []uuid.UUID) ([]*domain.Job, error)
	GetByID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*domain.Job, error)
	ListActive(ctx context.Context, tx *gorm.DB, filter BrowseFilter) ([]*domain.Job, error)
	CountActive(ctx context.Context, tx *gorm.DB, filter BrowseFilter) (int64, error)
	IncrementApplicationsCount(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) error
}

type jobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRepo(db *gorm.DB, baseLog *logger.Logger) JobRepo {
	repoLog := baseLog.With("repo", "JobRepo")
	return &jobRepo{db: db, log: repoLog}
}

func (r *jobRepo) Create(ctx context.Context, tx *gorm.DB, jobs []*domain.Job) ([]*domain.Job, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(jobs) == 0 {
		return []*domain.Job{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepo) GetByIDs(ctx context.Context, tx *gorm.DB, jobIDs []uuid.UUID) ([]*domain.Job, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Job
	if len(jobIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Company").
		Where("id IN ?", jobIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *jobRepo) GetByID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*domain.Job, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result domain.Job
	err := transaction.WithContext(ctx).
		Preload("Company").
		Where("id = ?", jobID).
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

func (r *jobRepo) ListActive(ctx context.Context, tx *gorm.DB, filter BrowseFilter) ([]*domain.Job, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Model(&domain.Job{}).
		Preload("Company").
		Joins("JOIN company c ON c.id = job.company_id").
		Where("job.status = ?", domain.JobStatusActive)

	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(job.title) LIKE ? OR LOWER(job.description) LIKE ? OR LOWER(c.name) LIKE ?", like, like, like)
	}
	if filter.EmploymentType != "" {
		q = q.Where("job.employment_type = ?", filter.EmploymentType)
	}
	if filter.RemoteType != "" {
		q = q.Where("job.remote_type = ?", filter.RemoteType)
	}
	if l := strings.TrimSpace(filter.Location); l != "" {
		q = q.Where("LOWER(job.location) LIKE ?", "%"+strings.ToLower(l)+"%")
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var results []*domain.Job
	if err := q.Order("job.posted_at DESC NULLS LAST").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *jobRepo) CountActive(ctx context.Context, tx *gorm.DB, filter BrowseFilter) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Model(&domain.Job{}).
		Joins("JOIN company c ON c.id = job.company_id").
		Where("job.status = ?", domain.JobStatusActive)

	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(job.title) LIKE ? OR LOWER(job.description) LIKE ? OR LOWER(c.name) LIKE ?", like, like, like)
	}
	if filter.EmploymentType != "" {
		q = q.Where("job.employment_type = ?", filter.EmploymentType)
	}
	if filter.RemoteType != "" {
		q = q.Where("job.remote_type = ?", filter.RemoteType)
	}
	if l := strings.TrimSpace(filter.Location); l != "" {
		q = q.Where("LOWER(job.location) LIKE ?", "%"+strings.ToLower(l)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *jobRepo) IncrementApplicationsCount(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ?", jobID).
		UpdateColumn("applications_count", gorm.Expr("applications_count + 1")).Error
}
