package jobs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

// RequirementRow is one job skill requirement joined with its skill name.
// Requirements referencing a deleted skill are dropped by the inner join
// instead of failing the whole batch.
type RequirementRow struct {
	JobID              uuid.UUID `json:"job_id"`
	SkillID            uuid.UUID `json:"skill_id"`
	SkillName          string    `json:"skill_name"`
	IsMandatory        bool      `json:"is_mandatory"`
	MinExperienceYears *int      `json:"min_experience_years"`
}

type JobSkillRepo interface {
	// GetByJobIDs returns requirements for every requested job in one query,
	// keyed by job id. Jobs with no requirements are absent from the map.
	// Callers must not loop per-job over this; the batch shape is the
	// guarantee against N+1 fan-out.
	GetByJobIDs(ctx context.Context, tx *gorm.DB, jobIDs []uuid.UUID) (map[uuid.UUID][]RequirementRow, error)
}

type jobSkillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobSkillRepo(db *gorm.DB, baseLog *logger.Logger) JobSkillRepo {
	repoLog := baseLog.With("repo", "JobSkillRepo")
	return &jobSkillRepo{db: db, log: repoLog}
}

func (r *jobSkillRepo) GetByJobIDs(ctx context.Context, tx *gorm.DB, jobIDs []uuid.UUID) (map[uuid.UUID][]RequirementRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	out := make(map[uuid.UUID][]RequirementRow, len(jobIDs))
	if len(jobIDs) == 0 {
		return out, nil
	}

	var rows []RequirementRow
	err := transaction.WithContext(ctx).
		Table("job_skill AS js").
		Select("js.job_id, js.skill_id, s.name AS skill_name, js.is_mandatory, js.min_experience_years").
		Joins("JOIN skill s ON s.id = js.skill_id").
		Where("js.job_id IN ?", jobIDs).
		Order("js.job_id, js.is_mandatory DESC, s.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.JobID] = append(out[row.JobID], row)
	}
	return out, nil
}
