package students

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

// SkillRow is one student skill joined with its skill name. Rows whose skill
// record no longer exists are dropped by the inner join.
type SkillRow struct {
	SkillID           uuid.UUID `json:"skill_id"`
	SkillName         string    `json:"skill_name"`
	ProficiencyLevel  int       `json:"proficiency_level"`
	YearsOfExperience float64   `json:"years_of_experience"`
}

type StudentSkillRepo interface {
	GetByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]SkillRow, error)
}

type studentSkillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentSkillRepo(db *gorm.DB, baseLog *logger.Logger) StudentSkillRepo {
	repoLog := baseLog.With("repo", "StudentSkillRepo")
	return &studentSkillRepo{db: db, log: repoLog}
}

func (r *studentSkillRepo) GetByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]SkillRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []SkillRow
	err := transaction.WithContext(ctx).
		Table("student_skill AS ss").
		Select("ss.skill_id, s.name AS skill_name, ss.proficiency_level, ss.years_of_experience").
		Joins("JOIN skill s ON s.id = ss.skill_id").
		Where("ss.student_id = ?", studentID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
