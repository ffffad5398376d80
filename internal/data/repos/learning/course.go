package learning

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

// GapCourseRow is a published course that teaches at least one of the
// requested skills, with the subset of those skills it covers.
type GapCourseRow struct {
	CourseID      uuid.UUID      `json:"course_id" gorm:"column:course_id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Price         *float64       `json:"price"`
	Currency      string         `json:"currency"`
	ThumbnailURL  string         `json:"thumbnail_url" gorm:"column:thumbnail_url"`
	TeachesSkills pq.StringArray `json:"teaches_skills" gorm:"column:teaches_skills;type:text[]"`
}

type CourseRepo interface {
	// GapCourses returns up to limit published courses teaching any of the
	// named skills, each course once, primary-skill courses first.
	GapCourses(ctx context.Context, tx *gorm.DB, skillNames []string, limit int) ([]GapCourseRow, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) GapCourses(ctx context.Context, tx *gorm.DB, skillNames []string, limit int) ([]GapCourseRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(skillNames) == 0 {
		return []GapCourseRow{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT DISTINCT ON (c.id)
			c.id AS course_id,
			c.title,
			c.slug,
			c.price,
			c.currency,
			c.thumbnail_url,
			ARRAY(
				SELECT s2.name
				FROM course_skill cs2
				JOIN skill s2 ON s2.id = cs2.skill_id
				WHERE cs2.course_id = c.id AND s2.name = ANY(?)
				ORDER BY s2.name
			) AS teaches_skills
		FROM course c
		JOIN course_skill cs ON cs.course_id = c.id
		JOIN skill s ON s.id = cs.skill_id
		WHERE s.name = ANY(?) AND c.is_published = TRUE
		ORDER BY c.id, cs.is_primary DESC
		LIMIT ?`

	names := pq.Array(skillNames)
	var rows []GapCourseRow
	err := transaction.WithContext(ctx).Raw(query, names, names, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
