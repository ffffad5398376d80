package db

import (
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Core identity
		// =========================
		&domain.User{},
		&domain.Student{},

		// =========================
		// Skills taxonomy
		// =========================
		&domain.Skill{},
		&domain.StudentSkill{},

		// =========================
		// Recruitment
		// =========================
		&domain.Company{},
		&domain.Job{},
		&domain.JobSkill{},
		&domain.Application{},

		// =========================
		// Learning content
		// =========================
		&domain.Course{},
		&domain.CourseSkill{},
		&domain.Enrollment{},

		// =========================
		// Embeddings (pgvector)
		// =========================
		&domain.StudentEmbedding{},
		&domain.JobEmbedding{},

		// =========================
		// Notifications
		// =========================
		&domain.Notification{},
	)
}
