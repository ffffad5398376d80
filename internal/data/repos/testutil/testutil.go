package testutil

import (
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			dbErr = errMissingDSN
			return
		}

		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			dbErr = err
			return
		}

		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			dbErr = err
			return
		}
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
			dbErr = err
			return
		}

		if err := autoMigrateAll(db); err != nil {
			dbErr = err
			return
		}
	})

	if errors.Is(dbErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run repo integration tests")
	}
	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return db
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func autoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Student{},
		&domain.Skill{},
		&domain.StudentSkill{},

		&domain.Company{},
		&domain.Job{},
		&domain.JobSkill{},
		&domain.Application{},

		&domain.Course{},
		&domain.CourseSkill{},
		&domain.Enrollment{},

		&domain.StudentEmbedding{},
		&domain.JobEmbedding{},
		&domain.Notification{},
	)
}

func SeedUser(tb testing.TB, tx *gorm.DB, email, userType string) *domain.User {
	tb.Helper()
	user := &domain.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		UserType:  userType,
		Status:    domain.UserStatusActive,
	}
	if err := tx.Create(user).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return user
}

func SeedStudent(tb testing.TB, tx *gorm.DB, userID uuid.UUID) *domain.Student {
	tb.Helper()
	student := &domain.Student{ID: uuid.New(), UserID: userID}
	if err := tx.Create(student).Error; err != nil {
		tb.Fatalf("seed student: %v", err)
	}
	return student
}

func SeedSkill(tb testing.TB, tx *gorm.DB, name string) *domain.Skill {
	tb.Helper()
	skill := &domain.Skill{ID: uuid.New(), Name: name}
	if err := tx.Create(skill).Error; err != nil {
		tb.Fatalf("seed skill: %v", err)
	}
	return skill
}

func SeedCompany(tb testing.TB, tx *gorm.DB, name string) *domain.Company {
	tb.Helper()
	company := &domain.Company{ID: uuid.New(), Name: name}
	if err := tx.Create(company).Error; err != nil {
		tb.Fatalf("seed company: %v", err)
	}
	return company
}

func SeedJob(tb testing.TB, tx *gorm.DB, companyID uuid.UUID, title, slug string) *domain.Job {
	tb.Helper()
	job := &domain.Job{
		ID:             uuid.New(),
		CompanyID:      companyID,
		Title:          title,
		Slug:           slug,
		EmploymentType: domain.EmploymentFullTime,
		RemoteType:     domain.RemoteTypeRemote,
		Status:         domain.JobStatusActive,
	}
	if err := tx.Create(job).Error; err != nil {
		tb.Fatalf("seed job: %v", err)
	}
	return job
}

func SeedCourse(tb testing.TB, tx *gorm.DB, title, slug string, published bool) *domain.Course {
	tb.Helper()
	course := &domain.Course{ID: uuid.New(), Title: title, Slug: slug, IsPublished: published}
	if err := tx.Create(course).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return course
}
