package domain

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title        string    `gorm:"not null;column:title" json:"title"`
	Slug         string    `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Description  string    `gorm:"column:description;type:text" json:"description"`
	Price        *float64  `gorm:"column:price;type:numeric(12,2)" json:"price,omitempty"`
	Currency     string    `gorm:"column:currency;not null;default:'INR'" json:"currency"`
	ThumbnailURL string    `gorm:"column:thumbnail_url" json:"thumbnail_url,omitempty"`
	IsPublished  bool      `gorm:"column:is_published;not null;default:false;index" json:"is_published"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

// CourseSkill tags a course with a skill it teaches. IsPrimary marks the
// skill the course primarily teaches, preferred when deduplicating gap lookups.
type CourseSkill struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_skill" json:"course_id"`
	Course   *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	SkillID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_skill" json:"skill_id"`
	Skill    *Skill    `gorm:"constraint:OnDelete:CASCADE;foreignKey:SkillID;references:ID" json:"skill,omitempty"`

	IsPrimary bool `gorm:"column:is_primary;not null;default:false" json:"is_primary"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (CourseSkill) TableName() string { return "course_skill" }

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
)

type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment" json:"student_id"`
	Student   *Student  `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment" json:"course_id"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`

	Status            string     `gorm:"not null;default:'active';column:status;index" json:"status"`
	CertificateIssued bool       `gorm:"column:certificate_issued;not null;default:false" json:"certificate_issued"`
	EnrolledAt        time.Time  `gorm:"column:enrolled_at;not null;default:now()" json:"enrolled_at"`
	CompletedAt       *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (Enrollment) TableName() string { return "enrollment" }
