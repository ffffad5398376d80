package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Student struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Headline        string `gorm:"column:headline" json:"headline"`
	Bio             string `gorm:"column:bio;type:text" json:"bio"`
	Education       string `gorm:"column:education" json:"education"`
	ExperienceYears int    `gorm:"column:experience_years;not null;default:0" json:"experience_years"`

	PreferredEmploymentTypes pq.StringArray `gorm:"column:preferred_employment_types;type:text[]" json:"preferred_employment_types"`
	PreferredRemoteTypes     pq.StringArray `gorm:"column:preferred_remote_types;type:text[]" json:"preferred_remote_types"`
	PreferredLocations       pq.StringArray `gorm:"column:preferred_locations;type:text[]" json:"preferred_locations"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Student) TableName() string { return "student" }

// StudentSkill is unique per (student, skill).
type StudentSkill struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_skill" json:"student_id"`
	Student   *Student  `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	SkillID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_skill" json:"skill_id"`
	Skill     *Skill    `gorm:"constraint:OnDelete:CASCADE;foreignKey:SkillID;references:ID" json:"skill,omitempty"`

	// ProficiencyLevel is self-rated, 0..5.
	ProficiencyLevel  int     `gorm:"column:proficiency_level;not null;default:0" json:"proficiency_level"`
	YearsOfExperience float64 `gorm:"column:years_of_experience;not null;default:0" json:"years_of_experience"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (StudentSkill) TableName() string { return "student_skill" }
