package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Job lifecycle. Only active jobs are eligible for matching.
const (
	JobStatusDraft  = "draft"
	JobStatusActive = "active"
	JobStatusPaused = "paused"
	JobStatusClosed = "closed"
	JobStatusFilled = "filled"
)

const (
	EmploymentFullTime   = "full_time"
	EmploymentPartTime   = "part_time"
	EmploymentContract   = "contract"
	EmploymentInternship = "internship"
	EmploymentFreelance  = "freelance"
)

const (
	RemoteTypeRemote = "remote"
	RemoteTypeOnSite = "on_site"
	RemoteTypeHybrid = "hybrid"
)

type Job struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Company   *Company  `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"company,omitempty"`

	Title            string `gorm:"not null;column:title" json:"title"`
	Slug             string `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Description      string `gorm:"not null;column:description;type:text" json:"description"`
	Responsibilities string `gorm:"column:responsibilities;type:text" json:"responsibilities,omitempty"`
	Requirements     string `gorm:"column:requirements;type:text" json:"requirements,omitempty"`
	NiceToHave       string `gorm:"column:nice_to_have;type:text" json:"nice_to_have,omitempty"`
	Department       string `gorm:"column:department" json:"department,omitempty"`

	EmploymentType string `gorm:"not null;column:employment_type;index" json:"employment_type"`
	RemoteType     string `gorm:"not null;default:'on_site';column:remote_type;index" json:"remote_type"`
	Location       string `gorm:"column:location" json:"location,omitempty"`

	// ExperienceMinYears of 0 means no lower bound.
	ExperienceMinYears int  `gorm:"column:experience_min_years;not null;default:0" json:"experience_min_years"`
	ExperienceMaxYears *int `gorm:"column:experience_max_years" json:"experience_max_years,omitempty"`

	SalaryMin       *float64 `gorm:"column:salary_min;type:numeric(12,2)" json:"salary_min,omitempty"`
	SalaryMax       *float64 `gorm:"column:salary_max;type:numeric(12,2)" json:"salary_max,omitempty"`
	SalaryCurrency  string   `gorm:"column:salary_currency;not null;default:'INR'" json:"salary_currency"`
	SalaryIsVisible bool     `gorm:"column:salary_is_visible;not null;default:false" json:"salary_is_visible"`

	Benefits pq.StringArray `gorm:"column:benefits;type:text[]" json:"benefits,omitempty"`

	Status   string     `gorm:"not null;default:'draft';column:status;index" json:"status"`
	PostedAt *time.Time `gorm:"column:posted_at;index" json:"posted_at,omitempty"`
	Deadline *time.Time `gorm:"column:deadline" json:"deadline,omitempty"`
	ClosedAt *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`

	ViewsCount        int `gorm:"column:views_count;not null;default:0" json:"views_count"`
	ApplicationsCount int `gorm:"column:applications_count;not null;default:0" json:"applications_count"`

	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Job) TableName() string { return "job" }

// JobSkill is a stated requirement on a job. A job with zero rows here is the
// "no declared skills" case: its skill score is nil, not zero.
type JobSkill struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	JobID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_skill" json:"job_id"`
	Job     *Job      `gorm:"constraint:OnDelete:CASCADE;foreignKey:JobID;references:ID" json:"job,omitempty"`
	SkillID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_skill" json:"skill_id"`
	Skill   *Skill    `gorm:"constraint:OnDelete:CASCADE;foreignKey:SkillID;references:ID" json:"skill,omitempty"`

	IsMandatory        bool `gorm:"column:is_mandatory;not null;default:true" json:"is_mandatory"`
	MinExperienceYears *int `gorm:"column:min_experience_years" json:"min_experience_years,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (JobSkill) TableName() string { return "job_skill" }
