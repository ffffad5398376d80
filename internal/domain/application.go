package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ApplicationPendingAdminReview = "pending_admin_review"
	ApplicationForwarded          = "forwarded"
	ApplicationRejected           = "rejected"
	ApplicationWithdrawn          = "withdrawn"
)

type Application struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_pair" json:"student_id"`
	Student   *Student  `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_pair" json:"job_id"`
	Job       *Job      `gorm:"constraint:OnDelete:CASCADE;foreignKey:JobID;references:ID" json:"job,omitempty"`

	Status           string   `gorm:"not null;default:'pending_admin_review';column:status;index" json:"status"`
	CoverLetter      string   `gorm:"column:cover_letter;type:text" json:"cover_letter,omitempty"`
	ExpectedSalary   *float64 `gorm:"column:expected_salary;type:numeric(12,2)" json:"expected_salary,omitempty"`
	NoticePeriodDays *int     `gorm:"column:notice_period_days" json:"notice_period_days,omitempty"`

	// AdminMatchScore is the composite score snapshot taken once at apply time,
	// on a 0-100 display scale rounded to 2 decimals. Nil when the pair could
	// not be scored (missing embedding).
	AdminMatchScore *float64 `gorm:"column:admin_match_score;type:numeric(5,2)" json:"admin_match_score,omitempty"`

	AppliedAt time.Time `gorm:"column:applied_at;not null;default:now()" json:"applied_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Application) TableName() string { return "application" }
