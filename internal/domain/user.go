package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserTypeStudent   = "student"
	UserTypeRecruiter = "recruiter"
	UserTypeAdmin     = "admin"
)

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	FirstName string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string    `gorm:"not null;column:last_name" json:"last_name"`
	UserType  string    `gorm:"not null;default:'student';column:user_type;index" json:"user_type"`
	Status    string    `gorm:"not null;default:'active';column:status" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "user" }
