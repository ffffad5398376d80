package domain

import (
	"time"

	"github.com/google/uuid"
)

type Skill struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name     string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Category string    `gorm:"column:category" json:"category"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Skill) TableName() string { return "skill" }
