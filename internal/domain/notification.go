package domain

import (
	"time"

	"github.com/google/uuid"
)

const NotificationApplicationUpdate = "application_update"

type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Type       string `gorm:"not null;column:type" json:"type"`
	Title      string `gorm:"not null;column:title" json:"title"`
	Message    string `gorm:"column:message;type:text" json:"message"`
	ActionURL  string `gorm:"column:action_url" json:"action_url,omitempty"`
	ActionText string `gorm:"column:action_text" json:"action_text,omitempty"`

	ReferenceType string     `gorm:"column:reference_type" json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID `gorm:"type:uuid;column:reference_id" json:"reference_id,omitempty"`

	IsRead    bool      `gorm:"column:is_read;not null;default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Notification) TableName() string { return "notification" }
