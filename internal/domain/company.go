package domain

import (
	"time"

	"github.com/google/uuid"
)

type Company struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"not null;column:name;index" json:"name"`
	LogoURL     string    `gorm:"column:logo_url" json:"logo_url"`
	Industry    string    `gorm:"column:industry" json:"industry"`
	WebsiteURL  string    `gorm:"column:website_url" json:"website_url"`
	Location    string    `gorm:"column:location" json:"location"`
	CompanySize string    `gorm:"column:company_size" json:"company_size"`
	Description string    `gorm:"column:description;type:text" json:"description"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Company) TableName() string { return "company" }
