package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleProfile is the rubric a resume is screened against. Only rubric
// configuration is stored; candidate data never is.
type RoleProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id" yaml:"-"`
	Slug      string    `gorm:"type:text;uniqueIndex;not null" json:"slug" yaml:"slug"`
	Title     string    `gorm:"type:text;not null" json:"title" yaml:"title"`
	Rubric    string    `gorm:"type:text;not null" json:"rubric" yaml:"rubric"`
	Threshold int       `gorm:"not null;default:3" json:"threshold" yaml:"threshold"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at" yaml:"-"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at" yaml:"-"`
}

func (RoleProfile) TableName() string {
	return "role_profiles"
}

// DefaultThreshold is the final score a candidate needs to proceed.
const DefaultThreshold = 3
