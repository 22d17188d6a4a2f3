// Package model holds the GORM row mappings of the persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. Email is stored lower-cased, so the
// unique index doubles as a case-insensitive uniqueness guarantee.
type UserModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex:idx_users_email;not null"`
	PasswordHash  string    `gorm:"type:varchar(255);not null"`
	FirstName     string    `gorm:"type:varchar(100)"`
	LastName      string    `gorm:"type:varchar(100)"`
	Role          string    `gorm:"type:varchar(20);not null;default:'customer'"`
	Disabled      bool      `gorm:"not null;default:false"`
	Compromised   bool      `gorm:"not null;default:false"`
	CompromisedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Sessions []SessionModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
