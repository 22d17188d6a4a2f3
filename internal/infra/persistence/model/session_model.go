package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel mirrors the 'sessions' table. Only the SHA-256 of the refresh
// token is stored; the token itself is never persisted.
type SessionModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index:idx_sessions_user_id"`
	TokenHash       string    `gorm:"type:char(64);uniqueIndex:idx_sessions_token_hash;not null"`
	ExpiresAt       time.Time `gorm:"not null;index:idx_sessions_expires_at"`
	UserAgent       string    `gorm:"type:text"`
	IPAddress       string    `gorm:"type:varchar(64)"`
	DeviceName      string    `gorm:"type:varchar(255)"`
	FingerprintHash string    `gorm:"type:char(64);not null"`
	Revoked         bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time
	LastUsedAt      *time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}
