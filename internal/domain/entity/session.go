package entity

import (
	"time"

	"ventas/internal/domain/fingerprint"

	"github.com/google/uuid"
)

// Session is a server-side refresh token record, one per issued refresh token.
// State: Active -> Rotated (successor Active) | Revoked | Expired (implicit).
type Session struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	TokenHash       string // SHA-256 hex of the opaque refresh token.
	ExpiresAt       time.Time
	UserAgent       string
	IPAddress       string
	DeviceName      string
	FingerprintHash string
	Revoked         bool
	CreatedAt       time.Time
	LastUsedAt      *time.Time
}

// IsExpired reports whether the session's refresh window has passed.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// IsActive reports whether the session can still be exchanged for new tokens.
func (s *Session) IsActive(now time.Time) bool {
	return !s.Revoked && !s.IsExpired(now)
}

// Context returns the device context the session was issued to.
func (s *Session) Context() RequestContext {
	return RequestContext{
		UserAgent:  s.UserAgent,
		IPAddress:  s.IPAddress,
		DeviceName: s.DeviceName,
	}
}

// RequestContext is the device and network context of an inbound request.
// Empty strings stand for values the client did not provide.
type RequestContext struct {
	UserAgent  string
	IPAddress  string
	DeviceName string
}

// Fingerprint returns the digest of the context.
func (rc RequestContext) Fingerprint() string {
	return fingerprint.Build(rc.UserAgent, rc.IPAddress, rc.DeviceName)
}
