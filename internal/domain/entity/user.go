// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a back-office account. Credentials live on the record itself.
type User struct {
	ID            uuid.UUID  // The Global Unique Identifier (GUID) for the user.
	Email         string     // Login identifier, always stored lower-cased.
	PasswordHash  string     // bcrypt hash. Never leaves the usecase layer.
	FirstName     string     // Optional given name.
	LastName      string     // Optional family name.
	Role          Role       // Authorization scope carried in access tokens.
	Disabled      bool       // Administratively blocked from authenticating.
	Compromised   bool       // Set when a refresh attempt is detected from a foreign context.
	CompromisedAt *time.Time // When the account was marked compromised.
	CreatedAt     time.Time  // Timestamp of when this user account was created.
	UpdatedAt     time.Time  // Timestamp of the last modification to this user's data.
}

// CanAuthenticate reports whether the account may log in or renew tokens.
func (u *User) CanAuthenticate() bool {
	return !u.Disabled && !u.Compromised
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
