// Package service declares the domain's outbound ports: credentials, tokens,
// events, notifications, payments and metrics. Implementations live under infra.
package service

// PasswordHasher owns the credential hashing policy for back-office accounts.
type PasswordHasher interface {
	// Hash returns a salted hash suitable for User.PasswordHash.
	Hash(password string) (string, error)

	// Check reports whether password matches hash.
	// Malformed hashes are a negative match, never an error.
	Check(password, hash string) bool

	// ValidatePasswordStrength enforces the configured length policy at registration.
	ValidatePasswordStrength(password string) error
}
