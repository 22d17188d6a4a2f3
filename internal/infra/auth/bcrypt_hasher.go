package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"ventas/config"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/service"
	"ventas/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

// minBcryptCost is the lowest work factor accepted for stored passwords.
const minBcryptCost = 10

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost   int
	policy config.PasswordStrengthConfig
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost + 2
	if cfg.Auth != nil && cfg.Auth.BcryptCost > 0 {
		cost = cfg.Auth.BcryptCost
	}

	var policy config.PasswordStrengthConfig
	if cfg.PasswordStrength != nil {
		policy = *cfg.PasswordStrength
	}

	return newBcryptHasher(cost, policy)
}

func newBcryptHasher(cost int, policy config.PasswordStrengthConfig) *bcryptHasher {
	if cost < minBcryptCost {
		cost = minBcryptCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}

	return &bcryptHasher{cost: cost, policy: policy}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	// err is nil if the password and hash match.
	return err == nil
}

// ValidatePasswordStrength applies the configured password policy.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	length := utf8.RuneCountInString(password)

	if h.policy.MinLength > 0 && length < h.policy.MinLength {
		return errors.Wrapf(domainerrors.ErrPasswordStrength, "must be at least %d characters long", h.policy.MinLength)
	}
	// bcrypt ignores everything past 72 bytes.
	if len(password) > 72 {
		return errors.Wrap(domainerrors.ErrPasswordStrength, "must be at most 72 bytes long")
	}
	if h.policy.MaxLength > 0 && length > h.policy.MaxLength {
		return errors.Wrapf(domainerrors.ErrPasswordStrength, "must be at most %d characters long", h.policy.MaxLength)
	}
	if h.policy.RequireUppercase && !h.hasUppercase(password) {
		return errors.Wrap(domainerrors.ErrPasswordStrength, "must contain at least one uppercase letter")
	}
	if h.policy.RequireLowercase && !h.hasLowercase(password) {
		return errors.Wrap(domainerrors.ErrPasswordStrength, "must contain at least one lowercase letter")
	}
	if h.policy.RequireNumbers && !h.hasNumbers(password) {
		return errors.Wrap(domainerrors.ErrPasswordStrength, "must contain at least one number")
	}
	if h.policy.RequireSpecial && !h.hasSpecialChars(password) {
		return errors.Wrap(domainerrors.ErrPasswordStrength, "must contain at least one special character")
	}

	return nil
}

func (h *bcryptHasher) hasUppercase(s string) bool {
	return strings.IndexFunc(s, unicode.IsUpper) >= 0
}

func (h *bcryptHasher) hasLowercase(s string) bool {
	return strings.IndexFunc(s, unicode.IsLower) >= 0
}

func (h *bcryptHasher) hasNumbers(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func (h *bcryptHasher) hasSpecialChars(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}) >= 0
}
