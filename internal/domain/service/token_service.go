package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClass selects which signing key a token is issued and verified with.
type TokenClass string

const (
	TokenClassAccess  TokenClass = "access"
	TokenClassRefresh TokenClass = "refresh"
)

// Claims defines the custom claims for the JWT tokens.
type Claims struct {
	UserID uuid.UUID `json:"-"` // Parsed from the subject claim.
	Role   string    `json:"role,omitempty"`
	Type   string    `json:"type"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// IssueAccessToken creates a short-lived access token carrying the user's role.
	IssueAccessToken(userID uuid.UUID, role string) (string, error)

	// IssueRefreshToken creates a long-lived refresh token.
	IssueRefreshToken(userID uuid.UUID) (string, error)

	// Verify checks signature, expiry and token class using the key of that class.
	Verify(tokenString string, class TokenClass) (*Claims, error)

	// RefreshTokenTTL returns the configured lifetime of refresh tokens.
	RefreshTokenTTL() time.Duration
}
