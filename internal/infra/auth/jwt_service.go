// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"ventas/config"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/service"
	"ventas/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	accessSecret  []byte        // Secret key for signing access tokens.
	refreshSecret []byte        // Secret key for signing refresh tokens.
	accessTTL     time.Duration // Time-to-live for access tokens.
	refreshTTL    time.Duration // Time-to-live for refresh tokens.
	now           func() time.Time
}

// NewJWTService is the constructor for jwtService.
// Access and refresh tokens must be signed with different secrets.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}
	if cfg.SecretKey.Access == cfg.SecretKey.Refresh {
		return nil, errors.New("jwt access and refresh secrets must differ")
	}

	accessTTL := 15 * time.Minute
	refreshTTL := 7 * 24 * time.Hour
	if cfg.Auth != nil {
		if cfg.Auth.AccessTokenTTLMinutes > 0 {
			accessTTL = cfg.Auth.AccessTokenTTL()
		}
		if cfg.Auth.RefreshTokenTTLDays > 0 {
			refreshTTL = cfg.Auth.RefreshTokenTTL()
		}
	}

	return &jwtService{
		accessSecret:  []byte(cfg.SecretKey.Access),
		refreshSecret: []byte(cfg.SecretKey.Refresh),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

// IssueAccessToken creates a signed access token carrying the user's current role.
func (s *jwtService) IssueAccessToken(userID uuid.UUID, role string) (string, error) {
	return s.generateToken(userID, role, service.TokenClassAccess)
}

// IssueRefreshToken creates a signed refresh token.
func (s *jwtService) IssueRefreshToken(userID uuid.UUID) (string, error) {
	return s.generateToken(userID, "", service.TokenClassRefresh)
}

// Verify parses the token with the key of the requested class and checks its type claim.
func (s *jwtService) Verify(tokenString string, class service.TokenClass) (*service.Claims, error) {
	secret, err := s.secretFor(class)
	if err != nil {
		return nil, err
	}

	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainerrors.ErrTokenExpired.WrapMessage("token expired")
		}

		return nil, errors.Wrap(domainerrors.ErrTokenInvalid, err.Error())
	}
	if !token.Valid {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("token not valid")
	}

	if claims.Type != string(class) {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("unexpected token type")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("invalid subject")
	}
	claims.UserID = userID

	return claims, nil
}

// RefreshTokenTTL returns the configured duration for refresh tokens.
func (s *jwtService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}

func (s *jwtService) secretFor(class service.TokenClass) ([]byte, error) {
	switch class {
	case service.TokenClassAccess:
		return s.accessSecret, nil
	case service.TokenClassRefresh:
		return s.refreshSecret, nil
	default:
		return nil, errors.Errorf("unknown token class: %s", class)
	}
}

// generateToken is a private helper to create a JWT with specific claims.
// The jti keeps two tokens minted for the same user within one second distinct.
func (s *jwtService) generateToken(userID uuid.UUID, role string, class service.TokenClass) (string, error) {
	secret, err := s.secretFor(class)
	if err != nil {
		return "", err
	}

	ttl := s.accessTTL
	if class == service.TokenClassRefresh {
		ttl = s.refreshTTL
	}

	now := s.now()
	claims := service.Claims{
		Role: role,
		Type: string(class),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}
