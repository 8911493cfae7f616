// Package jwttoken issues and validates the bearer tokens the registry
// accepts. The subject of every token is a derived actor address; the
// registry never sees the underlying key material, only the address the
// ledger gateway derived at enrollment.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
)

// Claims are the access-token claims. Actor duplicates the registered
// subject so handlers can read it without re-parsing.
type Claims struct {
	Actor string `json:"actor"`
	jwt.RegisteredClaims
}

// Service handles token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateActorToken mints an HS256 token for an enrolled actor.
func (s *Service) GenerateActorToken(actor domain.Actor, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Actor: string(actor),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(actor),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// ValidateToken parses and verifies a token, returning its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// ExtractActor validates the token and parses the embedded actor address.
func (s *Service) ExtractActor(tokenString string) (domain.Actor, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	actor, ok := domain.ParseActor(claims.Actor)
	if !ok {
		return "", dErrors.New(dErrors.CodeUnauthorized, "token carries no actor")
	}
	return actor, nil
}
