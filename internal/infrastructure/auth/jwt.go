// Package auth verifies the bearer tokens issued by the identity service and
// turns them into a shared.Caller.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Claims are the identity claims: sub is the user id, role one of shared.Role
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Caller converts validated claims into the caller identity
func (c *Claims) Caller() (shared.Caller, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return shared.Caller{}, fmt.Errorf("%w: sub is not a uuid", ErrInvalidClaims)
	}
	role := shared.Role(c.Role)
	if !role.IsValid() || role == shared.RoleSystem {
		return shared.Caller{}, fmt.Errorf("%w: unknown role %q", ErrInvalidClaims, c.Role)
	}
	return shared.NewCaller(userID, role), nil
}

// Verifier validates HS256 tokens
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a verifier; an empty Issuer skips the iss check
func NewVerifier(cfg config.JWTConfig) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &Verifier{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}
}

// Verify parses tokenString and returns its claims
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	default:
		return nil, ErrInvalidToken
	}
}

// Issue signs a token for caller. The identity service owns issuance in
// production; this serves the dev token command and tests.
func Issue(cfg config.JWTConfig, caller shared.Caller, ttl time.Duration, now time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   caller.UserID.String(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: string(caller.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}
