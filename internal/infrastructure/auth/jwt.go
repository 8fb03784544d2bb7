// Package auth verifies bearer tokens that identify the acting user.
// Tokens are minted by an external identity provider; the ledger only
// needs the subject to attribute transactions.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spares/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidSubject   = errors.New("token subject is not a valid actor id")
	ErrDisabled         = errors.New("token verification is not configured")
)

// Claims are the claims read from an actor token
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

// ActorID parses the subject claim as an actor id
func (c *Claims) ActorID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidSubject
	}
	return id, nil
}

// TokenVerifier validates HS256 actor tokens
type TokenVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewTokenVerifier creates a verifier from config.
// Returns nil when no secret is configured.
func NewTokenVerifier(cfg config.AuthConfig) *TokenVerifier {
	if cfg.JWTSecret == "" {
		return nil
	}
	return &TokenVerifier{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		leeway: 30 * time.Second,
	}
}

// Verify validates a raw token and returns its claims.
// A "Bearer " prefix is accepted and stripped.
func (v *TokenVerifier) Verify(raw string) (*Claims, error) {
	if v == nil {
		return nil, ErrDisabled
	}
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if raw == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.ActorID(); err != nil {
		return nil, err
	}
	return claims, nil
}

// Sign creates a token for actorID with the verifier's secret.
// Used by tests and local tooling; production tokens come from the identity provider.
func (v *TokenVerifier) Sign(actorID uuid.UUID, username string, ttl time.Duration) (string, error) {
	if v == nil {
		return "", ErrDisabled
	}
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    v.issuer,
			Subject:   actorID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
