package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spares/backend/internal/infrastructure/auth"
	"github.com/spares/backend/internal/infrastructure/logger"
	"github.com/spares/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// HeaderActorID names the acting user when no bearer token is used
const HeaderActorID = "X-User-ID"

// ActorConfig configures actor resolution
type ActorConfig struct {
	// Verifier validates bearer tokens; nil disables them
	Verifier *auth.TokenVerifier
	// RequireToken rejects requests without a valid bearer token.
	// Safe methods (GET, HEAD, OPTIONS) are always let through.
	RequireToken bool
	Logger       *zap.Logger
}

// Actor resolves the acting user for the request.
//
// A valid bearer token wins; otherwise the X-User-ID header is used. Both are
// optional unless RequireToken is set: a request without an actor is
// recorded as system initiated.
func Actor(cfg ActorConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); cfg.Verifier != nil && strings.HasPrefix(header, "Bearer ") {
			claims, err := cfg.Verifier.Verify(header)
			if err != nil {
				logger.Enrich(c.Request.Context(), log).Debug("Rejected bearer token", zap.Error(err))
				abortUnauthorized(c, tokenErrorMessage(err))
				return
			}
			actorID, _ := claims.ActorID()
			setActor(c, actorID)
			c.Next()
			return
		}

		if cfg.RequireToken && !isSafeMethod(c.Request.Method) {
			abortUnauthorized(c, "Bearer token required")
			return
		}

		if raw := strings.TrimSpace(c.GetHeader(HeaderActorID)); raw != "" {
			actorID, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.Failure(
					dto.ErrCodeInvalidInput, HeaderActorID+" must be a UUID", GetRequestID(c)))
				return
			}
			setActor(c, actorID)
		}
		c.Next()
	}
}

// GetActorID returns the actor resolved by Actor, or nil for system requests
func GetActorID(c *gin.Context) *uuid.UUID {
	v, ok := c.Get(ActorIDKey)
	if !ok {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

func setActor(c *gin.Context, actorID uuid.UUID) {
	c.Set(ActorIDKey, actorID)
	c.Request = c.Request.WithContext(logger.WithActorID(c.Request.Context(), actorID.String()))
}

func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="spares"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Failure(
		dto.ErrCodeUnauthorized, message, GetRequestID(c)))
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrInvalidSubject):
		return "Token subject is not a valid actor id"
	default:
		return "Invalid token"
	}
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
