package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spares/backend/internal/infrastructure/config"
)

// CORSConfig lists what cross-origin callers may do. An empty Origins
// list disables CORS entirely; "*" allows any origin without credentials.
type CORSConfig struct {
	Origins     []string
	Methods     []string
	Headers     []string
	Expose      []string
	Credentials bool
	MaxAge      time.Duration
}

// CORSConfigFrom builds a CORS config from the HTTP settings
func CORSConfigFrom(cfg config.HTTPConfig) CORSConfig {
	c := CORSConfig{
		Origins:     cfg.CORSAllowOrigins,
		Methods:     cfg.CORSAllowMethods,
		Headers:     cfg.CORSAllowHeaders,
		Expose:      []string{HeaderRequestID},
		Credentials: true,
		MaxAge:      12 * time.Hour,
	}
	if len(c.Methods) == 0 {
		c.Methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	}
	if len(c.Headers) == 0 {
		c.Headers = []string{"Content-Type", "Authorization", HeaderRequestID, HeaderActorID}
	}
	return c
}

// CORS answers preflight requests with 204 and decorates responses to
// listed origins. Unlisted origins get no CORS headers at all.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	anyOrigin := slices.Contains(cfg.Origins, "*")
	fixed := map[string]string{
		"Access-Control-Allow-Methods": strings.Join(cfg.Methods, ", "),
		"Access-Control-Allow-Headers": strings.Join(cfg.Headers, ", "),
	}
	if len(cfg.Expose) > 0 {
		fixed["Access-Control-Expose-Headers"] = strings.Join(cfg.Expose, ", ")
	}
	if cfg.MaxAge > 0 {
		fixed["Access-Control-Max-Age"] = strconv.Itoa(int(cfg.MaxAge / time.Second))
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := ""
		switch {
		case anyOrigin:
			allowed = "*"
		case origin != "" && slices.Contains(cfg.Origins, origin):
			allowed = origin
		}

		if allowed != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				h.Add("Vary", "Origin")
				if cfg.Credentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}
			for k, v := range fixed {
				h.Set(k, v)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SecurityConfig configures SecurityHeaders. HSTS is sent only when
// HSTSMaxAge is positive.
type SecurityConfig struct {
	HSTSMaxAge            time.Duration
	HSTSIncludeSubdomains bool
	ContentSecurityPolicy string
}

// DefaultSecurityConfig suits a JSON-only API served without TLS termination
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSIncludeSubdomains: true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
	}
}

// SecurityHeaders sets the static hardening headers on every response
func SecurityHeaders(cfg SecurityConfig) gin.HandlerFunc {
	headers := [][2]string{
		{"X-Frame-Options", "DENY"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "no-referrer"},
	}
	if cfg.ContentSecurityPolicy != "" {
		headers = append(headers, [2]string{"Content-Security-Policy", cfg.ContentSecurityPolicy})
	}
	if cfg.HSTSMaxAge > 0 {
		hsts := "max-age=" + strconv.Itoa(int(cfg.HSTSMaxAge/time.Second))
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		headers = append(headers, [2]string{"Strict-Transport-Security", hsts})
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range headers {
			h.Set(kv[0], kv[1])
		}
		c.Next()
	}
}
