package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"scholarforge/internal/pkg/jwtutil"
	"scholarforge/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

// AuthJWT reads a bearer token from the Authorization header. GET requests
// may carry it in the "token" query parameter instead, so download and
// photo links work from a plain <a> or <img>.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, msg := bearerToken(c)
		if raw == "" {
			unauthorized(c, msg)
			return
		}

		claims, err := jwtutil.ParseToken(secret, raw)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, string) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		if c.Request.Method == http.MethodGet {
			if q := strings.TrimSpace(c.Query("token")); q != "" {
				return q, ""
			}
		}
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", "invalid authorization scheme"
	}
	return strings.TrimSpace(token), ""
}

func unauthorized(c *gin.Context, msg string) {
	response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, msg)
	c.Abort()
}
