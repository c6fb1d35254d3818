package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"simplecrud/internal/domain"
)

const (
	userRoleKey = "userRole"
	userIDKey   = "userID"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	ParseToken(raw string) (domain.Actor, error)
}

// Auth resolves an optional bearer token into the request actor. Requests
// without a token continue as anonymous; a bad token is rejected.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			abortUnauthorized(c, "format Authorization harus Bearer <token>")
			return
		}
		actor, err := parser.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}
		c.Set(userIDKey, actor.UserID)
		c.Set(userRoleKey, actor.Role)
		c.Request = c.Request.WithContext(domain.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}

// RequireRoles only lets through actors holding one of allowedRoles. Auth must
// run first.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(userRoleKey)
		if role == "" {
			abortUnauthorized(c, "unauthorized: role tidak ditemukan pada context")
			return
		}
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(role))]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "forbidden: role tidak diizinkan",
				"code":       "forbidden",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}
