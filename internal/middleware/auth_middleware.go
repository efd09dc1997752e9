// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"gongu-service/internal/pkg/response"
	"gongu-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
)

const ctxSellerID = "seller_id"

// AuthMiddleware resolves opaque bearer tokens against the sessions the
// external auth service maintains in Redis. Token issuance and revocation
// are that service's business; this core only needs the seller behind the
// request.
type AuthMiddleware struct {
	sessions *session.Manager
}

func NewAuthMiddleware(sessions *session.Manager) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Auth requires a valid seller session and stores the seller id in context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		s, err := m.sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired session", err)
			return
		}

		c.Set(ctxSellerID, s.SellerID)
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header,
// falling back to the query param for websocket upgrades (browsers cannot
// set headers on those).
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return c.Query("token")
}

// GetSellerID returns the authenticated seller id from context.
func GetSellerID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ctxSellerID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetSellerID gets the seller id from context or panics; only for use
// behind Auth().
func MustGetSellerID(c *gin.Context) int64 {
	id, ok := GetSellerID(c)
	if !ok {
		panic("seller_id not found in context")
	}
	return id
}
