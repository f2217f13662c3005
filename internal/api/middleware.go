package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadsboard/server/internal/auth"
	"leadsboard/server/internal/models"
)

const claimsKey = "session_claims"

// CurrentUser resolves the session cookie into claims when present.
// Requests without a valid session pass through unauthenticated; view
// middleware decides whether that matters.
func (h *Handler) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(h.cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		claims, err := h.auth.ParseToken(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireView gates a handler behind the role menu: the session role must
// list the view among its visible views.
func (h *Handler) RequireView(view string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login Required"})
			return
		}
		if !models.CanAccess(claims.Role, view) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "View not available for this role"})
			return
		}
		c.Next()
	}
}

func currentClaims(c *gin.Context) *auth.Claims {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}
