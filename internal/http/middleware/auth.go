package middleware

import (
	"net/http"
	"strings"

	"busbenin/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const requestContextKey = "request_context"

// Auth validates the Bearer token and stores the caller's RequestContext.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentification requise"})
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token invalide ou expiré"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token invalide"})
			return
		}

		rc := domain.RequestContext{}
		if v, ok := claims["user_id"].(float64); ok {
			rc.UserID = domain.ID(v)
		}
		if v, ok := claims["admin"].(bool); ok {
			rc.Admin = v
		}
		if v, ok := claims["compagnie_id"].(float64); ok {
			rc.CompagnieID = domain.ID(v)
		}
		if v, ok := claims["email"].(string); ok {
			rc.Email = v
		}
		if rc.UserID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token invalide"})
			return
		}

		c.Set(requestContextKey, rc)
		c.Next()
	}
}

// AdminOnly requires an admin claim; mount after Auth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := GetRequestContext(c)
		if !rc.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "accès réservé aux administrateurs"})
			return
		}
		c.Next()
	}
}

// GetRequestContext returns the authenticated caller info, zero value when
// the request is anonymous.
func GetRequestContext(c *gin.Context) domain.RequestContext {
	if c == nil {
		return domain.RequestContext{}
	}
	if v, ok := c.Get(requestContextKey); ok {
		if rc, ok := v.(domain.RequestContext); ok {
			return rc
		}
	}
	return domain.RequestContext{}
}
