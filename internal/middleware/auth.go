package middleware

import (
	"net/http"

	"github.com/esilogis/intervention-service/internal/auth"
	"github.com/esilogis/intervention-service/internal/model"
	"github.com/gin-gonic/gin"
)

const claimsKey = "authClaims"

// Authenticate rejects requests without a valid bearer token and attaches the
// caller claims to the gin context.
func Authenticate(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "authorization header required",
			})
			return
		}
		claims, err := authSvc.ValidateToken(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "invalid token",
			})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole allows only the given role (ADMIN always passes).
func RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "caller identity required",
			})
			return
		}
		if claims.Role != role && claims.Role != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false, "message": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// ClaimsFrom extracts the verified caller claims set by Authenticate.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
