package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// ExtractToken reads the bearer token from the Authorization header, falling
// back to the session_token cookie for browsers.
func ExtractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := c.Cookie("session_token"); err == nil {
		return cookie
	}
	return ""
}

// TokenAuth validates the bearer token and stores its claims on the context.
func TokenAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// SessionAuth is TokenAuth restricted to shopper tokens, so every handler
// behind it has a session ID.
func SessionAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	tokenAuth := TokenAuth(jwtService)
	return func(c *gin.Context) {
		tokenAuth(c)
		if c.IsAborted() {
			return
		}
		if GetSessionID(c) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "session token required"})
		}
	}
}

// RequireRole runs after TokenAuth and admits only the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !slices.Contains(roles, claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func GetSessionID(c *gin.Context) string {
	claims, ok := GetClaims(c)
	if !ok {
		return ""
	}
	return claims.SessionID
}
