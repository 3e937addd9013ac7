package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, userID string, issuer string, scopes []string) {
	claims := MockValidatedClaims(userID, issuer, scopes)
	c.Set("user_id", userID)
	c.Set("validated_claims", claims)
	c.Set("access_token", "test-token-"+userID)
}

// MockAuthMiddleware stands in for EnsureValidToken. The Auth0 subject is read
// from the X-Test-User header; requests without it are rejected.
func MockAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetHeader("X-Test-User")
		if subject == "" {
			c.AbortWithStatusJSON(401, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "Failed to validate JWT."},
			})
			return
		}
		SetMockAuthContext(c, subject, "https://test.auth0.com/", nil)
		c.Next()
	}
}
