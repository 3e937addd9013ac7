package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/access"
	"github.com/madeiras-ouro-preto/sales-api/models"
)

const callerKey = "caller"

// UserLookup resolves an Auth0 subject to a registered account.
// It returns a nil user and a nil error when the subject is not registered.
type UserLookup func(ctx context.Context, auth0ID string) (*models.User, error)

// LoadCaller builds the access.Caller of the request from the account behind the token.
// Unregistered subjects are rejected until they complete POST /users.
func LoadCaller(lookup UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth0ID, err := GetUserID(c)
		if err != nil {
			abortWith(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
			return
		}

		user, err := lookup(c.Request.Context(), auth0ID)
		if err != nil {
			log.Printf("Failed to load user %s: %v", auth0ID, err)
			abortWith(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load user")
			return
		}
		if user == nil {
			abortWith(c, http.StatusForbidden, "USER_NOT_REGISTERED", "User must register before using the API")
			return
		}

		SetCaller(c, access.FromUser(*user))
		c.Next()
	}
}

// SetCaller stores the caller on the request
func SetCaller(c *gin.Context, caller access.Caller) {
	c.Set(callerKey, caller)
}

// GetCaller returns the caller stored by LoadCaller
func GetCaller(c *gin.Context) (access.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return access.Caller{}, false
	}
	caller, ok := v.(access.Caller)
	return caller, ok
}

// RequireAdmin stops requests whose caller is not an administrator
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			abortWith(c, http.StatusUnauthorized, "UNAUTHORIZED", "Caller not found in context")
			return
		}
		if !caller.IsAdmin() {
			abortWith(c, http.StatusForbidden, "FORBIDDEN", "Only administrators can access this resource")
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
