package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserTableName(t *testing.T) {
	user := User{}
	assert.Equal(t, "users", user.TableName(), "Table name should be 'users'")
}

func TestUserDefaultValues(t *testing.T) {
	user := User{
		Email: "new@example.com",
	}

	assert.Equal(t, "new@example.com", user.Email, "Email should be set")
	assert.Equal(t, "", user.Role, "Role should be empty string by default in Go struct")
	assert.False(t, user.IsAdmin())
	assert.Nil(t, user.SellerID)
}

func TestUserRoleValues(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		valid   bool
		isAdmin bool
	}{
		{"admin role", RoleAdmin, true, true},
		{"sales role", RoleSales, true, false},
		{"legacy customer role", "customer", false, false},
		{"empty role", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := User{Email: "test@example.com", Role: tt.role}
			assert.Equal(t, tt.valid, ValidRole(tt.role))
			assert.Equal(t, tt.isAdmin, user.IsAdmin())
		})
	}
}
