package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleSales = "sales"
)

// User represents a staff account (admin or sales)
type User struct {
	ID         string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Auth0ID    string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name       string         `gorm:"not null" json:"name"`
	Email      string         `gorm:"uniqueIndex;not null" json:"email"`
	Role       string         `gorm:"not null;default:'sales'" json:"role"`
	SellerID   *string        `gorm:"type:varchar(36);index" json:"seller_id"` // directory entry this account sells as
	FirstAdmin *bool          `gorm:"uniqueIndex" json:"-"`                    // set only on the bootstrap admin; the unique index allows one
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// IsAdmin reports whether the account has the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether role is one of the staff roles
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleSales
}
