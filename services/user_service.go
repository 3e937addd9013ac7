package services

import (
	"context"
	"errors"
	"strings"

	"github.com/madeiras-ouro-preto/sales-api/access"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"gorm.io/gorm"
)

// UserService persists staff accounts
type UserService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewUserService(db *gorm.DB, audit *AuditService) *UserService {
	return &UserService{db: db, audit: audit}
}

// FindByAuth0ID returns the account for an Auth0 subject, or ErrNotFound
func (s *UserService) FindByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		return nil, classifyDBError("load user", err)
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, classifyDBError("load user", err)
	}
	return &user, nil
}

// Create registers a new account. New accounts get the sales role unless told otherwise.
func (s *UserService) Create(ctx context.Context, user *models.User) error {
	if user.Auth0ID == "" {
		return invalid("auth0_id", "is required")
	}
	if strings.TrimSpace(user.Email) == "" {
		return invalid("email", "is required")
	}
	if user.Role == "" {
		user.Role = models.RoleSales
	}
	if !models.ValidRole(user.Role) {
		return invalid("role", "must be admin or sales")
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return classifyDBError("create user", err)
	}
	s.audit.Record(ctx, access.FromUser(*user), models.AuditInsert, models.User{}.TableName(), user.ID, nil, user)
	return nil
}

// Register creates the account of a new signup. The first account becomes
// admin. Two first signups racing each other both see an empty table, but
// only one of them can take the unique FirstAdmin marker; the other is
// retried as sales.
func (s *UserService) Register(ctx context.Context, user *models.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Unscoped().Model(&models.User{}).Count(&count).Error; err != nil {
		return classifyDBError("count users", err)
	}

	if count == 0 {
		first := *user
		marker := true
		first.Role = models.RoleAdmin
		first.FirstAdmin = &marker
		err := s.Create(ctx, &first)
		if err == nil {
			*user = first
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return err
		}
	}

	user.Role = models.RoleSales
	user.FirstAdmin = nil
	return s.Create(ctx, user)
}

// UpdateProfile changes the caller's own name and email
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, name, email string) error {
	before := *user
	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	if email = strings.TrimSpace(email); email != "" {
		user.Email = email
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return classifyDBError("update user", err)
	}
	s.audit.Record(ctx, access.FromUser(*user), models.AuditUpdate, models.User{}.TableName(), user.ID, before, user)
	return nil
}

// List returns every account ordered by name
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&users).Error; err != nil {
		return nil, classifyDBError("list users", err)
	}
	return users, nil
}

// UpdateRole sets the role and seller link of an account. Admin only.
func (s *UserService) UpdateRole(ctx context.Context, caller access.Caller, id, role string, sellerID *string) (*models.User, error) {
	if !caller.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if !models.ValidRole(role) {
		return nil, invalid("role", "must be admin or sales")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sellerID != nil && *sellerID != "" {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Seller{}).Where("id = ?", *sellerID).Count(&count).Error; err != nil {
			return nil, classifyDBError("load seller", err)
		}
		if count == 0 {
			return nil, invalid("seller_id", "does not exist")
		}
	} else {
		sellerID = nil
	}

	before := *user
	user.Role = role
	user.SellerID = sellerID
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, classifyDBError("update user", err)
	}
	s.audit.Record(ctx, caller, models.AuditUpdate, models.User{}.TableName(), user.ID, before, user)
	return user, nil
}
