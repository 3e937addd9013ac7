package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/middleware"
	"github.com/madeiras-ouro-preto/sales-api/models"
	"github.com/madeiras-ouro-preto/sales-api/services"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Name  string `json:"name" binding:"omitempty"`
	Email string `json:"email" binding:"omitempty,email"`
}

// UpdateRoleRequest represents the request body for changing an account's role
type UpdateRoleRequest struct {
	Role     string  `json:"role" binding:"required,oneof=admin sales"`
	SellerID *string `json:"seller_id"`
}

// UserController serves staff accounts
type UserController struct {
	users    *services.UserService
	userInfo services.UserInfoProvider
}

func NewUserController(users *services.UserService, userInfo services.UserInfoProvider) *UserController {
	return &UserController{users: users, userInfo: userInfo}
}

// Create handles POST /api/v1/users - registers the caller from Auth0 userinfo.
// The first account ever registered becomes an administrator.
func (ctl *UserController) Create(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	userInfo, err := ctl.userInfo.GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		log.Printf("Failed to fetch Auth0 userinfo for %s: %v", auth0ID, err)
		respondError(c, http.StatusBadGateway, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}
	if userInfo.Email == "" {
		respondError(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
		return
	}

	name := userInfo.Name
	if name == "" {
		name = userInfo.Email
	}

	user := models.User{Auth0ID: auth0ID, Name: name, Email: userInfo.Email}
	if err := ctl.users.Register(c.Request.Context(), &user); err != nil {
		if errors.Is(err, services.ErrConflict) {
			respondError(c, http.StatusConflict, "USER_EXISTS", "A user with this Auth0 ID or email already exists")
			return
		}
		respondServiceError(c, err, "USER_NOT_FOUND", "create user")
		return
	}
	respondOK(c, http.StatusCreated, user)
}

// GetMe handles GET /api/v1/users/me
func (ctl *UserController) GetMe(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	user, err := ctl.users.Get(c.Request.Context(), caller.UserID)
	if err != nil {
		respondServiceError(c, err, "USER_NOT_FOUND", "load user")
		return
	}
	respondOK(c, http.StatusOK, user)
}

// UpdateMe handles PUT /api/v1/users/me
func (ctl *UserController) UpdateMe(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ctl.users.Get(c.Request.Context(), caller.UserID)
	if err != nil {
		respondServiceError(c, err, "USER_NOT_FOUND", "load user")
		return
	}
	if err := ctl.users.UpdateProfile(c.Request.Context(), user, req.Name, req.Email); err != nil {
		if errors.Is(err, services.ErrConflict) {
			respondError(c, http.StatusConflict, "EMAIL_EXISTS", "A user with this email already exists")
			return
		}
		respondServiceError(c, err, "USER_NOT_FOUND", "update user profile")
		return
	}
	respondOK(c, http.StatusOK, user)
}

// List handles GET /api/v1/users (admin)
func (ctl *UserController) List(c *gin.Context) {
	users, err := ctl.users.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "USER_NOT_FOUND", "list users")
		return
	}
	respondOK(c, http.StatusOK, users)
}

// UpdateRole handles PUT /api/v1/users/:id/role (admin)
func (ctl *UserController) UpdateRole(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ctl.users.UpdateRole(c.Request.Context(), caller, c.Param("id"), req.Role, req.SellerID)
	if err != nil {
		respondServiceError(c, err, "USER_NOT_FOUND", "update user role")
		return
	}
	respondOK(c, http.StatusOK, user)
}
