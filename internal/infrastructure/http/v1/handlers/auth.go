package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/domain/auth"
	"rxledger/internal/infrastructure/http/v1/dto"
	"rxledger/internal/infrastructure/http/v1/middleware"
)

// AuthHandler handles authentication and user management endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	// Public routes (no auth required)
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	// Protected routes (auth required)
	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)
	protected.GET("/roles", h.ListRoles)
	protected.GET("/permissions", h.ListPermissions)

	// User management is privileged.
	users := protected.Group("/users", middleware.RequireRole("admin"))
	users.POST("", h.Register)
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.POST("/:id/roles", h.AssignRole)
	users.DELETE("/:id/roles/:code", h.RevokeRole)
	users.POST("/:id/branches", h.GrantBranch)

	protected.POST("/roles", middleware.RequireRole("admin"), h.CreateRole)
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, user, err := h.service.Login(c.Request.Context(), auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tokens": tokens,
		"user":   user,
	})
}

// Refresh handles POST /refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, tokens)
}

// Logout handles POST /logout - revokes all refresh tokens of the caller.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := id.Parse(h.GetUserID(c))
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "logged out")
}

// Me handles GET /me - returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := id.Parse(h.GetUserID(c))
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, user)
}

// Register handles POST /users - registers a new user.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	hospitalID, err := id.Parse(req.HospitalID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid hospital id"))
		return
	}

	user, err := h.service.Register(c.Request.Context(), auth.RegisterRequest{
		HospitalID: hospitalID,
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, user.ID)
}

// ListUsers handles GET /users.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	filter := auth.UserFilter{
		Search:   c.Query("search"),
		RoleCode: c.Query("role"),
		Limit:    h.ParseIntQuery(c, "limit", 20),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}
	if v := c.Query("isActive"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      users,
		"totalCount": total,
		"limit":      filter.Limit,
		"offset":     filter.Offset,
	})
}

// GetUser handles GET /users/:id.
func (h *AuthHandler) GetUser(c *gin.Context) {
	userID, ok := h.ParseID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, user)
}

// AssignRole handles POST /users/:id/roles.
func (h *AuthHandler) AssignRole(c *gin.Context) {
	userID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.AssignRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.AssignRole(c.Request.Context(), userID, req.RoleCode); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "role assigned")
}

// RevokeRole handles DELETE /users/:id/roles/:code.
func (h *AuthHandler) RevokeRole(c *gin.Context) {
	userID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.RevokeRole(c.Request.Context(), userID, c.Param("code")); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// GrantBranch handles POST /users/:id/branches.
func (h *AuthHandler) GrantBranch(c *gin.Context) {
	userID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.GrantBranchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	branchID, err := id.Parse(req.BranchID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid branch id"))
		return
	}

	if err := h.service.GrantBranch(c.Request.Context(), userID, branchID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "branch granted")
}

// ListRoles handles GET /roles.
func (h *AuthHandler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, roles)
}

// CreateRole handles POST /roles.
func (h *AuthHandler) CreateRole(c *gin.Context) {
	var req dto.CreateRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	role, err := h.service.CreateRole(c.Request.Context(), req.Code, req.Name, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, role.ID)
}

// ListPermissions handles GET /permissions.
func (h *AuthHandler) ListPermissions(c *gin.Context) {
	perms, err := h.service.ListPermissions(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, perms)
}
