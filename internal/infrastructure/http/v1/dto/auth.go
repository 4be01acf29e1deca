package dto

// LoginRequest for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RegisterUserRequest creates a new user account.
type RegisterUserRequest struct {
	HospitalID string `json:"hospitalId" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

// AssignRoleRequest assigns a role to a user.
type AssignRoleRequest struct {
	RoleCode string `json:"roleCode" binding:"required"`
}

// GrantBranchRequest grants a user access to a branch.
type GrantBranchRequest struct {
	BranchID string `json:"branchId" binding:"required"`
}

// CreateRoleRequest creates a custom role.
type CreateRoleRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}
