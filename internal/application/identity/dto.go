package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	TokenType    string       `json:"token_type"`
	User         UserResponse `json:"user"`
}

// LogoutInput identifies the access token being revoked
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	TTL      time.Duration
}

// ChangePasswordInput contains the input for a self-service password change
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// UserResponse is the API view of a user
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	BranchID    *uuid.UUID `json:"branch_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// ToUserResponse converts a domain user to its API view
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		Role:        string(u.Role),
		BranchID:    u.BranchID,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		Version:     u.Version,
	}
}

// CreateUserRequest contains the input for creating a user
type CreateUserRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	BranchID  *uuid.UUID
}

// UpdateUserRequest carries partial user changes; nil fields are left as is
type UpdateUserRequest struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Role        *string
	BranchID    *uuid.UUID
	ClearBranch bool
}

// UserListFilter contains the query options for listing users
type UserListFilter struct {
	shared.Filter
	Role     string
	BranchID *uuid.UUID
	IsActive *bool
}

// BranchResponse is the API view of a branch
type BranchResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ToBranchResponse converts a domain branch to its API view
func ToBranchResponse(b *identity.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Code:      b.Code(),
		Address:   b.Address,
		Phone:     b.Phone,
		Email:     b.Email,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		Version:   b.Version,
	}
}

// BranchRequest contains the branch fields for create and update
type BranchRequest struct {
	Name    string
	Address string
	Phone   string
	Email   string
}
