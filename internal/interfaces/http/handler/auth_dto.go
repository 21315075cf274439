package handler

import "github.com/google/uuid"

// =====================
// Auth Request DTOs
// =====================

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=128"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// =====================
// User and Branch Request DTOs
// =====================

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Username  string     `json:"username" binding:"required,min=3,max=100"`
	Email     string     `json:"email" binding:"required,email,max=200"`
	Password  string     `json:"password" binding:"required,min=8,max=128"`
	FirstName string     `json:"first_name" binding:"max=100"`
	LastName  string     `json:"last_name" binding:"max=100"`
	Role      string     `json:"role" binding:"required,oneof=admin manager accountant clerk client"`
	BranchID  *uuid.UUID `json:"branch_id"`
}

// UpdateUserRequest represents a partial user update; omitted fields stay as they are
type UpdateUserRequest struct {
	FirstName   *string    `json:"first_name" binding:"omitempty,max=100"`
	LastName    *string    `json:"last_name" binding:"omitempty,max=100"`
	Email       *string    `json:"email" binding:"omitempty,email,max=200"`
	Role        *string    `json:"role" binding:"omitempty,oneof=admin manager accountant clerk client"`
	BranchID    *uuid.UUID `json:"branch_id"`
	ClearBranch bool       `json:"clear_branch"`
}

// ResetPasswordRequest is an admin password reset
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// BranchRequest represents the request body for creating or updating a branch
type BranchRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Address string `json:"address" binding:"max=500"`
	Phone   string `json:"phone" binding:"max=50"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
}
