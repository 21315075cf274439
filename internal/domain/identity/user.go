package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wms/backend/internal/domain/shared"
)

const bcryptCost = 12

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// User is a person who signs in to the back office
type User struct {
	shared.BaseAggregateRoot
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	BranchID     *uuid.UUID
	IsActive     bool
	LastLoginAt  *time.Time
}

// NewUser creates an active user with a hashed password
func NewUser(username, email, password string, role Role) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.Invalid("Unknown role: " + string(role))
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          normalizeUsername(username),
		Email:             normalizeEmail(email),
		PasswordHash:      hash,
		Role:              role,
		IsActive:          true,
	}, nil
}

// SetName sets first and last name
func (u *User) SetName(first, last string) {
	u.FirstName = strings.TrimSpace(first)
	u.LastName = strings.TrimSpace(last)
	u.touch()
}

// SetEmail changes the email address
func (u *User) SetEmail(email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	u.Email = normalizeEmail(email)
	u.touch()
	return nil
}

// SetRole changes the user's role
func (u *User) SetRole(role Role) error {
	if !role.IsValid() {
		return shared.Invalid("Unknown role: " + string(role))
	}
	u.Role = role
	u.touch()
	return nil
}

// AssignBranch sets or clears the home branch
func (u *User) AssignBranch(branchID *uuid.UUID) {
	u.BranchID = branchID
	u.touch()
}

// ChangePassword verifies the current password before setting a new one
func (u *User) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return shared.Invalid("Current password is incorrect")
	}
	return u.SetPassword(next)
}

// SetPassword replaces the password without checking the old one
func (u *User) SetPassword(password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Activate allows the user to sign in again
func (u *User) Activate() error {
	if u.IsActive {
		return shared.InvalidState("User is already active")
	}
	u.IsActive = true
	u.touch()
	return nil
}

// Deactivate blocks sign-in while keeping the record
func (u *User) Deactivate() error {
	if !u.IsActive {
		return shared.InvalidState("User is already inactive")
	}
	u.IsActive = false
	u.touch()
	return nil
}

// RecordLogin stamps the last successful sign-in
func (u *User) RecordLogin() {
	now := time.Now().UTC()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// FullName joins first and last name, falling back to the username
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return shared.Invalid("Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.Invalid("Username cannot exceed 100 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.Invalid("Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.Invalid("Email is required")
	}
	if len(email) > 200 || !emailPattern.MatchString(email) {
		return shared.Invalid("Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.Invalid("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.Invalid("Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.WrapDomainError("INTERNAL_ERROR", "Failed to hash password", err)
	}
	return string(hash), nil
}
