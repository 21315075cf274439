package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
)

// UserService handles user administration
type UserService struct {
	userRepo   identity.UserRepository
	branchRepo identity.BranchRepository
	logger     *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, branchRepo identity.BranchRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:   userRepo,
		branchRepo: branchRepo,
		logger:     logger,
	}
}

// List returns users matching the filter
func (s *UserService) List(ctx context.Context, filter UserListFilter) (*shared.Paginated[UserResponse], error) {
	f := identity.UserFilter{
		Filter:   filter.Filter.Normalize(),
		BranchID: filter.BranchID,
		IsActive: filter.IsActive,
	}
	if filter.Role != "" {
		role, ok := identity.ParseRole(filter.Role)
		if !ok {
			return nil, shared.Invalid("Unknown role: " + filter.Role)
		}
		f.Role = &role
	}

	users, total, err := s.userRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = ToUserResponse(&users[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// GetByID returns a single user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	s.logger.Info("Creating new user", zap.String("username", req.Username))

	role, ok := identity.ParseRole(req.Role)
	if !ok {
		return nil, shared.Invalid("Unknown role: " + req.Role)
	}
	if err := s.ensureUnique(ctx, req.Username, req.Email, nil); err != nil {
		return nil, err
	}
	if err := s.ensureBranch(ctx, req.BranchID); err != nil {
		return nil, err
	}

	user, err := identity.NewUser(req.Username, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}
	user.SetName(req.FirstName, req.LastName)
	user.AssignBranch(req.BranchID)

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.String("user_id", user.ID.String()), zap.String("role", string(role)))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Update applies partial changes to a user
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil || req.LastName != nil {
		first, last := user.FirstName, user.LastName
		if req.FirstName != nil {
			first = *req.FirstName
		}
		if req.LastName != nil {
			last = *req.LastName
		}
		user.SetName(first, last)
	}
	if req.Email != nil && *req.Email != user.Email {
		if err := s.ensureUnique(ctx, "", *req.Email, &user.ID); err != nil {
			return nil, err
		}
		if err := user.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.Role != nil {
		role, ok := identity.ParseRole(*req.Role)
		if !ok {
			return nil, shared.Invalid("Unknown role: " + *req.Role)
		}
		if err := user.SetRole(role); err != nil {
			return nil, err
		}
	}
	switch {
	case req.ClearBranch:
		user.AssignBranch(nil)
	case req.BranchID != nil:
		if err := s.ensureBranch(ctx, req.BranchID); err != nil {
			return nil, err
		}
		user.AssignBranch(req.BranchID)
	}

	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete removes a user, or deactivates one that authored records.
// It reports whether the user was deactivated instead of deleted.
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) (bool, error) {
	if actorID == id {
		return false, shared.Invalid("You cannot delete your own account")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}

	authored, err := s.userRepo.HasAuthoredRecords(ctx, id)
	if err != nil {
		return false, err
	}
	if authored {
		if user.IsActive {
			if err := user.Deactivate(); err != nil {
				return false, err
			}
			if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
				return false, err
			}
		}
		s.logger.Info("User deactivated instead of deleted", zap.String("user_id", id.String()))
		return true, nil
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return false, err
	}
	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return false, nil
}

// Activate re-enables sign-in for a user
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	return s.mutate(ctx, id, (*identity.User).Activate)
}

// Deactivate blocks sign-in for a user
func (s *UserService) Deactivate(ctx context.Context, actorID, id uuid.UUID) (*UserResponse, error) {
	if actorID == id {
		return nil, shared.Invalid("You cannot deactivate your own account")
	}
	return s.mutate(ctx, id, (*identity.User).Deactivate)
}

// ResetPassword sets a new password without the current one
func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, password string) error {
	_, err := s.mutate(ctx, id, func(u *identity.User) error {
		return u.SetPassword(password)
	})
	if err == nil {
		s.logger.Info("Password reset by administrator", zap.String("user_id", id.String()))
	}
	return err
}

// EnsureAdmin creates the first administrator when the user table is empty.
// It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	user, err := identity.NewUser(username, email, password, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	user.SetName("System", "Administrator")
	if err := s.userRepo.Save(ctx, user); err != nil {
		return false, err
	}
	s.logger.Info("Bootstrap administrator created", zap.String("username", user.Username))
	return true, nil
}

func (s *UserService) mutate(ctx context.Context, id uuid.UUID, fn func(*identity.User) error) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *UserService) ensureUnique(ctx context.Context, username, email string, excludeID *uuid.UUID) error {
	if username != "" {
		exists, err := s.userRepo.ExistsByUsername(ctx, username, excludeID)
		if err != nil {
			return err
		}
		if exists {
			return shared.Conflict("Username already exists")
		}
	}
	if email != "" {
		exists, err := s.userRepo.ExistsByEmail(ctx, email, excludeID)
		if err != nil {
			return err
		}
		if exists {
			return shared.Conflict("Email already exists")
		}
	}
	return nil
}

func (s *UserService) ensureBranch(ctx context.Context, branchID *uuid.UUID) error {
	if branchID == nil {
		return nil
	}
	if _, err := s.branchRepo.FindByID(ctx, *branchID); err != nil {
		if shared.IsNotFound(err) {
			return shared.Invalid("Branch does not exist")
		}
		return err
	}
	return nil
}
