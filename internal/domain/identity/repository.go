package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// UserFilter defines filtering options for user queries
type UserFilter struct {
	shared.Filter
	Role     *Role
	BranchID *uuid.UUID
	IsActive *bool
}

// UserRepository defines persistence for users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]User, int64, error)
	ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
	// HasAuthoredRecords reports whether any business record references the user
	HasAuthoredRecords(ctx context.Context, id uuid.UUID) (bool, error)
	CountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, user *User) error
	SaveWithLock(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BranchRepository defines persistence for branches
type BranchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Branch, error)
	FindByName(ctx context.Context, name string) (*Branch, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Branch, int64, error)
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, branch *Branch) error
	SaveWithLock(ctx context.Context, branch *Branch) error
	Delete(ctx context.Context, id uuid.UUID) error
}
