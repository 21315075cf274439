package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
)

func setupUserService() (*UserService, *MockUserRepository, *MockBranchRepository) {
	users := new(MockUserRepository)
	branches := new(MockBranchRepository)
	return NewUserService(users, branches, zap.NewNop()), users, branches
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, users, branches := setupUserService()
		branch, err := identity.NewBranch("Mombasa", "", "", "")
		require.NoError(t, err)
		users.On("ExistsByUsername", ctx, "jane", (*uuid.UUID)(nil)).Return(false, nil)
		users.On("ExistsByEmail", ctx, "jane@example.com", (*uuid.UUID)(nil)).Return(false, nil)
		branches.On("FindByID", ctx, branch.ID).Return(branch, nil)
		users.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		resp, err := svc.Create(ctx, CreateUserRequest{
			Username:  "jane",
			Email:     "jane@example.com",
			Password:  "password123",
			FirstName: "Jane",
			LastName:  "Wanjiru",
			Role:      "Clerk",
			BranchID:  &branch.ID,
		})

		require.NoError(t, err)
		assert.Equal(t, "clerk", resp.Role)
		assert.Equal(t, "Jane Wanjiru", resp.FullName)
		assert.Equal(t, &branch.ID, resp.BranchID)
		assert.True(t, resp.IsActive)
		users.AssertExpectations(t)
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, users, _ := setupUserService()
		users.On("ExistsByUsername", ctx, "jane", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := svc.Create(ctx, CreateUserRequest{Username: "jane", Email: "jane@example.com", Password: "password123", Role: "clerk"})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, users, _ := setupUserService()
		users.On("ExistsByUsername", ctx, "jane", (*uuid.UUID)(nil)).Return(false, nil)
		users.On("ExistsByEmail", ctx, "jane@example.com", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := svc.Create(ctx, CreateUserRequest{Username: "jane", Email: "jane@example.com", Password: "password123", Role: "clerk"})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc, _, _ := setupUserService()

		_, err := svc.Create(ctx, CreateUserRequest{Username: "jane", Email: "jane@example.com", Password: "password123", Role: "driver"})

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("short password", func(t *testing.T) {
		svc, users, _ := setupUserService()
		users.On("ExistsByUsername", ctx, "jane", (*uuid.UUID)(nil)).Return(false, nil)
		users.On("ExistsByEmail", ctx, "jane@example.com", (*uuid.UUID)(nil)).Return(false, nil)

		_, err := svc.Create(ctx, CreateUserRequest{Username: "jane", Email: "jane@example.com", Password: "short", Role: "clerk"})

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := setupUserService()
	user := newTestUser(t, identity.RoleClerk)
	newEmail := "clerk.one@example.com"
	role := "manager"
	users.On("FindByID", ctx, user.ID).Return(user, nil)
	users.On("ExistsByEmail", ctx, newEmail, &user.ID).Return(false, nil)
	users.On("SaveWithLock", ctx, user).Return(nil)

	resp, err := svc.Update(ctx, user.ID, UpdateUserRequest{Email: &newEmail, Role: &role, ClearBranch: true})

	require.NoError(t, err)
	assert.Equal(t, newEmail, resp.Email)
	assert.Equal(t, "manager", resp.Role)
	assert.Nil(t, resp.BranchID)
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("self delete is rejected", func(t *testing.T) {
		svc, _, _ := setupUserService()
		id := uuid.New()

		_, err := svc.Delete(ctx, id, id)

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("author is deactivated", func(t *testing.T) {
		svc, users, _ := setupUserService()
		user := newTestUser(t, identity.RoleClerk)
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		users.On("HasAuthoredRecords", ctx, user.ID).Return(true, nil)
		users.On("SaveWithLock", ctx, user).Return(nil)

		deactivated, err := svc.Delete(ctx, uuid.New(), user.ID)

		require.NoError(t, err)
		assert.True(t, deactivated)
		assert.False(t, user.IsActive)
		users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("user without records is removed", func(t *testing.T) {
		svc, users, _ := setupUserService()
		user := newTestUser(t, identity.RoleClerk)
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		users.On("HasAuthoredRecords", ctx, user.ID).Return(false, nil)
		users.On("Delete", ctx, user.ID).Return(nil)

		deactivated, err := svc.Delete(ctx, uuid.New(), user.ID)

		require.NoError(t, err)
		assert.False(t, deactivated)
		users.AssertExpectations(t)
	})
}

func TestUserService_ActivateDeactivate(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := setupUserService()
	user := newTestUser(t, identity.RoleClerk)
	users.On("FindByID", ctx, user.ID).Return(user, nil)
	users.On("SaveWithLock", ctx, user).Return(nil)

	_, err := svc.Activate(ctx, user.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	resp, err := svc.Deactivate(ctx, uuid.New(), user.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)

	resp, err = svc.Activate(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsActive)
}

func TestUserService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := setupUserService()
	user := newTestUser(t, identity.RoleClerk)
	users.On("FindByID", ctx, user.ID).Return(user, nil)
	users.On("SaveWithLock", ctx, user).Return(nil)

	require.NoError(t, svc.ResetPassword(ctx, user.ID, "brand-new-pass"))
	assert.True(t, user.VerifyPassword("brand-new-pass"))
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates admin on empty table", func(t *testing.T) {
		svc, users, _ := setupUserService()
		users.On("Count", ctx).Return(int64(0), nil)
		users.On("Save", ctx, mock.MatchedBy(func(u *identity.User) bool {
			return u.Role == identity.RoleAdmin && u.Username == "admin"
		})).Return(nil)

		created, err := svc.EnsureAdmin(ctx, "admin", "admin@example.com", "change-me-now")

		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("skips when users exist", func(t *testing.T) {
		svc, users, _ := setupUserService()
		users.On("Count", ctx).Return(int64(3), nil)

		created, err := svc.EnsureAdmin(ctx, "admin", "admin@example.com", "change-me-now")

		require.NoError(t, err)
		assert.False(t, created)
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := setupUserService()
	user := newTestUser(t, identity.RoleClerk)
	users.On("FindAll", ctx, mock.MatchedBy(func(f identity.UserFilter) bool {
		return f.Role != nil && *f.Role == identity.RoleClerk && f.PageSize == 20
	})).Return([]identity.User{*user}, int64(1), nil)

	page, err := svc.List(ctx, UserListFilter{Role: "clerk"})

	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.TotalPages)
}
