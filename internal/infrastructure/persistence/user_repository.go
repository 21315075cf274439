package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// authoredTables lists the tables whose created_by column references users.
var authoredTables = []string{
	"parcels",
	"dispatches",
	"contract_customers",
	"invoices",
	"branch_deposits",
	"parcel_deposits",
	"cod_collections",
	"cheque_deposits",
	"daily_expenses",
}

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "user")
	}
	return model.ToDomain(), nil
}

// FindByUsername finds a user by username, ignoring case
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var model models.UserModel
	if err := conn(ctx, r.db).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&model).Error; err != nil {
		return nil, translateError(err, "user")
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of users and the total matching count
func (r *GormUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]identity.User, int64, error) {
	query := conn(ctx, r.db).Model(&models.UserModel{})

	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", p, p, p, p)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.UserModel
	if err := paginate(query, filter.Filter, UserSortFields, "username ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	users := make([]identity.User, len(rows))
	for i := range rows {
		users[i] = *rows[i].ToDomain()
	}
	return users, total, nil
}

// ExistsByUsername checks if a username is taken by another user
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error) {
	return r.exists(ctx, "LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username)), excludeID)
}

// ExistsByEmail checks if an email is taken by another user
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, nil
	}
	return r.exists(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)), excludeID)
}

func (r *GormUserRepository) exists(ctx context.Context, cond string, value any, excludeID *uuid.UUID) (bool, error) {
	query := conn(ctx, r.db).Model(&models.UserModel{}).Where(cond, value)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasAuthoredRecords reports whether any business record names the user as creator
func (r *GormUserRepository) HasAuthoredRecords(ctx context.Context, id uuid.UUID) (bool, error) {
	db := conn(ctx, r.db)
	for _, table := range authoredTables {
		var count int64
		if err := db.Table(table).Where("created_by = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// CountByBranch counts users assigned to a branch
func (r *GormUserRepository) CountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.UserModel{}).Where("branch_id = ?", branchID).Count(&count).Error
	return count, err
}

// Count counts all users
func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.UserModel{}).Count(&count).Error
	return count, err
}

// Save inserts or fully overwrites a user
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	return translateError(conn(ctx, r.db).Save(model).Error, "user")
}

// SaveWithLock updates a user only if its version is unchanged since it was read
func (r *GormUserRepository) SaveWithLock(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	model.Version = user.Version + 1
	model.UpdatedAt = stamp()
	if err := updateVersioned(ctx, r.db, model, user.Version, "user"); err != nil {
		return err
	}
	user.Version = model.Version
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete deletes a user by ID
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return checkDeleted(conn(ctx, r.db).Delete(&models.UserModel{}, "id = ?", id), "user")
}

// GormBranchRepository implements identity.BranchRepository using GORM
type GormBranchRepository struct {
	db *gorm.DB
}

// NewGormBranchRepository creates a new GormBranchRepository
func NewGormBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// FindByID finds a branch by ID
func (r *GormBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Branch, error) {
	var model models.BranchModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "branch")
	}
	return model.ToDomain(), nil
}

// FindByName finds a branch by name, ignoring case
func (r *GormBranchRepository) FindByName(ctx context.Context, name string) (*identity.Branch, error) {
	var model models.BranchModel
	if err := conn(ctx, r.db).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&model).Error; err != nil {
		return nil, translateError(err, "branch")
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of branches ordered by name by default
func (r *GormBranchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Branch, int64, error) {
	query := conn(ctx, r.db).Model(&models.BranchModel{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.BranchModel
	if err := paginate(query, filter, BranchSortFields, "name ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	branches := make([]identity.Branch, len(rows))
	for i := range rows {
		branches[i] = *rows[i].ToDomain()
	}
	return branches, total, nil
}

// ExistsByName checks if another branch already uses the name
func (r *GormBranchRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := conn(ctx, r.db).Model(&models.BranchModel{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts or fully overwrites a branch
func (r *GormBranchRepository) Save(ctx context.Context, branch *identity.Branch) error {
	return translateError(conn(ctx, r.db).Save(models.BranchModelFromDomain(branch)).Error, "branch")
}

// SaveWithLock updates a branch only if its version is unchanged since it was read
func (r *GormBranchRepository) SaveWithLock(ctx context.Context, branch *identity.Branch) error {
	model := models.BranchModelFromDomain(branch)
	model.Version = branch.Version + 1
	model.UpdatedAt = stamp()
	if err := updateVersioned(ctx, r.db, model, branch.Version, "branch"); err != nil {
		return err
	}
	branch.Version = model.Version
	branch.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete deletes a branch by ID
func (r *GormBranchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return checkDeleted(conn(ctx, r.db).Delete(&models.BranchModel{}, "id = ?", id), "branch")
}

var (
	_ identity.UserRepository   = (*GormUserRepository)(nil)
	_ identity.BranchRepository = (*GormBranchRepository)(nil)
)
