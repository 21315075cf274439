package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
)

// BranchService manages branch offices
type BranchService struct {
	branchRepo identity.BranchRepository
	userRepo   identity.UserRepository
	logger     *zap.Logger
}

// NewBranchService creates a new BranchService
func NewBranchService(branchRepo identity.BranchRepository, userRepo identity.UserRepository, logger *zap.Logger) *BranchService {
	return &BranchService{
		branchRepo: branchRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// List returns branches matching the filter
func (s *BranchService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[BranchResponse], error) {
	filter = filter.Normalize()
	branches, total, err := s.branchRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]BranchResponse, len(branches))
	for i := range branches {
		items[i] = ToBranchResponse(&branches[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetByID returns a single branch
func (s *BranchService) GetByID(ctx context.Context, id uuid.UUID) (*BranchResponse, error) {
	branch, err := s.branchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBranchResponse(branch)
	return &resp, nil
}

// Create creates a branch with a unique name
func (s *BranchService) Create(ctx context.Context, req BranchRequest) (*BranchResponse, error) {
	if err := s.ensureUniqueName(ctx, req.Name, nil); err != nil {
		return nil, err
	}
	branch, err := identity.NewBranch(req.Name, req.Address, req.Phone, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, err
	}
	s.logger.Info("Branch created", zap.String("branch", branch.Name))
	resp := ToBranchResponse(branch)
	return &resp, nil
}

// Update replaces a branch's details
func (s *BranchService) Update(ctx context.Context, id uuid.UUID, req BranchRequest) (*BranchResponse, error) {
	branch, err := s.branchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, req.Name, &branch.ID); err != nil {
		return nil, err
	}
	if err := branch.Update(req.Name, req.Address, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if err := s.branchRepo.SaveWithLock(ctx, branch); err != nil {
		return nil, err
	}
	resp := ToBranchResponse(branch)
	return &resp, nil
}

// Delete removes a branch that no user is assigned to
func (s *BranchService) Delete(ctx context.Context, id uuid.UUID) error {
	branch, err := s.branchRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	assigned, err := s.userRepo.CountByBranch(ctx, id)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return shared.Conflict("Branch still has users assigned")
	}
	if err := s.branchRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Branch deleted", zap.String("branch", branch.Name))
	return nil
}

func (s *BranchService) ensureUniqueName(ctx context.Context, name string, excludeID *uuid.UUID) error {
	exists, err := s.branchRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.Conflict("A branch with this name already exists")
	}
	return nil
}
