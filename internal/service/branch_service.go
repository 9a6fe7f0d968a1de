package service

import (
	"context"
	"errors"

	"branchpos/internal/dto"
	"branchpos/internal/model"
	"branchpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type BranchService interface {
	Create(ctx context.Context, req dto.CreateBranchRequest) (*dto.BranchResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.BranchResponse, error)
	List(ctx context.Context) ([]dto.BranchResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateBranchRequest) (*dto.BranchResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type branchService struct {
	repo      repository.BranchRepository
	stockRepo repository.BranchStockRepository
}

func NewBranchService(repo repository.BranchRepository, stockRepo repository.BranchStockRepository) BranchService {
	return &branchService{repo: repo, stockRepo: stockRepo}
}

func (s *branchService) Create(ctx context.Context, req dto.CreateBranchRequest) (*dto.BranchResponse, error) {
	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, validationf("branch %s already exists", req.Name)
	}
	branch := &model.Branch{
		Name:     req.Name,
		Location: req.Location,
	}
	if err := s.repo.Create(ctx, branch); err != nil {
		return nil, err
	}
	log.Info().Str("branch_id", branch.ID.String()).Str("name", branch.Name).Msg("branch created")
	return branchToResponse(branch), nil
}

func (s *branchService) GetByID(ctx context.Context, id uuid.UUID) (*dto.BranchResponse, error) {
	branch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "branch", Key: id.String()}
		}
		return nil, err
	}
	return branchToResponse(branch), nil
}

func (s *branchService) List(ctx context.Context) ([]dto.BranchResponse, error) {
	branches, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BranchResponse, 0, len(branches))
	for i := range branches {
		items = append(items, *branchToResponse(&branches[i]))
	}
	return items, nil
}

func (s *branchService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateBranchRequest) (*dto.BranchResponse, error) {
	branch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "branch", Key: id.String()}
		}
		return nil, err
	}
	if req.Name != nil {
		branch.Name = *req.Name
	}
	if req.Location != nil {
		branch.Location = *req.Location
	}
	if err := s.repo.Update(ctx, branch); err != nil {
		return nil, err
	}
	return branchToResponse(branch), nil
}

// Delete removes a branch and its stock rows in one transaction. The main
// branch is protected and cannot be deleted.
func (s *branchService) Delete(ctx context.Context, id uuid.UUID) error {
	branch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "branch", Key: id.String()}
		}
		return err
	}
	if branch.Protected {
		return ErrProtectedBranch
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.stockRepo.DeleteByBranchTx(tx, id); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, id)
	})
	if txErr != nil {
		return &TransactionError{Op: "delete branch", Err: txErr}
	}

	log.Info().Str("branch_id", id.String()).Str("name", branch.Name).Msg("branch deleted")
	return nil
}

func branchToResponse(b *model.Branch) *dto.BranchResponse {
	return &dto.BranchResponse{
		ID:        b.ID.String(),
		Name:      b.Name,
		Location:  b.Location,
		Protected: b.Protected,
		CreatedAt: b.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
