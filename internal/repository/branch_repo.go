package repository

import (
	"context"

	"branchpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BranchRepository defines the data access contract for branches.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via mocks.
type BranchRepository interface {
	Create(ctx context.Context, b *model.Branch) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Branch, error)
	FindByName(ctx context.Context, name string) (*model.Branch, error)
	List(ctx context.Context) ([]model.Branch, error)
	Update(ctx context.Context, b *model.Branch) error

	// DeleteTx removes the branch row inside a transaction; the service
	// clears the branch's stock rows in the same tx.
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type branchRepo struct{ db *gorm.DB }

func NewBranchRepository(db *gorm.DB) BranchRepository { return &branchRepo{db: db} }

func (r *branchRepo) Create(ctx context.Context, b *model.Branch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *branchRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Branch, error) {
	var b model.Branch
	err := r.db.WithContext(ctx).First(&b, id).Error
	return &b, err
}

func (r *branchRepo) FindByName(ctx context.Context, name string) (*model.Branch, error) {
	var b model.Branch
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&b).Error
	return &b, err
}

func (r *branchRepo) List(ctx context.Context) ([]model.Branch, error) {
	var branches []model.Branch
	err := r.db.WithContext(ctx).Order("name ASC").Find(&branches).Error
	return branches, err
}

func (r *branchRepo) Update(ctx context.Context, b *model.Branch) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *branchRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Branch{}, id).Error
}

func (r *branchRepo) DB() *gorm.DB { return r.db }
