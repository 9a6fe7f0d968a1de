package repository

import (
	"context"

	"branchpos/internal/dto"
	"branchpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BranchStockRepository owns the branch_products ledger. All quantity changes
// go through UpsertAddTx / DecrementTx so every write is additive or guarded;
// nothing ever blind-writes an absolute quantity.
type BranchStockRepository interface {
	Get(ctx context.Context, branchID, productID uuid.UUID) (*model.BranchStock, error)
	GetTx(tx *gorm.DB, branchID, productID uuid.UUID) (*model.BranchStock, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]model.BranchStock, error)
	ListAllocated(ctx context.Context, filter dto.AllocatedStockFilter) ([]dto.AllocatedStockRow, error)

	// UpsertAddTx inserts the (branch, product) row or adds qty to the
	// existing one. Safe to call repeatedly: quantities merge, rows never
	// duplicate.
	UpsertAddTx(tx *gorm.DB, row *model.BranchStock) error

	// DecrementTx subtracts qty only when the stored quantity covers it.
	// Returns the number of rows affected: 0 means missing row or
	// insufficient stock, and the caller must roll back.
	DecrementTx(tx *gorm.DB, branchID, productID uuid.UUID, qty int) (int64, error)

	// UpdateCategoryTx rewrites the denormalized category on every ledger row
	// of a product, keeping the rows in step when the product is recategorized.
	UpdateCategoryTx(tx *gorm.DB, productID, categoryID uuid.UUID) error

	DeleteByBranchTx(tx *gorm.DB, branchID uuid.UUID) error

	DB() *gorm.DB
}

type branchStockRepo struct{ db *gorm.DB }

func NewBranchStockRepository(db *gorm.DB) BranchStockRepository { return &branchStockRepo{db: db} }

func (r *branchStockRepo) Get(ctx context.Context, branchID, productID uuid.UUID) (*model.BranchStock, error) {
	var bs model.BranchStock
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		First(&bs).Error
	return &bs, err
}

// GetTx locks the row FOR UPDATE so the quantity it reports stays valid for
// the rest of the transaction; movement audit rows depend on that.
func (r *branchStockRepo) GetTx(tx *gorm.DB, branchID, productID uuid.UUID) (*model.BranchStock, error) {
	var bs model.BranchStock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		First(&bs).Error
	return &bs, err
}

func (r *branchStockRepo) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]model.BranchStock, error) {
	var rows []model.BranchStock
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("branch_id = ?", branchID).
		Find(&rows).Error
	return rows, err
}

func (r *branchStockRepo) ListAllocated(ctx context.Context, filter dto.AllocatedStockFilter) ([]dto.AllocatedStockRow, error) {
	var rows []dto.AllocatedStockRow

	q := r.db.Model(&model.BranchStock{}).
		Select(`branch_products.branch_id,
			branches.name AS branch_name,
			branch_products.product_id,
			products.sku,
			products.name AS product_name,
			categories.name AS category_name,
			branch_products.quantity,
			products.selling_price,
			branch_products.price AS branch_price`).
		Joins("JOIN branches ON branches.id = branch_products.branch_id").
		Joins("JOIN products ON products.id = branch_products.product_id").
		Joins("JOIN categories ON categories.id = branch_products.category_id")

	if filter.BranchID != "" {
		q = q.Where("branch_products.branch_id = ?", filter.BranchID)
	}
	if filter.CategoryID != "" {
		q = q.Where("branch_products.category_id = ?", filter.CategoryID)
	}
	if filter.SKU != "" {
		q = q.Where("products.sku = ?", filter.SKU)
	}

	err := q.Order("branches.name ASC, products.name ASC").Scan(&rows).Error
	return rows, err
}

func (r *branchStockRepo) UpsertAddTx(tx *gorm.DB, row *model.BranchStock) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "branch_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("branch_products.quantity + excluded.quantity"),
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(row).Error
}

func (r *branchStockRepo) DecrementTx(tx *gorm.DB, branchID, productID uuid.UUID, qty int) (int64, error) {
	res := tx.Model(&model.BranchStock{}).
		Where("branch_id = ? AND product_id = ? AND quantity >= ?", branchID, productID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *branchStockRepo) UpdateCategoryTx(tx *gorm.DB, productID, categoryID uuid.UUID) error {
	return tx.Model(&model.BranchStock{}).
		Where("product_id = ?", productID).
		Update("category_id", categoryID).Error
}

func (r *branchStockRepo) DeleteByBranchTx(tx *gorm.DB, branchID uuid.UUID) error {
	return tx.Where("branch_id = ?", branchID).Delete(&model.BranchStock{}).Error
}

func (r *branchStockRepo) DB() *gorm.DB { return r.db }
