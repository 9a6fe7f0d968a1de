package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"branchpos/internal/dto"
	"branchpos/internal/model"
	"branchpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AllocatorService assigns stock of one product across branches. Allocations
// are additive: allocating to a (branch, product) pair that already holds
// stock merges quantities instead of overwriting, so repeated shipments
// accumulate. Negative deltas correct earlier allocations and are rejected
// when they would drive a branch quantity below zero.
type AllocatorService interface {
	Allocate(ctx context.Context, req dto.AllocateStockRequest) ([]dto.AllocatedStockRow, error)
	ListAllocated(ctx context.Context, filter dto.AllocatedStockFilter) ([]dto.AllocatedStockRow, error)
	ListLedger(ctx context.Context, branchID uuid.UUID) ([]dto.BranchLedgerRow, error)
}

type allocatorService struct {
	stockRepo   repository.BranchStockRepository
	productRepo repository.ProductRepository
	branchRepo  repository.BranchRepository
	movRepo     repository.StockMovementRepository
}

func NewAllocatorService(
	stockRepo repository.BranchStockRepository,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	movRepo repository.StockMovementRepository,
) AllocatorService {
	return &allocatorService{
		stockRepo:   stockRepo,
		productRepo: productRepo,
		branchRepo:  branchRepo,
		movRepo:     movRepo,
	}
}

// Allocate applies every entry of the request in a single transaction: either
// all branch rows are upserted or none. Duplicate branches within one request
// are allowed and merge the same way repeated requests do.
func (s *allocatorService) Allocate(ctx context.Context, req dto.AllocateStockRequest) ([]dto.AllocatedStockRow, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, validationf("invalid product_id: %s", req.ProductID)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", Key: req.ProductID}
		}
		return nil, err
	}
	if !product.Active {
		return nil, validationf("product %s is inactive", product.SKU)
	}
	if req.CategoryID != "" && req.CategoryID != product.CategoryID.String() {
		return nil, validationf("category_id does not match product %s", product.SKU)
	}

	// Pre-flight: resolve every branch before touching the ledger so a bad
	// reference in entry N never leaves entries 1..N-1 applied.
	type resolvedEntry struct {
		branch   *model.Branch
		quantity int
	}
	resolved := make([]resolvedEntry, 0, len(req.Allocations))
	for _, alloc := range req.Allocations {
		bid, err := uuid.Parse(alloc.BranchID)
		if err != nil {
			return nil, validationf("invalid branch_id: %s", alloc.BranchID)
		}
		b, err := s.branchRepo.FindByID(ctx, bid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Resource: "branch", Key: alloc.BranchID}
			}
			return nil, err
		}
		resolved = append(resolved, resolvedEntry{branch: b, quantity: alloc.Quantity})
	}

	var bizErr error
	txErr := runTx(ctx, s.stockRepo.DB(), func(tx *gorm.DB) error {
		// Pass 1: read current quantities under lock and reject any negative
		// delta that would underflow, before the first write.
		type checkedEntry struct {
			branch   *model.Branch
			quantity int
			before   int
		}
		checked := make([]checkedEntry, 0, len(resolved))
		running := map[uuid.UUID]int{}
		for _, r := range resolved {
			before, seen := running[r.branch.ID]
			if !seen {
				if existing, err := s.stockRepo.GetTx(tx, r.branch.ID, productID); err == nil {
					before = existing.Quantity
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
			}
			if r.quantity < 0 && before+r.quantity < 0 {
				bizErr = &InsufficientStockError{SKU: product.SKU, Available: before, Requested: -r.quantity}
				return bizErr
			}
			running[r.branch.ID] = before + r.quantity
			checked = append(checked, checkedEntry{branch: r.branch, quantity: r.quantity, before: before})
		}

		// Pass 2: apply. Positive deltas merge via upsert; negative deltas go
		// through the guarded decrement so a concurrent writer still cannot
		// drive the row negative.
		for _, c := range checked {
			if c.quantity < 0 {
				affected, err := s.stockRepo.DecrementTx(tx, c.branch.ID, productID, -c.quantity)
				if err != nil {
					return err
				}
				if affected == 0 {
					bizErr = &InsufficientStockError{SKU: product.SKU, Available: c.before, Requested: -c.quantity}
					return bizErr
				}
			} else {
				row := &model.BranchStock{
					BranchID:   c.branch.ID,
					ProductID:  productID,
					CategoryID: product.CategoryID,
					Quantity:   c.quantity,
				}
				if err := s.stockRepo.UpsertAddTx(tx, row); err != nil {
					return fmt.Errorf("allocating %s to branch %s: %w", product.SKU, c.branch.Name, err)
				}
			}

			mov := &model.StockMovement{
				BranchID:       c.branch.ID,
				ProductID:      productID,
				Type:           "allocation",
				Quantity:       c.quantity,
				QuantityBefore: c.before,
				QuantityAfter:  c.before + c.quantity,
			}
			if err := s.movRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if bizErr != nil {
			return nil, bizErr
		}
		return nil, &TransactionError{Op: "allocate", Err: txErr}
	}

	log.Info().
		Str("product_id", productID.String()).
		Str("sku", product.SKU).
		Int("branches", len(resolved)).
		Msg("stock allocated")

	return s.ListAllocated(ctx, dto.AllocatedStockFilter{SKU: product.SKU})
}

func (s *allocatorService) ListAllocated(ctx context.Context, filter dto.AllocatedStockFilter) ([]dto.AllocatedStockRow, error) {
	rows, err := s.stockRepo.ListAllocated(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []dto.AllocatedStockRow{}
	}
	return rows, nil
}

// ListLedger returns the raw branch_products rows for one branch, without the
// joined view's branch and category names.
func (s *allocatorService) ListLedger(ctx context.Context, branchID uuid.UUID) ([]dto.BranchLedgerRow, error) {
	if _, err := s.branchRepo.FindByID(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "branch", Key: branchID.String()}
		}
		return nil, err
	}

	rows, err := s.stockRepo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BranchLedgerRow, 0, len(rows))
	for _, row := range rows {
		item := dto.BranchLedgerRow{
			BranchID:  row.BranchID.String(),
			ProductID: row.ProductID.String(),
			Quantity:  row.Quantity,
			Price:     row.Price,
			UpdatedAt: row.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if row.Product != nil {
			item.SKU = row.Product.SKU
			item.ProductName = row.Product.Name
		}
		out = append(out, item)
	}
	return out, nil
}
