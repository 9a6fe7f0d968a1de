package service

import (
	"context"
	"errors"
	"time"

	"branchpos/internal/dto"
	"branchpos/internal/model"
	"branchpos/internal/repository"
	"branchpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementService settles carts and records ledger rows. A settlement is
// all-or-nothing: every line decrements branch stock and appends a
// transaction row, or the whole cart is rejected and stock is untouched.
type SettlementService interface {
	Settle(ctx context.Context, req dto.SettleSaleRequest) (*dto.SettleSaleResponse, error)
	// Record appends a ledger row without touching stock, for sales captured
	// outside the settlement path.
	Record(ctx context.Context, req dto.RecordTransactionRequest) (*dto.TransactionResponse, error)
	List(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error)
}

type settlementService struct {
	txRepo         repository.TransactionRepository
	stockRepo      repository.BranchStockRepository
	productRepo    repository.ProductRepository
	branchRepo     repository.BranchRepository
	movRepo        repository.StockMovementRepository
	dispatcher     *worker.Dispatcher
	mainBranchName string
}

func NewSettlementService(
	txRepo repository.TransactionRepository,
	stockRepo repository.BranchStockRepository,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	movRepo repository.StockMovementRepository,
	dispatcher *worker.Dispatcher,
	mainBranchName string,
) SettlementService {
	return &settlementService{
		txRepo:         txRepo,
		stockRepo:      stockRepo,
		productRepo:    productRepo,
		branchRepo:     branchRepo,
		movRepo:        movRepo,
		dispatcher:     dispatcher,
		mainBranchName: mainBranchName,
	}
}

// Settle processes a cart against one branch:
//  1. Resolve branch and every product (pre-flight, outside the tx).
//  2. BEGIN TX: check every line's stock first, in request order, so the
//     error always names the first failing line regardless of what follows.
//  3. Then write: guarded decrement + transaction row + movement per line.
//  4. COMMIT, then (async) dispatch the receipt job.
//
// Step 3 re-checks quantity in the decrement's WHERE clause, so a cart racing
// another sale still cannot oversell; it rolls back instead.
func (s *settlementService) Settle(ctx context.Context, req dto.SettleSaleRequest) (*dto.SettleSaleResponse, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, validationf("invalid branch_id: %s", req.BranchID)
	}
	if _, err := s.branchRepo.FindByID(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "branch", Key: req.BranchID}
		}
		return nil, err
	}

	customer := req.CustomerName
	if customer == "" {
		customer = model.AnonymousCustomer
	}

	type resolvedLine struct {
		product  *model.Product
		quantity int
	}
	resolved := make([]resolvedLine, 0, len(req.Items))
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, validationf("invalid product_id: %s", item.ProductID)
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Resource: "product", Key: item.ProductID}
			}
			return nil, err
		}
		if !p.Active {
			return nil, validationf("product %s is inactive", p.SKU)
		}
		resolved = append(resolved, resolvedLine{product: p, quantity: item.Quantity})
	}

	now := time.Now().UTC()
	var (
		lines  []dto.SettledLine
		txIDs  []string
		bizErr error
	)

	txErr := runTx(ctx, s.txRepo.DB(), func(tx *gorm.DB) error {
		// Pass 1: validate every line before writing anything, so the
		// reported failure is always the first offending line in cart order.
		type checkedLine struct {
			resolvedLine
			before    int
			unitPrice decimal.Decimal
		}
		checked := make([]checkedLine, 0, len(resolved))
		for _, r := range resolved {
			// Re-read the product inside the tx: a deactivation racing the
			// settlement must reject the cart, not sell a retired product.
			product, err := s.productRepo.FindByIDTx(tx, r.product.ID)
			if err != nil {
				return err
			}
			if !product.Active {
				bizErr = validationf("product %s is inactive", product.SKU)
				return bizErr
			}
			r.product = product

			row, err := s.stockRepo.GetTx(tx, branchID, r.product.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					bizErr = &InsufficientStockError{SKU: r.product.SKU, Available: 0, Requested: r.quantity}
					return bizErr
				}
				return err
			}
			if row.Quantity < r.quantity {
				bizErr = &InsufficientStockError{SKU: r.product.SKU, Available: row.Quantity, Requested: r.quantity}
				return bizErr
			}
			price := r.product.SellingPrice
			if row.Price != nil {
				price = *row.Price
			}
			checked = append(checked, checkedLine{resolvedLine: r, before: row.Quantity, unitPrice: price})
		}

		// Pass 2: apply. The decrement re-checks quantity so a concurrent
		// sale between pass 1 and here rolls the whole cart back.
		for _, c := range checked {
			affected, err := s.stockRepo.DecrementTx(tx, branchID, c.product.ID, c.quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				bizErr = &InsufficientStockError{SKU: c.product.SKU, Available: c.before, Requested: c.quantity}
				return bizErr
			}

			// Each row carries the sale total the register charged; the
			// server-computed line amount stays a response detail.
			lineAmount := c.unitPrice.Mul(decimal.NewFromInt(int64(c.quantity)))
			record := &model.Transaction{
				ProductID:       c.product.ID,
				SKU:             c.product.SKU,
				Quantity:        c.quantity,
				BranchID:        branchID,
				CustomerName:    customer,
				TotalAmount:     req.TotalAmount,
				PaymentMethod:   req.PaymentMethod,
				TransactionDate: now,
			}
			if err := s.txRepo.Create(ctx, tx, record); err != nil {
				return err
			}

			mov := &model.StockMovement{
				BranchID:       branchID,
				ProductID:      c.product.ID,
				Type:           "sale",
				Quantity:       -c.quantity,
				QuantityBefore: c.before,
				QuantityAfter:  c.before - c.quantity,
				ReferenceID:    &record.ID,
			}
			if err := s.movRepo.CreateTx(tx, mov); err != nil {
				return err
			}

			txIDs = append(txIDs, record.ID.String())
			lines = append(lines, dto.SettledLine{
				ProductID:  c.product.ID.String(),
				SKU:        c.product.SKU,
				Quantity:   c.quantity,
				UnitPrice:  c.unitPrice,
				LineAmount: lineAmount,
			})
		}
		return nil
	})
	if txErr != nil {
		if bizErr != nil {
			return nil, bizErr
		}
		return nil, &TransactionError{Op: "settle", Err: txErr}
	}

	log.Info().
		Str("branch_id", branchID.String()).
		Int("lines", len(lines)).
		Str("total", req.TotalAmount.String()).
		Str("payment_method", req.PaymentMethod).
		Msg("sale settled")

	// Async receipt job (best-effort — fire & forget)
	if s.dispatcher != nil && req.CustomerEmail != nil && *req.CustomerEmail != "" {
		payload := map[string]interface{}{
			"transaction_ids": txIDs,
			"customer_email":  *req.CustomerEmail,
			"customer_name":   customer,
		}
		_ = s.dispatcher.EnqueueReceipt(ctx, payload)
	}

	return &dto.SettleSaleResponse{
		TransactionIDs: txIDs,
		Lines:          lines,
		Total:          req.TotalAmount,
		SettledAt:      now.Format(time.RFC3339),
	}, nil
}

func (s *settlementService) Record(ctx context.Context, req dto.RecordTransactionRequest) (*dto.TransactionResponse, error) {
	product, err := s.productRepo.FindBySKU(ctx, req.SKU)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", Key: req.SKU}
		}
		return nil, err
	}

	var branchID uuid.UUID
	if req.BranchID != "" {
		branchID, err = uuid.Parse(req.BranchID)
		if err != nil {
			return nil, validationf("invalid branch_id: %s", req.BranchID)
		}
		if _, err := s.branchRepo.FindByID(ctx, branchID); err != nil {
			return nil, &NotFoundError{Resource: "branch", Key: req.BranchID}
		}
	} else {
		main, err := s.branchRepo.FindByName(ctx, s.mainBranchName)
		if err != nil {
			return nil, &NotFoundError{Resource: "branch", Key: s.mainBranchName}
		}
		branchID = main.ID
	}

	customer := req.CustomerName
	if customer == "" {
		customer = model.AnonymousCustomer
	}

	record := &model.Transaction{
		ProductID:       product.ID,
		SKU:             product.SKU,
		Quantity:        req.Quantity,
		BranchID:        branchID,
		CustomerName:    customer,
		TotalAmount:     req.TotalAmount,
		PaymentMethod:   req.PaymentMethod,
		TransactionDate: time.Now().UTC(),
	}

	txErr := runTx(ctx, s.txRepo.DB(), func(tx *gorm.DB) error {
		return s.txRepo.Create(ctx, tx, record)
	})
	if txErr != nil {
		return nil, &TransactionError{Op: "record", Err: txErr}
	}

	resp := transactionToResponse(record)
	resp.ProductName = product.Name
	return resp, nil
}

func (s *settlementService) List(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	transactions, totalCount, err := s.txRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		items = append(items, *transactionToResponse(&transactions[i]))
	}
	return &dto.TransactionListResponse{
		Data:  items,
		Total: totalCount,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func transactionToResponse(t *model.Transaction) *dto.TransactionResponse {
	resp := &dto.TransactionResponse{
		ID:            t.ID.String(),
		ProductID:     t.ProductID.String(),
		SKU:           t.SKU,
		Quantity:      t.Quantity,
		BranchID:      t.BranchID.String(),
		CustomerName:  t.CustomerName,
		TotalAmount:   t.TotalAmount,
		PaymentMethod: t.PaymentMethod,
		Date:          t.TransactionDate.Format(time.RFC3339),
	}
	if t.Product != nil {
		resp.ProductName = t.Product.Name
	}
	if t.Branch != nil {
		resp.BranchName = t.Branch.Name
	}
	return resp
}
