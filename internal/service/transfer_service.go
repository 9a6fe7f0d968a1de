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

// TransferService moves stock between branches. A transfer is a single
// transaction: the source decrement and destination upsert commit together
// or not at all, so the total quantity across branches is conserved.
type TransferService interface {
	Transfer(ctx context.Context, req dto.TransferStockRequest) (*dto.TransferStockResponse, error)
}

type transferService struct {
	stockRepo      repository.BranchStockRepository
	productRepo    repository.ProductRepository
	branchRepo     repository.BranchRepository
	movRepo        repository.StockMovementRepository
	mainBranchName string
}

func NewTransferService(
	stockRepo repository.BranchStockRepository,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	movRepo repository.StockMovementRepository,
	mainBranchName string,
) TransferService {
	return &transferService{
		stockRepo:      stockRepo,
		productRepo:    productRepo,
		branchRepo:     branchRepo,
		movRepo:        movRepo,
		mainBranchName: mainBranchName,
	}
}

func (s *transferService) Transfer(ctx context.Context, req dto.TransferStockRequest) (*dto.TransferStockResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, validationf("invalid product_id: %s", req.ProductID)
	}
	toBranchID, err := uuid.Parse(req.ToBranchID)
	if err != nil {
		return nil, validationf("invalid to_branch_id: %s", req.ToBranchID)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", Key: req.ProductID}
		}
		return nil, err
	}

	// Source defaults to the main branch when omitted
	var fromBranch *model.Branch
	if req.FromBranchID == "" {
		fromBranch, err = s.branchRepo.FindByName(ctx, s.mainBranchName)
		if err != nil {
			return nil, &NotFoundError{Resource: "branch", Key: s.mainBranchName}
		}
	} else {
		fromBranchID, perr := uuid.Parse(req.FromBranchID)
		if perr != nil {
			return nil, validationf("invalid from_branch_id: %s", req.FromBranchID)
		}
		fromBranch, err = s.branchRepo.FindByID(ctx, fromBranchID)
		if err != nil {
			return nil, &NotFoundError{Resource: "branch", Key: req.FromBranchID}
		}
	}

	if fromBranch.ID == toBranchID {
		return nil, validationf("source and destination branch must differ")
	}

	toBranch, err := s.branchRepo.FindByID(ctx, toBranchID)
	if err != nil {
		return nil, &NotFoundError{Resource: "branch", Key: req.ToBranchID}
	}

	// Both totals are captured inside the transaction, where they are exact.
	var remainingAtSource, totalAtDestination int
	txErr := runTx(ctx, s.stockRepo.DB(), func(tx *gorm.DB) error {
		source, err := s.stockRepo.GetTx(tx, fromBranch.ID, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &InsufficientStockError{SKU: product.SKU, Available: 0, Requested: req.Quantity}
			}
			return err
		}

		// Guarded decrement: the WHERE clause re-checks quantity so a
		// concurrent transfer cannot drive the source negative.
		affected, err := s.stockRepo.DecrementTx(tx, fromBranch.ID, productID, req.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return &InsufficientStockError{SKU: product.SKU, Available: source.Quantity, Requested: req.Quantity}
		}

		destBefore := 0
		if dest, err := s.stockRepo.GetTx(tx, toBranchID, productID); err == nil {
			destBefore = dest.Quantity
		}
		remainingAtSource = source.Quantity - req.Quantity
		totalAtDestination = destBefore + req.Quantity

		row := &model.BranchStock{
			BranchID:   toBranchID,
			ProductID:  productID,
			CategoryID: product.CategoryID,
			Quantity:   req.Quantity,
		}
		if err := s.stockRepo.UpsertAddTx(tx, row); err != nil {
			return err
		}

		// Both movements share a reference so the transfer reads as one event
		ref := uuid.New()
		out := &model.StockMovement{
			BranchID:       fromBranch.ID,
			ProductID:      productID,
			Type:           "transfer_out",
			Quantity:       -req.Quantity,
			QuantityBefore: source.Quantity,
			QuantityAfter:  source.Quantity - req.Quantity,
			ReferenceID:    &ref,
		}
		if err := s.movRepo.CreateTx(tx, out); err != nil {
			return err
		}
		in := &model.StockMovement{
			BranchID:       toBranchID,
			ProductID:      productID,
			Type:           "transfer_in",
			Quantity:       req.Quantity,
			QuantityBefore: destBefore,
			QuantityAfter:  destBefore + req.Quantity,
			ReferenceID:    &ref,
		}
		return s.movRepo.CreateTx(tx, in)
	})
	if txErr != nil {
		var insufficient *InsufficientStockError
		if errors.As(txErr, &insufficient) {
			return nil, insufficient
		}
		return nil, &TransactionError{Op: "transfer", Err: txErr}
	}

	log.Info().
		Str("product_id", productID.String()).
		Str("from", fromBranch.Name).
		Str("to", toBranch.Name).
		Int("quantity", req.Quantity).
		Msg("stock transferred")

	return &dto.TransferStockResponse{
		ProductID:          productID.String(),
		SKU:                product.SKU,
		FromBranchID:       fromBranch.ID.String(),
		FromBranchName:     fromBranch.Name,
		ToBranchID:         toBranchID.String(),
		ToBranchName:       toBranch.Name,
		Quantity:           req.Quantity,
		RemainingAtSource:  remainingAtSource,
		TotalAtDestination: totalAtDestination,
	}, nil
}
