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

// ProductService owns the catalog. Creating a product with initial stock
// allocates that stock to the main branch in the same transaction, so the
// catalog row and its first ledger entry appear together.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo           repository.ProductRepository
	categoryRepo   repository.CategoryRepository
	branchRepo     repository.BranchRepository
	stockRepo      repository.BranchStockRepository
	movRepo        repository.StockMovementRepository
	mainBranchName string
}

func NewProductService(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	branchRepo repository.BranchRepository,
	stockRepo repository.BranchStockRepository,
	movRepo repository.StockMovementRepository,
	mainBranchName string,
) ProductService {
	return &productService{
		repo:           repo,
		categoryRepo:   categoryRepo,
		branchRepo:     branchRepo,
		stockRepo:      stockRepo,
		movRepo:        movRepo,
		mainBranchName: mainBranchName,
	}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, validationf("invalid category_id: %s", req.CategoryID)
	}
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "category", Key: req.CategoryID}
		}
		return nil, err
	}

	if _, err := s.repo.FindBySKU(ctx, req.SKU); err == nil {
		return nil, validationf("SKU %s already exists", req.SKU)
	}

	// Initial stock lands on the main branch
	var mainBranch *model.Branch
	if req.InitialStock > 0 {
		mainBranch, err = s.branchRepo.FindByName(ctx, s.mainBranchName)
		if err != nil {
			return nil, &NotFoundError{Resource: "branch", Key: s.mainBranchName}
		}
	}

	product := &model.Product{
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		CategoryID:   categoryID,
		BuyingPrice:  req.BuyingPrice,
		SellingPrice: req.SellingPrice,
		Active:       true,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, product); err != nil {
			return err
		}
		if req.InitialStock > 0 {
			row := &model.BranchStock{
				BranchID:   mainBranch.ID,
				ProductID:  product.ID,
				CategoryID: categoryID,
				Quantity:   req.InitialStock,
			}
			if err := s.stockRepo.UpsertAddTx(tx, row); err != nil {
				return err
			}
			mov := &model.StockMovement{
				BranchID:       mainBranch.ID,
				ProductID:      product.ID,
				Type:           "allocation",
				Quantity:       req.InitialStock,
				QuantityBefore: 0,
				QuantityAfter:  req.InitialStock,
			}
			if err := s.movRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, &TransactionError{Op: "create product", Err: txErr}
	}

	log.Info().Str("sku", product.SKU).Str("product_id", product.ID.String()).Msg("product created")

	product.Category = category
	return productToResponse(product), nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", Key: id.String()}
		}
		return nil, err
	}
	return productToResponse(product), nil
}

func (s *productService) GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	product, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", Key: sku}
		}
		return nil, err
	}
	return productToResponse(product), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.ProductListResponse{
		Data:       items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *productService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]dto.ProductResponse, error) {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "category", Key: categoryID.String()}
		}
		return nil, err
	}
	products, err := s.repo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return items, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", Key: id.String()}
		}
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	categoryChanged := false
	if req.CategoryID != nil {
		cid, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, validationf("invalid category_id: %s", *req.CategoryID)
		}
		category, err := s.categoryRepo.FindByID(ctx, cid)
		if err != nil {
			return nil, &NotFoundError{Resource: "category", Key: *req.CategoryID}
		}
		categoryChanged = cid != product.CategoryID
		product.CategoryID = cid
		product.Category = category
	}
	if req.BuyingPrice != nil {
		product.BuyingPrice = *req.BuyingPrice
	}
	if req.SellingPrice != nil {
		product.SellingPrice = *req.SellingPrice
	}

	if categoryChanged {
		// The ledger denormalizes category_id per row; recategorizing the
		// product must rewrite those rows in the same transaction or the
		// allocated view's category join goes stale.
		txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			if err := s.repo.UpdateTx(tx, product); err != nil {
				return err
			}
			return s.stockRepo.UpdateCategoryTx(tx, product.ID, product.CategoryID)
		})
		if txErr != nil {
			return nil, &TransactionError{Op: "update product", Err: txErr}
		}
	} else if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return productToResponse(product), nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "product", Key: id.String()}
		}
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:           p.ID.String(),
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		CategoryID:   p.CategoryID.String(),
		BuyingPrice:  p.BuyingPrice,
		SellingPrice: p.SellingPrice,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if p.Category != nil {
		resp.CategoryName = p.Category.Name
	}
	return resp
}
