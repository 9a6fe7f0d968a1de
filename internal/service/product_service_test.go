package service_test

import (
	"context"
	"testing"

	"branchpos/internal/dto"
	"branchpos/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildProductSvc() (service.ProductService, *stubProductRepo, *stubCategoryRepo, *stubBranchRepo, *stubStockRepo, *stubMovementRepo) {
	productRepo := newStubProductRepo()
	categoryRepo := newStubCategoryRepo()
	branchRepo := newStubBranchRepo()
	stockRepo := newStubStockRepo()
	movRepo := &stubMovementRepo{}
	svc := service.NewProductService(productRepo, categoryRepo, branchRepo, stockRepo, movRepo, testMainBranch)
	return svc, productRepo, categoryRepo, branchRepo, stockRepo, movRepo
}

func TestCreateProduct_AllocatesInitialStockToMainBranch(t *testing.T) {
	svc, _, categoryRepo, branchRepo, stockRepo, movRepo := buildProductSvc()
	cat := seedCategory(categoryRepo, "Dairy")
	main := seedBranch(branchRepo, testMainBranch, true)

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		SKU:          "SKU-100",
		Name:         "Yoghurt 250ml",
		CategoryID:   cat.ID.String(),
		BuyingPrice:  decimal.NewFromInt(40),
		SellingPrice: decimal.NewFromInt(60),
		InitialStock: 50,
	})
	require.NoError(t, err)
	assert.True(t, resp.Active)
	assert.Equal(t, "Dairy", resp.CategoryName)

	// Catalog row and its first allocation land together
	require.Len(t, stockRepo.rows, 1)
	for key, row := range stockRepo.rows {
		assert.Equal(t, main.ID, key.branchID)
		assert.Equal(t, 50, row.Quantity)
	}
	require.Len(t, movRepo.movements, 1)
	assert.Equal(t, "allocation", movRepo.movements[0].Type)
	assert.Equal(t, 50, movRepo.movements[0].QuantityAfter)
}

func TestCreateProduct_ZeroInitialStockSkipsAllocation(t *testing.T) {
	svc, _, categoryRepo, _, stockRepo, movRepo := buildProductSvc()
	cat := seedCategory(categoryRepo, "Dairy")

	// No main branch seeded: creation must not need one when stock is zero
	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		SKU:          "SKU-101",
		Name:         "Cheese 200g",
		CategoryID:   cat.ID.String(),
		BuyingPrice:  decimal.NewFromInt(150),
		SellingPrice: decimal.NewFromInt(220),
	})
	require.NoError(t, err)

	assert.Empty(t, stockRepo.rows)
	assert.Empty(t, movRepo.movements)
}

func TestCreateProduct_DuplicateSKURejected(t *testing.T) {
	svc, productRepo, categoryRepo, _, stockRepo, _ := buildProductSvc()
	cat := seedCategory(categoryRepo, "Dairy")
	seedProduct(productRepo, stockRepo, "SKU-100", "Yoghurt 250ml", cat.ID, 60)

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		SKU:          "SKU-100",
		Name:         "Another Yoghurt",
		CategoryID:   cat.ID.String(),
		BuyingPrice:  decimal.NewFromInt(40),
		SellingPrice: decimal.NewFromInt(60),
	})

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "SKU-100")
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	svc, _, _, _, _, _ := buildProductSvc()

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		SKU:          "SKU-100",
		Name:         "Yoghurt 250ml",
		CategoryID:   "b2f4e8f0-0000-0000-0000-000000000000",
		BuyingPrice:  decimal.NewFromInt(40),
		SellingPrice: decimal.NewFromInt(60),
	})

	var notFound *service.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "category", notFound.Resource)
}

func TestDeactivate_SoftDeletes(t *testing.T) {
	svc, productRepo, categoryRepo, _, stockRepo, _ := buildProductSvc()
	cat := seedCategory(categoryRepo, "Dairy")
	p := seedProduct(productRepo, stockRepo, "SKU-100", "Yoghurt 250ml", cat.ID, 60)

	require.NoError(t, svc.Deactivate(context.Background(), p.ID))

	// Row survives with Active=false; lookups by SKU no longer find it
	assert.False(t, productRepo.products[p.ID].Active)
	_, err := svc.GetBySKU(context.Background(), "SKU-100")
	var notFound *service.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestUpdateProduct_PartialFields(t *testing.T) {
	svc, productRepo, categoryRepo, _, stockRepo, _ := buildProductSvc()
	cat := seedCategory(categoryRepo, "Dairy")
	p := seedProduct(productRepo, stockRepo, "SKU-100", "Yoghurt 250ml", cat.ID, 60)

	newName := "Yoghurt Vanilla 250ml"
	newPrice := decimal.NewFromInt(75)
	resp, err := svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		Name:         &newName,
		SellingPrice: &newPrice,
	})
	require.NoError(t, err)

	assert.Equal(t, newName, resp.Name)
	assert.True(t, resp.SellingPrice.Equal(newPrice))
	// Untouched fields keep their values
	assert.True(t, productRepo.products[p.ID].BuyingPrice.Equal(decimal.NewFromInt(30)))
}

func TestUpdateProduct_CategoryChangeRewritesStockRows(t *testing.T) {
	svc, productRepo, categoryRepo, branchRepo, stockRepo, _ := buildProductSvc()
	dairy := seedCategory(categoryRepo, "Dairy")
	bakery := seedCategory(categoryRepo, "Bakery")
	westlands := seedBranch(branchRepo, "Westlands", false)
	karen := seedBranch(branchRepo, "Karen", false)
	p := seedProduct(productRepo, stockRepo, "SKU-100", "Yoghurt 250ml", dairy.ID, 60)
	seedStock(stockRepo, westlands.ID, p, 10)
	seedStock(stockRepo, karen.ID, p, 5)

	bakeryID := bakery.ID.String()
	resp, err := svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		CategoryID: &bakeryID,
	})
	require.NoError(t, err)

	assert.Equal(t, bakeryID, resp.CategoryID)
	assert.Equal(t, "Bakery", resp.CategoryName)

	// Every ledger row follows the product into the new category
	for _, row := range stockRepo.rows {
		assert.Equal(t, bakery.ID, row.CategoryID)
	}
}

func TestUpdateProduct_UnknownCategoryLeavesStockRowsAlone(t *testing.T) {
	svc, productRepo, categoryRepo, branchRepo, stockRepo, _ := buildProductSvc()
	dairy := seedCategory(categoryRepo, "Dairy")
	branch := seedBranch(branchRepo, "Westlands", false)
	p := seedProduct(productRepo, stockRepo, "SKU-100", "Yoghurt 250ml", dairy.ID, 60)
	seedStock(stockRepo, branch.ID, p, 10)

	unknown := "b2f4e8f0-0000-0000-0000-000000000000"
	_, err := svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		CategoryID: &unknown,
	})
	var notFound *service.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "category", notFound.Resource)

	for _, row := range stockRepo.rows {
		assert.Equal(t, dairy.ID, row.CategoryID)
	}
}
