package service_test

import (
	"context"
	"errors"
	"time"

	"branchpos/internal/dto"
	"branchpos/internal/model"
	"branchpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// In-memory repositories for unit tests. DB() returns nil so services run
// their transaction closures directly (see runTx).

var errStubNotFound = gorm.ErrRecordNotFound

// ── Branch ────────────────────────────────────────────────────────────────────

type stubBranchRepo struct {
	branches map[uuid.UUID]*model.Branch
}

func newStubBranchRepo() *stubBranchRepo {
	return &stubBranchRepo{branches: make(map[uuid.UUID]*model.Branch)}
}

func (r *stubBranchRepo) Create(_ context.Context, b *model.Branch) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = time.Now()
	r.branches[b.ID] = b
	return nil
}

func (r *stubBranchRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Branch, error) {
	b, ok := r.branches[id]
	if !ok {
		return nil, errStubNotFound
	}
	return b, nil
}

func (r *stubBranchRepo) FindByName(_ context.Context, name string) (*model.Branch, error) {
	for _, b := range r.branches {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, errStubNotFound
}

func (r *stubBranchRepo) List(_ context.Context) ([]model.Branch, error) {
	out := make([]model.Branch, 0, len(r.branches))
	for _, b := range r.branches {
		out = append(out, *b)
	}
	return out, nil
}

func (r *stubBranchRepo) Update(_ context.Context, b *model.Branch) error {
	r.branches[b.ID] = b
	return nil
}

func (r *stubBranchRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.branches, id)
	return nil
}

func (r *stubBranchRepo) DB() *gorm.DB { return nil }

var _ repository.BranchRepository = (*stubBranchRepo)(nil)

// ── Category ──────────────────────────────────────────────────────────────────

type stubCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (r *stubCategoryRepo) Create(_ context.Context, c *model.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.categories[c.ID] = c
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, errStubNotFound
	}
	return c, nil
}

func (r *stubCategoryRepo) FindByName(_ context.Context, name string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, errStubNotFound
}

func (r *stubCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	out := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		if c.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *model.Category) error {
	r.categories[c.ID] = c
	return nil
}

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

// ── Product ───────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, _ *gorm.DB, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errStubNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku && p.Active {
			return p, nil
		}
	}
	return nil, errStubNotFound
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListByCategory(_ context.Context, categoryID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.CategoryID == categoryID && p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) UpdateTx(_ *gorm.DB, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return errStubNotFound
	}
	p.Active = false
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Branch stock ──────────────────────────────────────────────────────────────

type stockKey struct {
	branchID  uuid.UUID
	productID uuid.UUID
}

type stubStockRepo struct {
	rows map[stockKey]*model.BranchStock
	skus map[uuid.UUID]string // product ID -> SKU, for the allocated view
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{
		rows: make(map[stockKey]*model.BranchStock),
		skus: make(map[uuid.UUID]string),
	}
}

func (r *stubStockRepo) Get(_ context.Context, branchID, productID uuid.UUID) (*model.BranchStock, error) {
	row, ok := r.rows[stockKey{branchID, productID}]
	if !ok {
		return nil, errStubNotFound
	}
	// Return a snapshot, as the real repository does: a row scanned by GORM
	// is a fresh struct, so later writes through the repo must not alias it.
	cp := *row
	return &cp, nil
}

func (r *stubStockRepo) GetTx(_ *gorm.DB, branchID, productID uuid.UUID) (*model.BranchStock, error) {
	return r.Get(context.Background(), branchID, productID)
}

func (r *stubStockRepo) ListByBranch(_ context.Context, branchID uuid.UUID) ([]model.BranchStock, error) {
	var out []model.BranchStock
	for k, row := range r.rows {
		if k.branchID == branchID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *stubStockRepo) ListAllocated(_ context.Context, filter dto.AllocatedStockFilter) ([]dto.AllocatedStockRow, error) {
	var out []dto.AllocatedStockRow
	for k, row := range r.rows {
		sku := r.skus[k.productID]
		if filter.BranchID != "" && filter.BranchID != k.branchID.String() {
			continue
		}
		if filter.SKU != "" && filter.SKU != sku {
			continue
		}
		out = append(out, dto.AllocatedStockRow{
			BranchID:  k.branchID.String(),
			ProductID: k.productID.String(),
			SKU:       sku,
			Quantity:  row.Quantity,
		})
	}
	return out, nil
}

func (r *stubStockRepo) UpsertAddTx(_ *gorm.DB, row *model.BranchStock) error {
	key := stockKey{row.BranchID, row.ProductID}
	if existing, ok := r.rows[key]; ok {
		existing.Quantity += row.Quantity
		return nil
	}
	cp := *row
	r.rows[key] = &cp
	return nil
}

func (r *stubStockRepo) DecrementTx(_ *gorm.DB, branchID, productID uuid.UUID, qty int) (int64, error) {
	row, ok := r.rows[stockKey{branchID, productID}]
	if !ok || row.Quantity < qty {
		return 0, nil
	}
	row.Quantity -= qty
	return 1, nil
}

func (r *stubStockRepo) UpdateCategoryTx(_ *gorm.DB, productID, categoryID uuid.UUID) error {
	for k, row := range r.rows {
		if k.productID == productID {
			row.CategoryID = categoryID
		}
	}
	return nil
}

func (r *stubStockRepo) DeleteByBranchTx(_ *gorm.DB, branchID uuid.UUID) error {
	for k := range r.rows {
		if k.branchID == branchID {
			delete(r.rows, k)
		}
	}
	return nil
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

func (r *stubStockRepo) quantity(branchID, productID uuid.UUID) int {
	row, ok := r.rows[stockKey{branchID, productID}]
	if !ok {
		return 0
	}
	return row.Quantity
}

var _ repository.BranchStockRepository = (*stubStockRepo)(nil)

// ── Transactions ──────────────────────────────────────────────────────────────

type stubTransactionRepo struct {
	records []*model.Transaction
	failing bool // when set, Create errors to simulate a storage fault
}

func (r *stubTransactionRepo) Create(_ context.Context, _ *gorm.DB, t *model.Transaction) error {
	if r.failing {
		return errors.New("storage fault")
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.records = append(r.records, t)
	return nil
}

func (r *stubTransactionRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Transaction, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Transaction
	for _, t := range r.records {
		if want[t.ID] {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTransactionRepo) List(_ context.Context, filter dto.TransactionFilter) ([]model.Transaction, int64, error) {
	var out []model.Transaction
	for _, t := range r.records {
		if filter.BranchID != "" && filter.BranchID != t.BranchID.String() {
			continue
		}
		if filter.SKU != "" && filter.SKU != t.SKU {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *stubTransactionRepo) DB() *gorm.DB { return nil }

var _ repository.TransactionRepository = (*stubTransactionRepo)(nil)

// ── Stock movements ───────────────────────────────────────────────────────────

type stubMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) ListByProduct(_ context.Context, productID uuid.UUID, _ int) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMovementRepo) ListByBranch(_ context.Context, branchID uuid.UUID, _ int) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.BranchID == branchID {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func seedBranch(repo *stubBranchRepo, name string, protected bool) *model.Branch {
	b := &model.Branch{
		ID:        uuid.New(),
		Name:      name,
		Location:  "Test Location",
		Protected: protected,
	}
	repo.branches[b.ID] = b
	return b
}

func seedCategory(repo *stubCategoryRepo, name string) *model.Category {
	c := &model.Category{ID: uuid.New(), Name: name, Active: true}
	repo.categories[c.ID] = c
	return c
}

func seedProduct(repo *stubProductRepo, stockRepo *stubStockRepo, sku, name string, categoryID uuid.UUID, price float64) *model.Product {
	p := &model.Product{
		ID:           uuid.New(),
		SKU:          sku,
		Name:         name,
		CategoryID:   categoryID,
		BuyingPrice:  decimal.NewFromFloat(price / 2),
		SellingPrice: decimal.NewFromFloat(price),
		Active:       true,
	}
	repo.products[p.ID] = p
	if stockRepo != nil {
		stockRepo.skus[p.ID] = sku
	}
	return p
}

func seedStock(repo *stubStockRepo, branchID uuid.UUID, p *model.Product, qty int) {
	repo.rows[stockKey{branchID, p.ID}] = &model.BranchStock{
		BranchID:   branchID,
		ProductID:  p.ID,
		CategoryID: p.CategoryID,
		Quantity:   qty,
	}
	repo.skus[p.ID] = p.SKU
}
