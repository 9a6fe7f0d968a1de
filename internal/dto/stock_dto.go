package dto

import "github.com/shopspring/decimal"

// ─── Allocation ──────────────────────────────────────────────────────────────

// BranchAllocation is one branch/quantity pair within an allocation request.
// Quantity may be negative to correct an earlier allocation; a negative delta
// is rejected when it would drive the branch quantity below zero.
type BranchAllocation struct {
	BranchID string `json:"branch_id" validate:"required,uuid"`
	Quantity int    `json:"quantity"  validate:"required"`
}

// AllocateStockRequest spreads one product across branches. A single-branch
// allocation posts one entry in Allocations; batch allocations post several
// and commit as one unit: if any entry fails, none is applied.
type AllocateStockRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	// CategoryID is optional; when present it must match the product's category.
	CategoryID  string             `json:"category_id" validate:"omitempty,uuid"`
	Allocations []BranchAllocation `json:"allocations" validate:"required,min=1,dive"`
}

// AllocatedStockRow is one row of the joined allocated-stock view.
type AllocatedStockRow struct {
	BranchID     string           `json:"branch_id"`
	BranchName   string           `json:"branch_name"`
	ProductID    string           `json:"product_id"`
	SKU          string           `json:"sku"`
	ProductName  string           `json:"product_name"`
	CategoryName string           `json:"category_name"`
	Quantity     int              `json:"quantity"`
	SellingPrice decimal.Decimal  `json:"selling_price"`
	BranchPrice  *decimal.Decimal `json:"branch_price,omitempty"`
}

// AllocatedStockFilter narrows GET /api/allocated-stocks.
type AllocatedStockFilter struct {
	BranchID   string `form:"branch_id"   validate:"omitempty,uuid"`
	CategoryID string `form:"category_id" validate:"omitempty,uuid"`
	SKU        string `form:"sku"`
}

// BranchLedgerRow is one raw branch_products row (GET /api/allocate-stock),
// without the joined branch/category names of the allocated view.
type BranchLedgerRow struct {
	BranchID    string           `json:"branch_id"`
	ProductID   string           `json:"product_id"`
	SKU         string           `json:"sku,omitempty"`
	ProductName string           `json:"product_name,omitempty"`
	Quantity    int              `json:"quantity"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	UpdatedAt   string           `json:"updated_at"`
}

// ─── Transfer ────────────────────────────────────────────────────────────────

// TransferStockRequest moves quantity between branches. FromBranchID empty
// means the protected main branch.
type TransferStockRequest struct {
	ProductID    string `json:"product_id"     validate:"required,uuid"`
	FromBranchID string `json:"from_branch_id" validate:"omitempty,uuid"`
	ToBranchID   string `json:"to_branch_id"   validate:"required,uuid"`
	Quantity     int    `json:"quantity"       validate:"required,min=1"`
}

// TransferStockResponse reports both sides of a committed transfer.
type TransferStockResponse struct {
	ProductID          string `json:"product_id"`
	SKU                string `json:"sku"`
	FromBranchID       string `json:"from_branch_id"`
	FromBranchName     string `json:"from_branch_name"`
	ToBranchID         string `json:"to_branch_id"`
	ToBranchName       string `json:"to_branch_name"`
	Quantity           int    `json:"quantity"`
	RemainingAtSource  int    `json:"remaining_at_source"`
	TotalAtDestination int    `json:"total_at_destination"`
}
