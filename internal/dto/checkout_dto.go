package dto

import "github.com/shopspring/decimal"

// ─── Sale settlement (POST /api/update-stock) ───────────────────────────────

// SaleItem is one line of a cart being settled.
type SaleItem struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

// SettleSaleRequest settles a cart against one branch: every line decrements
// branch stock and logs a transaction row, or nothing happens at all.
// TotalAmount is the sale total the register charged; it is recorded on every
// ledger row of the sale, while line amounts are computed server-side.
type SettleSaleRequest struct {
	BranchID      string          `json:"branch_id"      validate:"required,uuid"`
	CustomerName  string          `json:"customer_name"  validate:"omitempty,max=120"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=CASH MPESA CARD"`
	TotalAmount   decimal.Decimal `json:"total_amount"   validate:"required"`
	Items         []SaleItem      `json:"items"          validate:"required,min=1,dive"`
	// CustomerEmail: optional — when present, the receipt worker mails the PDF.
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
}

type SettledLine struct {
	ProductID  string          `json:"product_id"`
	SKU        string          `json:"sku"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineAmount decimal.Decimal `json:"line_amount"`
}

type SettleSaleResponse struct {
	TransactionIDs []string        `json:"transaction_ids"`
	Lines          []SettledLine   `json:"lines"`
	Total          decimal.Decimal `json:"total"`
	SettledAt      string          `json:"settled_at"`
}

// ─── Record-only transactions (POST /api/transactions) ─────────────────────

// RecordTransactionRequest appends a ledger row without touching stock.
// Used for reconciling sales captured outside the settlement path.
type RecordTransactionRequest struct {
	SKU           string          `json:"sku"            validate:"required"`
	Quantity      int             `json:"quantity"       validate:"required,min=1"`
	BranchID      string          `json:"branch_id"      validate:"omitempty,uuid"`
	CustomerName  string          `json:"customer_name"  validate:"omitempty,max=120"`
	TotalAmount   decimal.Decimal `json:"total_amount"   validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=CASH MPESA CARD"`
}

// ─── Listing ─────────────────────────────────────────────────────────────────

type TransactionFilter struct {
	BranchID string `form:"branch_id" validate:"omitempty,uuid"`
	SKU      string `form:"sku"`
	Date     string `form:"date"` // YYYY-MM-DD; empty = no date filter
	Page     int    `form:"page,default=1"  validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type TransactionResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name,omitempty"`
	Quantity      int             `json:"quantity"`
	BranchID      string          `json:"branch_id"`
	BranchName    string          `json:"branch_name,omitempty"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Date          string          `json:"transaction_date"`
}

type TransactionListResponse struct {
	Data  []TransactionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
