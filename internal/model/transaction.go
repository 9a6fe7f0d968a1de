package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment method labels. The gateway itself is an external concern — these are
// bookkeeping values only.
const (
	PaymentCash  = "CASH"
	PaymentMpesa = "MPESA"
	PaymentCard  = "CARD"
)

// AnonymousCustomer is recorded when a sale carries no customer name.
const AnonymousCustomer = "Anonymous"

// Transaction is one line of the audit trail of record: which product moved,
// at which branch, for which sale. Rows are append-only — never mutated or
// deleted after creation.
type Transaction struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID       uuid.UUID `gorm:"type:uuid;index;not null"`
	SKU             string    `gorm:"column:sku;index;not null"`
	Quantity        int       `gorm:"not null"`
	BranchID        uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerName    string    `gorm:"not null;default:'Anonymous'"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null"`
	TransactionDate time.Time       `gorm:"index;not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
	Branch  *Branch  `gorm:"foreignKey:BranchID"`
}

func (Transaction) TableName() string { return "transactions" }
