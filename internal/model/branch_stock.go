package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BranchStock is the allocation ledger: the quantity of one product held by
// one branch. Composite-keyed on (branch_id, product_id) — a row is created on
// first allocation and merged additively afterwards, never duplicated.
// Quantity never goes below zero; every decrement is a conditional UPDATE
// guarded by the current value, backed by a CHECK constraint.
type BranchStock struct {
	BranchID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity   int       `gorm:"not null;default:0;check:quantity >= 0"`
	CategoryID uuid.UUID `gorm:"type:uuid;index"`
	// Price is an optional branch-specific override of the product's selling price.
	Price     *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Branch  *Branch  `gorm:"foreignKey:BranchID"`
	Product *Product `gorm:"foreignKey:ProductID"`
}

func (BranchStock) TableName() string { return "branch_products" }
