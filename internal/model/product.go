package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry identified by a unique SKU.
// Products are soft deleted (Active=false) — rows are never physically removed
// while branch stock or transaction records still reference them.
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU          string    `gorm:"column:sku;uniqueIndex;not null"`
	Name         string    `gorm:"index;not null"`
	Description  *string
	BuyingPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CategoryID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Active       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
}

func (Product) TableName() string { return "products" }
