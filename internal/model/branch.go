package model

import (
	"time"

	"github.com/google/uuid"
)

// Branch is a physical retail location with its own inventory ledger.
// Protected marks the distinguished main branch: it cannot be deleted and is
// the default source of stock transfers.
type Branch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Location  string
	Protected bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Stocks []BranchStock `gorm:"foreignKey:BranchID"`
}

func (Branch) TableName() string { return "branches" }
