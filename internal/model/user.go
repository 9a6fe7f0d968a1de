package model

import (
	"time"

	"github.com/google/uuid"
)

// User can authenticate against the API. Role: "admin" | "user".
// Users are provisioned with cmd/seed — there are no management endpoints.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(20);not null;default:'user'"`
	// BranchID restricts a user to one branch; nil = all branches
	BranchID  *uuid.UUID `gorm:"type:uuid"`
	Active    bool       `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }
