package models

import (
	"time"

	"gorm.io/gorm"
)

// Account is the denormalized balance snapshot for one user. The ledger is the
// source of truth; balance_paise must always equal the signed sum of that user's
// entries. Rows are created lazily on first credit/debit and never deleted.
type Account struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	UserID              uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	BalancePaise        int64          `gorm:"not null;default:0" json:"balance_paise"`
	TotalEarnedPaise    int64          `gorm:"not null;default:0" json:"total_earned_paise"`
	TotalWithdrawnPaise int64          `gorm:"not null;default:0" json:"total_withdrawn_paise"`
	Currency            string         `gorm:"size:3;default:'INR'" json:"currency"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Account) TableName() string { return "accounts" }
