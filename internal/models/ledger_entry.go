package models

import (
	"time"

	"taskpay/internal/domain"

	"gorm.io/gorm"
)

// LedgerEntry is an immutable record of a single balance-affecting event.
// Completed entries are never mutated; a reversal is always a new compensating
// entry. The only status transition allowed is the withdrawal service finalizing
// a WITHDRAWAL-kind entry.
type LedgerEntry struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"not null;index" json:"user_id"`
	Kind              string         `gorm:"size:30;not null;index" json:"kind"` // CREDIT, DEBIT, BONUS, REFERRAL_COMMISSION, WITHDRAWAL
	AmountPaise       int64          `gorm:"not null" json:"amount_paise"`       // positive magnitude; Kind determines sign
	BalanceAfterPaise int64          `gorm:"not null" json:"balance_after_paise"`
	Description       string         `gorm:"size:255" json:"description"`
	ReferenceID       string         `gorm:"size:128;index" json:"reference_id"` // withdrawal order id or source event id
	Status            string         `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED
	CreatedAt         time.Time      `json:"created_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

// SignedPaise returns the entry's effect on the balance: negative for debit-side
// kinds, positive otherwise.
func (e *LedgerEntry) SignedPaise() int64 {
	switch e.Kind {
	case domain.EntryKindDebit, domain.EntryKindWithdrawal:
		return -e.AmountPaise
	}
	return e.AmountPaise
}
