package models

import (
	"time"

	"gorm.io/gorm"
)

// WithdrawalRequest is one row per withdrawal attempt. At most one PENDING row
// may exist per user at any time; rows are never deleted.
type WithdrawalRequest struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	OrderID        string         `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	AmountPaise    int64          `gorm:"not null" json:"amount_paise"`
	PaymentMethod  string         `gorm:"size:20;not null" json:"payment_method"` // UPI, BANK, WALLET
	PaymentDetails string         `gorm:"size:512" json:"payment_details"`        // method-specific payload (VPA, account no, wallet id)
	Status         string         `gorm:"size:20;not null;index" json:"status"`
	// PendingUserID mirrors UserID while Status is PENDING and is NULL on every
	// other status; its unique index is the storage-level guarantee of at most
	// one pending request per user.
	PendingUserID *uint          `gorm:"uniqueIndex" json:"-"`
	AdminNote     string         `gorm:"size:255" json:"admin_note"`
	ProviderRef   string         `gorm:"size:128" json:"provider_ref"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	ProcessedAt   *time.Time     `json:"processed_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WithdrawalRequest) TableName() string { return "withdrawal_requests" }
