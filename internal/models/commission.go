package models

import "time"

// CommissionRecord is the idempotency row for the cascade: one per
// (source event, beneficiary, level). The composite unique index is what makes
// replayed earning events a no-op; the credit only happens when this insert
// actually lands.
type CommissionRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	SourceEventID     string    `gorm:"size:128;not null;uniqueIndex:idx_commission_event_beneficiary_level" json:"source_event_id"`
	BeneficiaryUserID uint      `gorm:"not null;uniqueIndex:idx_commission_event_beneficiary_level" json:"beneficiary_user_id"`
	Level             int       `gorm:"not null;uniqueIndex:idx_commission_event_beneficiary_level" json:"level"` // 1-3
	EarningUserID     uint      `gorm:"not null;index" json:"earning_user_id"`
	AmountPaise       int64     `gorm:"not null" json:"amount_paise"`
	CreatedAt         time.Time `json:"created_at"`
}

func (CommissionRecord) TableName() string { return "commission_records" }
