package models

import "time"

// EarningEvent pins a task-earning event id to the ledger credit it produced.
// The unique source_event_id makes webhook redelivery credit the earner at most
// once; the insert and the credit share a transaction.
type EarningEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SourceEventID string    `gorm:"size:128;uniqueIndex;not null" json:"source_event_id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	AmountPaise   int64     `gorm:"not null" json:"amount_paise"`
	CreatedAt     time.Time `json:"created_at"`
}

func (EarningEvent) TableName() string { return "earning_events" }
