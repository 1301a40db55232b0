package models

import "time"

// MilestoneAward marks a referral-count threshold as paid for a user. The
// composite unique index guarantees each threshold pays out at most once even
// under concurrent evaluation.
type MilestoneAward struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_milestone_user_threshold" json:"user_id"`
	Threshold  int       `gorm:"not null;uniqueIndex:idx_milestone_user_threshold" json:"threshold"`
	BonusPaise int64     `gorm:"not null" json:"bonus_paise"`
	CreatedAt  time.Time `json:"created_at"`
}

func (MilestoneAward) TableName() string { return "milestone_awards" }
