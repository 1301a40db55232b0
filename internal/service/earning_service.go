package service

import (
	"errors"
	"fmt"
	"log"

	"taskpay/internal/domain"
	"taskpay/internal/models"

	"gorm.io/gorm"
)

// EarningService ingests qualifying task earnings delivered by the task
// workflow. Delivery is at-least-once, so every step must tolerate replays:
// the earner's credit is guarded by the earning_events unique index, edge
// activation is a conditional update, and the cascade keys on
// (event, beneficiary, level).
type EarningService struct {
	db          *gorm.DB
	ledger      *LedgerService
	referrals   *ReferralService
	commissions *CommissionService
}

func NewEarningService(db *gorm.DB, ledger *LedgerService, referrals *ReferralService, commissions *CommissionService) *EarningService {
	return &EarningService{db: db, ledger: ledger, referrals: referrals, commissions: commissions}
}

// Process credits the earner once per sourceEventID, activates their referral
// edge on the first qualifying action, and runs the commission cascade. The
// returned bool reports whether this delivery actually credited the earner;
// false means the event was already ledgered and only the idempotent
// downstream steps re-ran.
func (s *EarningService) Process(sourceEventID string, userID uint, amountPaise int64, description string) (bool, error) {
	if sourceEventID == "" {
		return false, fmt.Errorf("source event id is required")
	}
	if amountPaise <= 0 {
		return false, domain.ErrInvalidAmount
	}

	credited := true
	err := s.db.Transaction(func(tx *gorm.DB) error {
		event := &models.EarningEvent{
			SourceEventID: sourceEventID,
			UserID:        userID,
			AmountPaise:   amountPaise,
		}
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		_, err := s.ledger.CreditTx(tx, userID, amountPaise, domain.EntryKindCredit, description, sourceEventID)
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		log.Printf("[earning] replayed event %s for user %d, credit skipped", sourceEventID, userID)
		credited = false
	} else if err != nil {
		return false, err
	}

	if err := s.referrals.Activate(userID); err != nil {
		log.Printf("[earning] activate referral for user %d: %v", userID, err)
	}
	return credited, s.commissions.OnQualifyingEarning(sourceEventID, userID, amountPaise)
}
