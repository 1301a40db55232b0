package service

import (
	"errors"
	"fmt"
	"log"

	"taskpay/internal/domain"
	"taskpay/internal/models"
	"taskpay/internal/money"
	"taskpay/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionService propagates a qualifying earning up the referral chain, at
// most domain.MaxUplineLevels deep, idempotently per
// (source event, beneficiary, level).
type CommissionService struct {
	db        *gorm.DB
	ledger    *LedgerService
	referrals *ReferralService
	userRepo  *repository.UserRepository
	settings  *repository.SettingRepository
}

func NewCommissionService(
	db *gorm.DB,
	ledger *LedgerService,
	referrals *ReferralService,
	userRepo *repository.UserRepository,
	settings *repository.SettingRepository,
) *CommissionService {
	return &CommissionService{db: db, ledger: ledger, referrals: referrals, userRepo: userRepo, settings: settings}
}

// OnQualifyingEarning credits commission to up to three upline levels for one
// earning event. Safe to invoke more than once for the same sourceEventID: the
// commission record insert and the credit share a transaction, and a duplicate
// record means that level was already paid.
//
// Skipped without error: the earner themselves (defense in depth), missing or
// deleted beneficiaries, and levels whose traversed edge is not ACTIVE yet.
func (s *CommissionService) OnQualifyingEarning(sourceEventID string, earningUserID uint, earningPaise int64) error {
	if sourceEventID == "" {
		return fmt.Errorf("source event id is required")
	}
	if earningPaise <= 0 {
		return domain.ErrInvalidAmount
	}

	upline, err := s.referrals.Upline(earningUserID, domain.MaxUplineLevels)
	if err != nil && !errors.Is(err, domain.ErrCycleDetected) {
		return err
	}
	if errors.Is(err, domain.ErrCycleDetected) {
		// Data integrity anomaly, already logged by the walk; pay the part of
		// the chain that is intact.
		log.Printf("[cascade] truncated upline for user %d on event %s", earningUserID, sourceEventID)
	}

	rates := s.rates()
	for _, step := range upline {
		if step.ReferrerID == earningUserID {
			continue
		}
		if step.EdgeStatus != domain.ReferralStatusActive {
			continue
		}
		beneficiary, err := s.userRepo.GetByID(step.ReferrerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if !beneficiary.IsActive() {
			continue
		}
		commission := money.ApplyRate(earningPaise, rates[step.Level-1])
		if commission <= 0 {
			continue
		}
		err = s.db.Transaction(func(tx *gorm.DB) error {
			record := &models.CommissionRecord{
				SourceEventID:     sourceEventID,
				BeneficiaryUserID: step.ReferrerID,
				Level:             step.Level,
				EarningUserID:     earningUserID,
				AmountPaise:       commission,
			}
			if err := tx.Create(record).Error; err != nil {
				return err
			}
			_, err := s.ledger.CreditTx(tx, step.ReferrerID, commission, domain.EntryKindCommission,
				fmt.Sprintf("level %d referral commission (earning by user %d)", step.Level, earningUserID),
				sourceEventID)
			return err
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Replayed event; this level was already paid.
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// rates returns the per-level commission rates, settings first, defaults as
// fallback. Index 0 is level 1.
func (s *CommissionService) rates() [domain.MaxUplineLevels]decimal.Decimal {
	keys := [domain.MaxUplineLevels]string{
		domain.SettingCommissionRateL1,
		domain.SettingCommissionRateL2,
		domain.SettingCommissionRateL3,
	}
	defaults := [domain.MaxUplineLevels]string{
		domain.DefaultCommissionRateL1,
		domain.DefaultCommissionRateL2,
		domain.DefaultCommissionRateL3,
	}
	var rates [domain.MaxUplineLevels]decimal.Decimal
	for i := range keys {
		raw, err := s.settings.Get(keys[i])
		if err != nil || raw == "" {
			raw = defaults[i]
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil || rate.IsNegative() {
			rate, _ = decimal.NewFromString(defaults[i])
		}
		rates[i] = rate
	}
	return rates
}
