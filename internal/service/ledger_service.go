package service

import (
	"errors"

	"taskpay/internal/domain"
	"taskpay/internal/models"

	"gorm.io/gorm"
)

// LedgerService is the single authoritative point of balance mutation. Every
// credit/debit updates the account snapshot and appends a ledger entry inside
// one transaction; no other component touches Account.BalancePaise.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Credit adds amountPaise to the user's balance and appends a completed ledger
// entry. The account row is created lazily on first use.
func (s *LedgerService) Credit(userID uint, amountPaise int64, kind, description, referenceID string) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.CreditTx(tx, userID, amountPaise, kind, description, referenceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Debit removes amountPaise from the user's balance if and only if the balance
// covers it, and appends the ledger entry. Fails with ErrInsufficientBalance
// without any partial effect otherwise.
func (s *LedgerService) Debit(userID uint, amountPaise int64, kind, description, referenceID string) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.DebitTx(tx, userID, amountPaise, kind, description, referenceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CreditTx is Credit composed into a caller-owned transaction, so callers can
// pair the credit with their own rows (commission records, milestone awards,
// withdrawal refunds) atomically.
func (s *LedgerService) CreditTx(tx *gorm.DB, userID uint, amountPaise int64, kind, description, referenceID string) (*models.LedgerEntry, error) {
	if amountPaise <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if err := ensureAccount(tx, userID); err != nil {
		return nil, err
	}
	err := tx.Model(&models.Account{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance_paise":      gorm.Expr("balance_paise + ?", amountPaise),
			"total_earned_paise": gorm.Expr("total_earned_paise + ?", amountPaise),
		}).Error
	if err != nil {
		return nil, err
	}
	return appendEntry(tx, userID, amountPaise, kind, description, referenceID)
}

// DebitTx is Debit composed into a caller-owned transaction. The conditional
// UPDATE both enforces the non-negative invariant and takes the account row
// lock, serializing concurrent mutations of the same account.
func (s *LedgerService) DebitTx(tx *gorm.DB, userID uint, amountPaise int64, kind, description, referenceID string) (*models.LedgerEntry, error) {
	if amountPaise <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if err := ensureAccount(tx, userID); err != nil {
		return nil, err
	}
	res := tx.Model(&models.Account{}).
		Where("user_id = ? AND balance_paise >= ?", userID, amountPaise).
		Update("balance_paise", gorm.Expr("balance_paise - ?", amountPaise))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrInsufficientBalance
	}
	return appendEntry(tx, userID, amountPaise, kind, description, referenceID)
}

// appendEntry records the ledger row with a balance snapshot read back inside
// the same transaction. Withdrawal debits stay PENDING until the request
// reaches a terminal state; everything else is effective immediately.
func appendEntry(tx *gorm.DB, userID uint, amountPaise int64, kind, description, referenceID string) (*models.LedgerEntry, error) {
	var acct models.Account
	if err := tx.Where("user_id = ?", userID).First(&acct).Error; err != nil {
		return nil, err
	}
	status := domain.EntryStatusCompleted
	if kind == domain.EntryKindWithdrawal {
		status = domain.EntryStatusPending
	}
	entry := &models.LedgerEntry{
		UserID:            userID,
		Kind:              kind,
		AmountPaise:       amountPaise,
		BalanceAfterPaise: acct.BalancePaise,
		Description:       description,
		ReferenceID:       referenceID,
		Status:            status,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func ensureAccount(tx *gorm.DB, userID uint) error {
	var a models.Account
	err := tx.Where("user_id = ?", userID).First(&a).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if cerr := tx.Create(&models.Account{UserID: userID}).Error; cerr != nil {
		// Lost a race with a concurrent creator.
		if errors.Is(cerr, gorm.ErrDuplicatedKey) {
			return nil
		}
		return cerr
	}
	return nil
}
