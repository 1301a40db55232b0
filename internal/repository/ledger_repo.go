package repository

import (
	"taskpay/internal/domain"
	"taskpay/internal/models"

	"gorm.io/gorm"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) GetByID(id uint) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	if err := r.db.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *LedgerRepository) ListByUserID(userID uint, limit, offset int) ([]models.LedgerEntry, error) {
	var list []models.LedgerEntry
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// SignedSum recomputes a user's balance from the ledger for audit purposes:
// completed entries plus in-flight (pending) withdrawal debits, since the
// balance guard deducts those at request time.
func (r *LedgerRepository) SignedSum(userID uint) (int64, error) {
	var entries []models.LedgerEntry
	err := r.db.Where("user_id = ?", userID).Find(&entries).Error
	if err != nil {
		return 0, err
	}
	var sum int64
	for i := range entries {
		e := &entries[i]
		if e.Status == domain.EntryStatusCompleted ||
			(e.Kind == domain.EntryKindWithdrawal && e.Status == domain.EntryStatusPending) {
			sum += e.SignedPaise()
		}
	}
	return sum, nil
}
