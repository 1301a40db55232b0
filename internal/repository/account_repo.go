package repository

import (
	"taskpay/internal/models"

	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByUserID(userID uint) (*models.Account, error) {
	var a models.Account
	if err := r.db.Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// GetOrCreate returns the user's account, creating an empty one lazily on first
// access.
func (r *AccountRepository) GetOrCreate(userID uint) (*models.Account, error) {
	a, err := r.GetByUserID(userID)
	if err == nil {
		return a, nil
	}
	a = &models.Account{UserID: userID}
	if err := r.db.Create(a).Error; err != nil {
		// Lost a race with a concurrent creator; re-read.
		if existing, rerr := r.GetByUserID(userID); rerr == nil {
			return existing, nil
		}
		return nil, err
	}
	return a, nil
}
