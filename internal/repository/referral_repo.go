package repository

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"taskpay/internal/domain"
	"taskpay/internal/models"

	"gorm.io/gorm"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// generateReferralCode returns an 8-character hex referral code.
func generateReferralCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetOrCreateCode returns the existing referral code for a user, or creates a new unique one.
func (r *ReferralRepository) GetOrCreateCode(userID uint) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	if err := r.db.Where("user_id = ?", userID).First(&rc).Error; err == nil {
		return &rc, nil
	}
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, err
		}
		rc = models.ReferralCode{UserID: userID, Code: code, IsActive: true}
		if err := r.db.Create(&rc).Error; err == nil {
			return &rc, nil
		}
		// Collision: retry with new code
	}
	return nil, fmt.Errorf("failed to generate a unique referral code after retries")
}

// GetByCode returns an active ReferralCode record matching the given code string.
func (r *ReferralRepository) GetByCode(code string) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	err := r.db.Where("code = ? AND is_active = ?", code, true).First(&rc).Error
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// CreateEdge persists a new referral edge. The unique index on referred_user_id
// rejects a second referrer for the same user.
func (r *ReferralRepository) CreateEdge(edge *models.ReferralEdge) error {
	return r.db.Create(edge).Error
}

// GetEdgeByReferredUserID returns the edge pointing from the given user to
// their direct referrer, or gorm.ErrRecordNotFound for root users.
func (r *ReferralRepository) GetEdgeByReferredUserID(userID uint) (*models.ReferralEdge, error) {
	var e models.ReferralEdge
	if err := r.db.Where("referred_user_id = ?", userID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ActivateEdge flips a PENDING edge to ACTIVE. Returns true when a row actually
// changed, so callers know whether this was the referred user's first
// qualifying action.
func (r *ReferralRepository) ActivateEdge(referredUserID uint) (bool, error) {
	res := r.db.Model(&models.ReferralEdge{}).
		Where("referred_user_id = ? AND status = ?", referredUserID, domain.ReferralStatusPending).
		Update("status", domain.ReferralStatusActive)
	return res.RowsAffected > 0, res.Error
}

// ListByReferrerID returns a user's direct referrals with the referred users preloaded.
func (r *ReferralRepository) ListByReferrerID(referrerID uint, limit, offset int) ([]models.ReferralEdge, error) {
	var list []models.ReferralEdge
	err := r.db.Where("referrer_id = ?", referrerID).
		Preload("ReferredUser").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// CountDirectReferrals counts the edges where the user is the referrer,
// regardless of status.
func (r *ReferralRepository) CountDirectReferrals(referrerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ReferralEdge{}).
		Where("referrer_id = ?", referrerID).
		Count(&count).Error
	return count, err
}

// ChildIDs returns the referred user ids for a batch of referrers; used by the
// downline traversal.
func (r *ReferralRepository) ChildIDs(referrerIDs []uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.ReferralEdge{}).
		Where("referrer_id IN ?", referrerIDs).
		Pluck("referred_user_id", &ids).Error
	return ids, err
}
