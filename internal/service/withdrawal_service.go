package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"taskpay/internal/domain"
	"taskpay/internal/models"
	"taskpay/internal/money"
	"taskpay/internal/repository"
	"taskpay/pkg/payout"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")

// WithdrawalService runs the withdrawal request lifecycle:
//
//	PENDING -> APPROVED -> PROCESSING -> COMPLETED
//	PENDING -> REJECTED             (refund)
//	APPROVED -> REJECTED            (payout failed, refund)
//	PENDING -> CANCELLED            (user action, refund)
//
// PROCESSING is the transient claim held while the payout provider is called;
// it falls back to APPROVED when the disbursement fails. All transitions are
// conditional UPDATEs on the current status, so a stale caller gets
// ErrInvalidStateTransition instead of a double effect.
type WithdrawalService struct {
	db             *gorm.DB
	ledger         *LedgerService
	withdrawalRepo *repository.WithdrawalRepository
	settingRepo    *repository.SettingRepository
	provider       payout.Provider
}

func NewWithdrawalService(
	db *gorm.DB,
	ledger *LedgerService,
	withdrawalRepo *repository.WithdrawalRepository,
	settingRepo *repository.SettingRepository,
	provider payout.Provider,
) *WithdrawalService {
	return &WithdrawalService{
		db:             db,
		ledger:         ledger,
		withdrawalRepo: withdrawalRepo,
		settingRepo:    settingRepo,
		provider:       provider,
	}
}

// MinAmountPaise returns the configured withdrawal floor.
func (s *WithdrawalService) MinAmountPaise() int64 {
	raw, err := s.settingRepo.Get(domain.SettingMinWithdrawalPaise)
	if err == nil && raw != "" {
		if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil && v > 0 {
			return v
		}
	}
	return domain.DefaultMinWithdrawalPaise
}

// Create debits the balance and opens a PENDING request, atomically. At most
// one pending request may exist per user, enforced by the unique index on
// pending_user_id; a duplicate insert rolls the debit back. An application
// count cannot carry this invariant under REPEATABLE READ snapshots.
func (s *WithdrawalService) Create(userID uint, amountPaise int64, method, details string) (*models.WithdrawalRequest, error) {
	if amountPaise <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if !domain.IsValidPaymentMethod(method) {
		return nil, ErrUnsupportedPaymentMethod
	}
	if amountPaise < s.MinAmountPaise() {
		return nil, domain.ErrBelowMinimum
	}
	// Fast-fail for the common case; the unique index below is authoritative.
	if pending, err := s.withdrawalRepo.HasPending(userID); err != nil {
		return nil, err
	} else if pending {
		return nil, domain.ErrExistingPendingRequest
	}

	orderID := fmt.Sprintf("wd-%s", uuid.New().String())
	var req *models.WithdrawalRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.ledger.DebitTx(tx, userID, amountPaise, domain.EntryKindWithdrawal,
			fmt.Sprintf("withdrawal request %s", money.FormatRupees(amountPaise)), orderID); err != nil {
			return err
		}
		req = &models.WithdrawalRequest{
			UserID:         userID,
			OrderID:        orderID,
			AmountPaise:    amountPaise,
			PaymentMethod:  method,
			PaymentDetails: details,
			Status:         domain.WithdrawalStatusPending,
			PendingUserID:  &userID,
		}
		return tx.Create(req).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, domain.ErrExistingPendingRequest
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Cancel is the user-side exit from PENDING. The held amount is credited back
// and the paired withdrawal entry finalized.
func (s *WithdrawalService) Cancel(requestID, userID uint) (*models.WithdrawalRequest, error) {
	return s.refundingTransition(requestID, userID,
		[]string{domain.WithdrawalStatusPending},
		domain.WithdrawalStatusCancelled,
		"withdrawal cancelled - refund", "")
}

// Reject is the admin-side refund path, legal from PENDING and from APPROVED
// (a payout that failed after approval must still be refundable).
func (s *WithdrawalService) Reject(requestID uint, adminNote string) (*models.WithdrawalRequest, error) {
	return s.refundingTransition(requestID, 0,
		[]string{domain.WithdrawalStatusPending, domain.WithdrawalStatusApproved},
		domain.WithdrawalStatusRejected,
		"withdrawal rejected - refund", adminNote)
}

// Approve moves a request to APPROVED without touching the balance.
func (s *WithdrawalService) Approve(requestID uint, adminNote string) (*models.WithdrawalRequest, error) {
	var req *models.WithdrawalRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		w, err := lockRequest(tx, requestID, 0)
		if err != nil {
			return err
		}
		res := tx.Model(&models.WithdrawalRequest{}).
			Where("id = ? AND status = ?", w.ID, domain.WithdrawalStatusPending).
			Updates(map[string]interface{}{
				"status":          domain.WithdrawalStatusApproved,
				"admin_note":      adminNote,
				"pending_user_id": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvalidStateTransition
		}
		w.Status = domain.WithdrawalStatusApproved
		w.AdminNote = adminNote
		req = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Complete disburses via the payout provider, then finalizes: request
// COMPLETED, paired entry COMPLETED, lifetime withdrawn total bumped. The
// conditional APPROVED -> PROCESSING flip claims the request before the
// provider call, so concurrent Complete calls cannot both reach the provider.
func (s *WithdrawalService) Complete(ctx context.Context, requestID uint, adminNote string) (*models.WithdrawalRequest, error) {
	w, err := s.withdrawalRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	claim := s.db.Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status = ?", w.ID, domain.WithdrawalStatusApproved).
		Update("status", domain.WithdrawalStatusProcessing)
	if claim.Error != nil {
		return nil, claim.Error
	}
	if claim.RowsAffected == 0 {
		return nil, domain.ErrInvalidStateTransition
	}
	resp, err := s.provider.Disburse(ctx, payout.Request{
		OrderID:     w.OrderID,
		UserID:      w.UserID,
		AmountPaise: w.AmountPaise,
		Currency:    money.Currency,
		Method:      w.PaymentMethod,
		Details:     w.PaymentDetails,
		Description: "taskpay withdrawal",
	})
	if err != nil {
		log.Printf("[withdrawal] payout for %s failed: %v", w.OrderID, err)
		// release the claim so the request can be retried or rejected
		if rerr := s.db.Model(&models.WithdrawalRequest{}).
			Where("id = ? AND status = ?", w.ID, domain.WithdrawalStatusProcessing).
			Update("status", domain.WithdrawalStatusApproved).Error; rerr != nil {
			log.Printf("[withdrawal] failed to release claim on %s: %v", w.OrderID, rerr)
		}
		return nil, fmt.Errorf("payout failed: %w", err)
	}

	var req *models.WithdrawalRequest
	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.WithdrawalRequest{}).
			Where("id = ? AND status = ?", w.ID, domain.WithdrawalStatusProcessing).
			Updates(map[string]interface{}{
				"status":       domain.WithdrawalStatusCompleted,
				"admin_note":   adminNote,
				"provider_ref": resp.Reference,
				"processed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvalidStateTransition
		}
		if err := finalizeWithdrawalEntry(tx, w.OrderID); err != nil {
			return err
		}
		if err := tx.Model(&models.Account{}).
			Where("user_id = ?", w.UserID).
			Update("total_withdrawn_paise", gorm.Expr("total_withdrawn_paise + ?", w.AmountPaise)).Error; err != nil {
			return err
		}
		var fresh models.WithdrawalRequest
		if err := tx.First(&fresh, w.ID).Error; err != nil {
			return err
		}
		req = &fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// refundingTransition implements the shared cancel/reject path: conditional
// status flip, compensating credit for the held amount, and finalization of
// the paired withdrawal entry, all in one transaction.
func (s *WithdrawalService) refundingTransition(requestID, userID uint, fromStatuses []string, toStatus, refundDescription, adminNote string) (*models.WithdrawalRequest, error) {
	var req *models.WithdrawalRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		w, err := lockRequest(tx, requestID, userID)
		if err != nil {
			return err
		}
		now := time.Now()
		res := tx.Model(&models.WithdrawalRequest{}).
			Where("id = ? AND status IN ?", w.ID, fromStatuses).
			Updates(map[string]interface{}{
				"status":          toStatus,
				"admin_note":      adminNote,
				"processed_at":    now,
				"pending_user_id": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvalidStateTransition
		}
		if _, err := s.ledger.CreditTx(tx, w.UserID, w.AmountPaise, domain.EntryKindCredit,
			refundDescription, w.OrderID); err != nil {
			return err
		}
		if err := finalizeWithdrawalEntry(tx, w.OrderID); err != nil {
			return err
		}
		var fresh models.WithdrawalRequest
		if err := tx.First(&fresh, w.ID).Error; err != nil {
			return err
		}
		req = &fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// lockRequest loads a request inside the transaction, optionally scoped to an
// owner. userID 0 means an administrative caller.
func lockRequest(tx *gorm.DB, requestID, userID uint) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	if err := tx.First(&w, requestID).Error; err != nil {
		return nil, err
	}
	if userID != 0 && w.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &w, nil
}

// finalizeWithdrawalEntry closes the PENDING withdrawal-kind entry paired with
// the request. Completed entries are immutable; this status flip is the single
// sanctioned exception.
func finalizeWithdrawalEntry(tx *gorm.DB, orderID string) error {
	return tx.Model(&models.LedgerEntry{}).
		Where("reference_id = ? AND kind = ? AND status = ?",
			orderID, domain.EntryKindWithdrawal, domain.EntryStatusPending).
		Update("status", domain.EntryStatusCompleted).Error
}
