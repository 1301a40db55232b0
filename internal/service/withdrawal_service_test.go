package service

import (
	"context"
	"errors"
	"testing"

	"taskpay/internal/domain"
	"taskpay/internal/models"
	"taskpay/pkg/payout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWithdrawal_CreateHoldsFunds(t *testing.T) {
	// GIVEN: a balance of 500.00
	// WHEN: requesting a 200.00 withdrawal
	// THEN: balance drops to 300.00 and a PENDING request + PENDING entry exist
	env := newTestEnv(t)
	u := env.user(t, "alice")
	_, err := env.ledger.Credit(u.ID, 50000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	req, err := env.withdrawals.Create(u.ID, 20000, domain.PaymentMethodUPI, "alice@upi")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusPending, req.Status)
	assert.Equal(t, int64(20000), req.AmountPaise)
	assert.NotEmpty(t, req.OrderID)
	assert.Equal(t, int64(30000), env.balance(t, u.ID))

	entries, err := env.ledgerRepo.ListByUserID(u.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	var found bool
	for _, e := range entries {
		if e.Kind == domain.EntryKindWithdrawal {
			found = true
			assert.Equal(t, domain.EntryStatusPending, e.Status)
			assert.Equal(t, req.OrderID, e.ReferenceID)
		}
	}
	assert.True(t, found)
}

func TestWithdrawal_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	_, err := env.ledger.Credit(u.ID, 50000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	_, err = env.withdrawals.Create(u.ID, -100, domain.PaymentMethodUPI, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = env.withdrawals.Create(u.ID, 20000, "CHEQUE", "x")
	assert.ErrorIs(t, err, ErrUnsupportedPaymentMethod)

	// default floor is 100.00
	_, err = env.withdrawals.Create(u.ID, 5000, domain.PaymentMethodUPI, "x")
	assert.ErrorIs(t, err, domain.ErrBelowMinimum)

	_, err = env.withdrawals.Create(u.ID, 99999999, domain.PaymentMethodUPI, "x")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, int64(50000), env.balance(t, u.ID))
}

func TestWithdrawal_OnePendingPerUser(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	_, err := env.ledger.Credit(u.ID, 50000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	_, err = env.withdrawals.Create(u.ID, 20000, domain.PaymentMethodUPI, "alice@upi")
	require.NoError(t, err)

	_, err = env.withdrawals.Create(u.ID, 10000, domain.PaymentMethodUPI, "alice@upi")
	assert.ErrorIs(t, err, domain.ErrExistingPendingRequest)
	assert.Equal(t, int64(30000), env.balance(t, u.ID))
}

func TestWithdrawal_CancelRefunds(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	_, err := env.ledger.Credit(u.ID, 50000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	req, err := env.withdrawals.Create(u.ID, 20000, domain.PaymentMethodUPI, "alice@upi")
	require.NoError(t, err)

	cancelled, err := env.withdrawals.Cancel(req.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.ProcessedAt)
	assert.Equal(t, int64(50000), env.balance(t, u.ID))

	// the hold entry is finalized and a compensating credit appended
	entries, err := env.ledgerRepo.ListByUserID(u.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, domain.EntryStatusCompleted, e.Status)
	}
	sum, err := env.ledgerRepo.SignedSum(u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), sum)

	// a new request is allowed once the previous one is terminal
	_, err = env.withdrawals.Create(u.ID, 20000, domain.PaymentMethodUPI, "alice@upi")
	require.NoError(t, err)
}

func TestWithdrawal_CancelIsOwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	mallory := env.user(t, "mallory")
	_, err := env.ledger.Credit(alice.ID, 50000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	req, err := env.withdrawals.Create(alice.ID, 20000, domain.PaymentMethodUPI, "alice@upi")
	require.NoError(t, err)

	_, err = env.withdrawals.Cancel(req.ID, mallory.ID)
	assert.Error(t, err)
	assert.Equal(t, int64(30000), env.balance(t, alice.ID))
}

func TestWithdrawal_ApproveThenComplete(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	_, err := env.ledger.Credit(u.ID, 50000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	req, err := env.withdrawals.Create(u.ID, 20000, domain.PaymentMethodUPI, "alice@upi")
	require.NoError(t, err)

	approved, err := env.withdrawals.Approve(req.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusApproved, approved.Status)
	assert.Equal(t, "looks good", approved.AdminNote)

	// cancel is only legal from PENDING
	_, err = env.withdrawals.Cancel(req.ID, u.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	completed, err := env.withdrawals.Complete(context.Background(), req.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusCompleted, completed.Status)
	assert.NotEmpty(t, completed.ProviderRef)
	assert.NotNil(t, completed.ProcessedAt)

	// funds stay out, lifetime withdrawn total is bumped, entry finalized
	acct, err := env.accountRepo.GetByUserID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), acct.BalancePaise)
	assert.Equal(t, int64(20000), acct.TotalWithdrawnPaise)

	sum, err := env.ledgerRepo.SignedSum(u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), sum)
}

func TestWithdrawal_RejectRefundsFromPendingAndApproved(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	_, err := env.ledger.Credit(u.ID, 50000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	req, err := env.withdrawals.Create(u.ID, 20000, domain.PaymentMethodUPI, "alice@upi")
	require.NoError(t, err)
	rejected, err := env.withdrawals.Reject(req.ID, "bad details")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusRejected, rejected.Status)
	assert.Equal(t, int64(50000), env.balance(t, u.ID))

	// and again from APPROVED (payout failure path)
	req2, err := env.withdrawals.Create(u.ID, 15000, domain.PaymentMethodBank, "acc-1")
	require.NoError(t, err)
	_, err = env.withdrawals.Approve(req2.ID, "")
	require.NoError(t, err)
	_, err = env.withdrawals.Reject(req2.ID, "payout bounced")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), env.balance(t, u.ID))
}

func TestWithdrawal_TerminalStatesRejectFurtherTransitions(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	_, err := env.ledger.Credit(u.ID, 50000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	req, err := env.withdrawals.Create(u.ID, 20000, domain.PaymentMethodUPI, "alice@upi")
	require.NoError(t, err)
	_, err = env.withdrawals.Cancel(req.ID, u.ID)
	require.NoError(t, err)

	_, err = env.withdrawals.Approve(req.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	_, err = env.withdrawals.Reject(req.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	_, err = env.withdrawals.Complete(context.Background(), req.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	// no double refund happened
	assert.Equal(t, int64(50000), env.balance(t, u.ID))
}

func TestWithdrawal_PendingExclusivityIsAStorageConstraint(t *testing.T) {
	// The guard is the unique index on pending_user_id, not a service check:
	// two PENDING rows for one user must be unstorable.
	env := newTestEnv(t)
	u := env.user(t, "alice")
	uid := u.ID

	require.NoError(t, env.db.Create(&models.WithdrawalRequest{
		UserID:        uid,
		OrderID:       "wd-a",
		AmountPaise:   10000,
		PaymentMethod: domain.PaymentMethodUPI,
		Status:        domain.WithdrawalStatusPending,
		PendingUserID: &uid,
	}).Error)

	err := env.db.Create(&models.WithdrawalRequest{
		UserID:        uid,
		OrderID:       "wd-b",
		AmountPaise:   10000,
		PaymentMethod: domain.PaymentMethodUPI,
		Status:        domain.WithdrawalStatusPending,
		PendingUserID: &uid,
	}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestWithdrawal_NonPendingStatusesFreeTheSlot(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	_, err := env.ledger.Credit(u.ID, 50000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	req, err := env.withdrawals.Create(u.ID, 20000, domain.PaymentMethodUPI, "alice@upi")
	require.NoError(t, err)
	_, err = env.withdrawals.Approve(req.ID, "")
	require.NoError(t, err)

	// the approved request no longer occupies the pending slot
	fresh, err := env.withdrawalRepo.GetByID(req.ID)
	require.NoError(t, err)
	assert.Nil(t, fresh.PendingUserID)
	_, err = env.withdrawals.Create(u.ID, 10000, domain.PaymentMethodUPI, "alice@upi")
	require.NoError(t, err)
}

type failingProvider struct{}

func (failingProvider) Disburse(ctx context.Context, req payout.Request) (*payout.Response, error) {
	return nil, errors.New("gateway unavailable")
}

func TestWithdrawal_FailedPayoutReleasesClaim(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	_, err := env.ledger.Credit(u.ID, 50000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	flaky := NewWithdrawalService(env.db, env.ledger, env.withdrawalRepo, env.settingRepo, failingProvider{})
	req, err := flaky.Create(u.ID, 20000, domain.PaymentMethodUPI, "alice@upi")
	require.NoError(t, err)
	_, err = flaky.Approve(req.ID, "")
	require.NoError(t, err)

	_, err = flaky.Complete(context.Background(), req.ID, "")
	require.Error(t, err)

	// claim released back to APPROVED; the request can still be rejected
	fresh, err := env.withdrawalRepo.GetByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusApproved, fresh.Status)
	_, err = flaky.Reject(req.ID, "payout bounced")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), env.balance(t, u.ID))
}

func TestWithdrawal_CompleteNeedsTheClaim(t *testing.T) {
	// a request already claimed by another completer cannot be claimed again
	env := newTestEnv(t)
	u := env.user(t, "alice")
	_, err := env.ledger.Credit(u.ID, 50000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	req, err := env.withdrawals.Create(u.ID, 20000, domain.PaymentMethodUPI, "alice@upi")
	require.NoError(t, err)
	_, err = env.withdrawals.Approve(req.ID, "")
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&models.WithdrawalRequest{}).
		Where("id = ?", req.ID).
		Update("status", domain.WithdrawalStatusProcessing).Error)

	_, err = env.withdrawals.Complete(context.Background(), req.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestWithdrawal_MinAmountIsConfigurable(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")
	_, err := env.ledger.Credit(u.ID, 50000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	require.NoError(t, env.settingRepo.Set(domain.SettingMinWithdrawalPaise, "2500"))

	_, err = env.withdrawals.Create(u.ID, 2400, domain.PaymentMethodUPI, "alice@upi")
	assert.ErrorIs(t, err, domain.ErrBelowMinimum)
	_, err = env.withdrawals.Create(u.ID, 2500, domain.PaymentMethodUPI, "alice@upi")
	require.NoError(t, err)
}
