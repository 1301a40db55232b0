package service

import (
	"testing"

	"taskpay/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_CreditCreatesAccountAndEntry(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")

	entry, err := env.ledger.Credit(u.ID, 15000, domain.EntryKindCredit, "task earning", "evt-1")
	require.NoError(t, err)

	assert.Equal(t, domain.EntryKindCredit, entry.Kind)
	assert.Equal(t, domain.EntryStatusCompleted, entry.Status)
	assert.Equal(t, int64(15000), entry.AmountPaise)
	assert.Equal(t, int64(15000), entry.BalanceAfterPaise)
	assert.Equal(t, "evt-1", entry.ReferenceID)

	acct, err := env.accountRepo.GetByUserID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), acct.BalancePaise)
	assert.Equal(t, int64(15000), acct.TotalEarnedPaise)
}

func TestLedger_RejectsNonPositiveAmounts(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")

	_, err := env.ledger.Credit(u.ID, 0, domain.EntryKindCredit, "zero", "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = env.ledger.Credit(u.ID, -500, domain.EntryKindCredit, "negative", "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = env.ledger.Debit(u.ID, 0, domain.EntryKindDebit, "zero", "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestLedger_DebitInsufficientBalanceLeavesNoTrace(t *testing.T) {
	// GIVEN: a balance of 50.00
	// WHEN: debiting 100.00
	// THEN: the debit fails atomically, balance and ledger untouched
	env := newTestEnv(t)
	u := env.user(t, "alice")

	_, err := env.ledger.Credit(u.ID, 5000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	_, err = env.ledger.Debit(u.ID, 10000, domain.EntryKindDebit, "too much", "")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	assert.Equal(t, int64(5000), env.balance(t, u.ID))
	entries, err := env.ledgerRepo.ListByUserID(u.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLedger_DebitToExactlyZeroSucceeds(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")

	_, err := env.ledger.Credit(u.ID, 5000, domain.EntryKindCredit, "seed", "")
	require.NoError(t, err)

	entry, err := env.ledger.Debit(u.ID, 5000, domain.EntryKindDebit, "drain", "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), entry.BalanceAfterPaise)
	assert.Equal(t, int64(0), env.balance(t, u.ID))
}

func TestLedger_SignedSumMatchesBalance(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")

	_, err := env.ledger.Credit(u.ID, 10000, domain.EntryKindCredit, "a", "")
	require.NoError(t, err)
	_, err = env.ledger.Credit(u.ID, 2500, domain.EntryKindBonus, "b", "")
	require.NoError(t, err)
	_, err = env.ledger.Debit(u.ID, 4000, domain.EntryKindDebit, "c", "")
	require.NoError(t, err)

	sum, err := env.ledgerRepo.SignedSum(u.ID)
	require.NoError(t, err)
	assert.Equal(t, env.balance(t, u.ID), sum)
	assert.Equal(t, int64(8500), sum)
}

func TestLedger_DebitForMissingAccountFails(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")

	_, err := env.ledger.Debit(u.ID, 100, domain.EntryKindDebit, "no account yet", "")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}
