package service

import (
	"testing"

	"taskpay/internal/domain"
	"taskpay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascade_PaysThreeLevels(t *testing.T) {
	// GIVEN: l3 referred l2, l2 referred l1, l1 referred the earner; all ACTIVE
	// WHEN: the earner earns 100.00
	// THEN: l1 gets 10.00, l2 gets 5.00, l3 gets 2.00
	env := newTestEnv(t)
	earner := env.user(t, "earner")
	l1 := env.user(t, "l1")
	l2 := env.user(t, "l2")
	l3 := env.user(t, "l3")
	env.edge(t, l1.ID, earner.ID, domain.ReferralStatusActive)
	env.edge(t, l2.ID, l1.ID, domain.ReferralStatusActive)
	env.edge(t, l3.ID, l2.ID, domain.ReferralStatusActive)

	require.NoError(t, env.commissions.OnQualifyingEarning("evt-1", earner.ID, 10000))

	assert.Equal(t, int64(1000), env.balance(t, l1.ID))
	assert.Equal(t, int64(500), env.balance(t, l2.ID))
	assert.Equal(t, int64(200), env.balance(t, l3.ID))

	var records []models.CommissionRecord
	require.NoError(t, env.db.Where("source_event_id = ?", "evt-1").Order("level").Find(&records).Error)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, i+1, r.Level)
		assert.Equal(t, earner.ID, r.EarningUserID)
	}
}

func TestCascade_ReplayIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	earner := env.user(t, "earner")
	l1 := env.user(t, "l1")
	env.edge(t, l1.ID, earner.ID, domain.ReferralStatusActive)

	require.NoError(t, env.commissions.OnQualifyingEarning("evt-1", earner.ID, 10000))
	require.NoError(t, env.commissions.OnQualifyingEarning("evt-1", earner.ID, 10000))
	require.NoError(t, env.commissions.OnQualifyingEarning("evt-1", earner.ID, 10000))

	assert.Equal(t, int64(1000), env.balance(t, l1.ID))
	var count int64
	require.NoError(t, env.db.Model(&models.CommissionRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCascade_DistinctEventsPaySeparately(t *testing.T) {
	env := newTestEnv(t)
	earner := env.user(t, "earner")
	l1 := env.user(t, "l1")
	env.edge(t, l1.ID, earner.ID, domain.ReferralStatusActive)

	require.NoError(t, env.commissions.OnQualifyingEarning("evt-1", earner.ID, 10000))
	require.NoError(t, env.commissions.OnQualifyingEarning("evt-2", earner.ID, 10000))

	assert.Equal(t, int64(2000), env.balance(t, l1.ID))
}

func TestCascade_SkipsInactiveEdgeLevels(t *testing.T) {
	// The earner's own edge is still PENDING, so level 1 is withheld, but l1's
	// edge up to l2 is ACTIVE and level 2 pays normally.
	env := newTestEnv(t)
	earner := env.user(t, "earner")
	l1 := env.user(t, "l1")
	l2 := env.user(t, "l2")
	env.edge(t, l1.ID, earner.ID, domain.ReferralStatusPending)
	env.edge(t, l2.ID, l1.ID, domain.ReferralStatusActive)

	require.NoError(t, env.commissions.OnQualifyingEarning("evt-1", earner.ID, 10000))

	acct, err := env.accountRepo.GetByUserID(l1.ID)
	if err == nil {
		assert.Equal(t, int64(0), acct.BalancePaise)
	}
	assert.Equal(t, int64(500), env.balance(t, l2.ID))
}

func TestCascade_SkipsDeletedBeneficiaries(t *testing.T) {
	env := newTestEnv(t)
	earner := env.user(t, "earner")
	l1 := env.user(t, "l1")
	l2 := env.user(t, "l2")
	env.edge(t, l1.ID, earner.ID, domain.ReferralStatusActive)
	env.edge(t, l2.ID, l1.ID, domain.ReferralStatusActive)
	require.NoError(t, env.db.Model(&models.User{}).
		Where("id = ?", l1.ID).
		Update("status", domain.UserStatusDeleted).Error)

	require.NoError(t, env.commissions.OnQualifyingEarning("evt-1", earner.ID, 10000))

	acct, err := env.accountRepo.GetByUserID(l1.ID)
	if err == nil {
		assert.Equal(t, int64(0), acct.BalancePaise)
	}
	assert.Equal(t, int64(500), env.balance(t, l2.ID))
}

func TestCascade_CorruptedGraphPaysIntactPrefix(t *testing.T) {
	// a <-> b is a corrupted two-node cycle; level 1 still pays, the walk stops
	// before revisiting a node, and the cascade does not error.
	env := newTestEnv(t)
	a := env.user(t, "a")
	b := env.user(t, "b")
	env.edge(t, b.ID, a.ID, domain.ReferralStatusActive)
	env.edge(t, a.ID, b.ID, domain.ReferralStatusActive)

	require.NoError(t, env.commissions.OnQualifyingEarning("evt-1", a.ID, 10000))
	assert.Equal(t, int64(1000), env.balance(t, b.ID))
}

func TestCascade_RejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	earner := env.user(t, "earner")

	assert.Error(t, env.commissions.OnQualifyingEarning("", earner.ID, 10000))
	assert.ErrorIs(t, env.commissions.OnQualifyingEarning("evt-1", earner.ID, 0), domain.ErrInvalidAmount)
	assert.ErrorIs(t, env.commissions.OnQualifyingEarning("evt-1", earner.ID, -500), domain.ErrInvalidAmount)
}

func TestCascade_RatesAreConfigurable(t *testing.T) {
	env := newTestEnv(t)
	earner := env.user(t, "earner")
	l1 := env.user(t, "l1")
	env.edge(t, l1.ID, earner.ID, domain.ReferralStatusActive)

	require.NoError(t, env.settingRepo.Set(domain.SettingCommissionRateL1, "0.25"))

	require.NoError(t, env.commissions.OnQualifyingEarning("evt-1", earner.ID, 10000))
	assert.Equal(t, int64(2500), env.balance(t, l1.ID))
}

func TestCascade_NoUplineIsANoOp(t *testing.T) {
	env := newTestEnv(t)
	earner := env.user(t, "root")

	require.NoError(t, env.commissions.OnQualifyingEarning("evt-1", earner.ID, 10000))
	var count int64
	require.NoError(t, env.db.Model(&models.CommissionRecord{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
