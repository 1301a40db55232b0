package service

import (
	"testing"

	"taskpay/internal/database"
	"taskpay/internal/domain"
	"taskpay/internal/models"
	"taskpay/internal/repository"
	"taskpay/pkg/payout"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db             *gorm.DB
	accountRepo    *repository.AccountRepository
	ledgerRepo     *repository.LedgerRepository
	settingRepo    *repository.SettingRepository
	withdrawalRepo *repository.WithdrawalRepository
	ledger         *LedgerService
	referrals      *ReferralService
	milestones     *MilestoneService
	commissions    *CommissionService
	earnings       *EarningService
	withdrawals    *WithdrawalService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	userRepo := repository.NewUserRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	ledger := NewLedgerService(db)
	milestones := NewMilestoneService(db, ledger, referralRepo, settingRepo)
	referrals := NewReferralService(referralRepo, milestones)

	commissions := NewCommissionService(db, ledger, referrals, userRepo, settingRepo)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	return &testEnv{
		db:             db,
		accountRepo:    repository.NewAccountRepository(db),
		ledgerRepo:     repository.NewLedgerRepository(db),
		settingRepo:    settingRepo,
		withdrawalRepo: withdrawalRepo,
		ledger:         ledger,
		referrals:      referrals,
		milestones:     milestones,
		commissions:    commissions,
		earnings:       NewEarningService(db, ledger, referrals, commissions),
		withdrawals:    NewWithdrawalService(db, ledger, withdrawalRepo, settingRepo, &payout.StubProvider{}),
	}
}

func (e *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     domain.RoleUser,
		Status:   domain.UserStatusActive,
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) edge(t *testing.T, referrerID, referredID uint, status string) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.ReferralEdge{
		ReferrerID:     referrerID,
		ReferredUserID: referredID,
		Status:         status,
	}).Error)
}

func (e *testEnv) balance(t *testing.T, userID uint) int64 {
	t.Helper()
	acct, err := e.accountRepo.GetByUserID(userID)
	require.NoError(t, err)
	return acct.BalancePaise
}
