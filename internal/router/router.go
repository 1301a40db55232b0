package router

import (
	"time"

	"taskpay/config"
	"taskpay/internal/handler"
	"taskpay/internal/middleware"
	"taskpay/internal/repository"
	"taskpay/internal/service"
	"taskpay/pkg/payout"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, provider payout.Provider) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	ipLimiter := middleware.NewRateLimiter(100, time.Minute)
	r.Use(ipLimiter.Limit())

	// Repositories
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Services
	ledgerSvc := service.NewLedgerService(db)
	milestoneSvc := service.NewMilestoneService(db, ledgerSvc, referralRepo, settingRepo)
	referralSvc := service.NewReferralService(referralRepo, milestoneSvc)
	commissionSvc := service.NewCommissionService(db, ledgerSvc, referralSvc, userRepo, settingRepo)
	earningSvc := service.NewEarningService(db, ledgerSvc, referralSvc, commissionSvc)
	withdrawalSvc := service.NewWithdrawalService(db, ledgerSvc, withdrawalRepo, settingRepo, provider)
	authSvc := service.NewAuthService(cfg, userRepo, referralSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	walletHandler := handler.NewWalletHandler(accountRepo, ledgerRepo)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalSvc, withdrawalRepo)
	referralHandler := handler.NewReferralHandler(referralSvc)
	webhookHandler := handler.NewWebhookHandler(earningSvc, ledgerSvc)
	adminHandler := handler.NewAdminHandler(withdrawalSvc, withdrawalRepo, settingRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		// Wallet-touching routes are additionally limited per account, not
		// just per source address.
		userLimiter := middleware.NewRateLimiter(30, time.Minute)
		me := api.Group("/me")
		me.Use(authMw, userLimiter.Limit())
		{
			me.GET("/wallet", walletHandler.GetBalance)
			me.GET("/wallet/transactions", walletHandler.GetTransactions)
			me.POST("/withdraw", withdrawalHandler.Create)
			me.GET("/withdrawals", withdrawalHandler.ListMine)
			me.POST("/withdrawals/:id/cancel", withdrawalHandler.Cancel)
			me.GET("/referral-code", referralHandler.GetMyReferralCode)
			me.GET("/referrals", referralHandler.GetMyReferrals)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.POST("/withdrawals/:id/approve", adminHandler.Approve)
			admin.POST("/withdrawals/:id/complete", adminHandler.Complete)
			admin.POST("/withdrawals/:id/reject", adminHandler.Reject)
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSetting)
		}

		webhooks := api.Group("/webhooks")
		webhooks.Use(middleware.WebhookAuth(cfg.Webhook.Secret))
		{
			webhooks.POST("/task-earning", webhookHandler.TaskEarning)
			webhooks.POST("/reward", webhookHandler.Reward)
		}
	}

	return r
}
