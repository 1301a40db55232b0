package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskpay/config"
	"taskpay/internal/database"
	"taskpay/internal/domain"
	"taskpay/internal/repository"
	"taskpay/internal/router"
	"taskpay/pkg/payout"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db, cfg.Admin.Email, cfg.Admin.Password)

	settingRepo := repository.NewSettingRepository(db)
	if err := settingRepo.SeedDefaults(map[string]string{
		domain.SettingMinWithdrawalPaise: fmt.Sprintf("%d", domain.DefaultMinWithdrawalPaise),
		domain.SettingCommissionRateL1:   domain.DefaultCommissionRateL1,
		domain.SettingCommissionRateL2:   domain.DefaultCommissionRateL2,
		domain.SettingCommissionRateL3:   domain.DefaultCommissionRateL3,
		domain.SettingReferralMilestones: domain.DefaultReferralMilestones,
	}); err != nil {
		log.Fatalf("seed settings: %v", err)
	}

	engine := router.Setup(cfg, db, &payout.StubProvider{})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
