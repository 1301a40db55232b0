package handler

import (
	"net/http"

	"taskpay/internal/middleware"
	"taskpay/internal/money"
	"taskpay/internal/repository"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	accountRepo *repository.AccountRepository
	ledgerRepo  *repository.LedgerRepository
}

func NewWalletHandler(accountRepo *repository.AccountRepository, ledgerRepo *repository.LedgerRepository) *WalletHandler {
	return &WalletHandler{accountRepo: accountRepo, ledgerRepo: ledgerRepo}
}

// GetBalance returns the current user's balance and lifetime totals.
// GET /me/wallet
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	a, err := h.accountRepo.GetOrCreate(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":         money.FormatRupees(a.BalancePaise),
		"balance_paise":   a.BalancePaise,
		"total_earned":    money.FormatRupees(a.TotalEarnedPaise),
		"total_withdrawn": money.FormatRupees(a.TotalWithdrawnPaise),
		"currency":        a.Currency,
	})
}

// GetTransactions returns the user's ledger history, newest first.
// GET /me/wallet/transactions
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := parsePagination(c)
	entries, err := h.ledgerRepo.ListByUserID(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list transactions"})
		return
	}
	out := make([]gin.H, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		out = append(out, gin.H{
			"id":            e.ID,
			"kind":          e.Kind,
			"amount":        money.FormatRupees(e.SignedPaise()),
			"balance_after": money.FormatRupees(e.BalanceAfterPaise),
			"description":   e.Description,
			"reference_id":  e.ReferenceID,
			"status":        e.Status,
			"created_at":    e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}
