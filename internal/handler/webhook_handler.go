package handler

import (
	"log"
	"net/http"

	"taskpay/internal/domain"
	"taskpay/internal/money"
	"taskpay/internal/service"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives events from collaborator services: the task workflow
// (qualifying earnings) and the reward generator (e.g. spin wheel credits).
type WebhookHandler struct {
	earningSvc *service.EarningService
	ledgerSvc  *service.LedgerService
}

func NewWebhookHandler(earningSvc *service.EarningService, ledgerSvc *service.LedgerService) *WebhookHandler {
	return &WebhookHandler{earningSvc: earningSvc, ledgerSvc: ledgerSvc}
}

// TaskEarning handles POST /webhooks/task-earning: one completed, monetarily
// valued task. Delivery is at-least-once; a replayed event_id re-runs the
// idempotent pipeline without crediting the earner again.
func (h *WebhookHandler) TaskEarning(c *gin.Context) {
	var req struct {
		EventID string `json:"event_id" binding:"required"`
		UserID  uint   `json:"user_id" binding:"required"`
		Amount  string `json:"amount" binding:"required"`
		Title   string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amountPaise, err := money.ParseRupees(req.Amount)
	if err != nil || amountPaise <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidAmount.Error()})
		return
	}

	desc := "task earning"
	if req.Title != "" {
		desc = "task earning: " + req.Title
	}
	credited, err := h.earningSvc.Process(req.EventID, req.UserID, amountPaise, desc)
	if err != nil {
		log.Printf("[webhook] earning %s for user %d: %v", req.EventID, req.UserID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "processed",
		"event_id": req.EventID,
		"credited": credited,
	})
}

// Reward handles POST /webhooks/reward: the reward generator emits an amount
// to credit; probabilities and reward tables live entirely in the collaborator.
func (h *WebhookHandler) Reward(c *gin.Context) {
	var req struct {
		UserID      uint   `json:"user_id" binding:"required"`
		Amount      string `json:"amount" binding:"required"`
		Kind        string `json:"kind" binding:"omitempty,oneof=CREDIT BONUS"`
		Reference   string `json:"reference"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amountPaise, err := money.ParseRupees(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidAmount.Error()})
		return
	}
	kind := req.Kind
	if kind == "" {
		kind = domain.EntryKindBonus
	}
	desc := req.Description
	if desc == "" {
		desc = "reward credit"
	}
	entry, err := h.ledgerSvc.Credit(req.UserID, amountPaise, kind, desc, req.Reference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entry_id":      entry.ID,
		"balance_after": money.FormatRupees(entry.BalanceAfterPaise),
	})
}
