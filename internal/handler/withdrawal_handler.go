package handler

import (
	"net/http"
	"strconv"

	"taskpay/internal/domain"
	"taskpay/internal/middleware"
	"taskpay/internal/money"
	"taskpay/internal/repository"
	"taskpay/internal/service"

	"github.com/gin-gonic/gin"
)

type WithdrawalHandler struct {
	withdrawalSvc  *service.WithdrawalService
	withdrawalRepo *repository.WithdrawalRepository
}

func NewWithdrawalHandler(withdrawalSvc *service.WithdrawalService, withdrawalRepo *repository.WithdrawalRepository) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalSvc: withdrawalSvc, withdrawalRepo: withdrawalRepo}
}

// Create handles POST /me/withdraw. Amount is a decimal rupee string.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Amount         string `json:"amount" binding:"required"`
		PaymentMethod  string `json:"payment_method" binding:"required,oneof=UPI BANK WALLET"`
		PaymentDetails string `json:"payment_details" binding:"required"`
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
	w, err := h.withdrawalSvc.Create(userID, amountPaise, req.PaymentMethod, req.PaymentDetails)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":             w.ID,
		"order_id":       w.OrderID,
		"amount":         money.FormatRupees(w.AmountPaise),
		"payment_method": w.PaymentMethod,
		"status":         w.Status,
		"created_at":     w.CreatedAt,
	})
}

// Cancel handles POST /me/withdrawals/:id/cancel. Only the owner's PENDING
// request can be cancelled; the held amount is refunded.
func (h *WithdrawalHandler) Cancel(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}
	w, err := h.withdrawalSvc.Cancel(uint(id), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     w.ID,
		"status": w.Status,
	})
}

// ListMine handles GET /me/withdrawals.
func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := parsePagination(c)
	list, err := h.withdrawalRepo.ListByUserID(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list withdrawals"})
		return
	}
	out := make([]gin.H, 0, len(list))
	for i := range list {
		w := &list[i]
		out = append(out, gin.H{
			"id":             w.ID,
			"order_id":       w.OrderID,
			"amount":         money.FormatRupees(w.AmountPaise),
			"payment_method": w.PaymentMethod,
			"status":         w.Status,
			"created_at":     w.CreatedAt,
			"processed_at":   w.ProcessedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": out})
}
