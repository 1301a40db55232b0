package handler

import (
	"net/http"
	"strconv"

	"taskpay/internal/money"
	"taskpay/internal/repository"
	"taskpay/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	withdrawalSvc  *service.WithdrawalService
	withdrawalRepo *repository.WithdrawalRepository
	settingRepo    *repository.SettingRepository
}

func NewAdminHandler(
	withdrawalSvc *service.WithdrawalService,
	withdrawalRepo *repository.WithdrawalRepository,
	settingRepo *repository.SettingRepository,
) *AdminHandler {
	return &AdminHandler{
		withdrawalSvc:  withdrawalSvc,
		withdrawalRepo: withdrawalRepo,
		settingRepo:    settingRepo,
	}
}

// ListWithdrawals handles GET /admin/withdrawals?status=PENDING.
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	status := c.Query("status")
	limit, offset := parsePagination(c)
	list, err := h.withdrawalRepo.ListByStatus(status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list withdrawals"})
		return
	}
	out := make([]gin.H, 0, len(list))
	for i := range list {
		w := &list[i]
		out = append(out, gin.H{
			"id":              w.ID,
			"user_id":         w.UserID,
			"order_id":        w.OrderID,
			"amount":          money.FormatRupees(w.AmountPaise),
			"payment_method":  w.PaymentMethod,
			"payment_details": w.PaymentDetails,
			"status":          w.Status,
			"admin_note":      w.AdminNote,
			"created_at":      w.CreatedAt,
			"processed_at":    w.ProcessedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": out})
}

// Approve handles POST /admin/withdrawals/:id/approve.
func (h *AdminHandler) Approve(c *gin.Context) {
	h.transition(c, func(id uint, note string) (interface{}, error) {
		return h.withdrawalSvc.Approve(id, note)
	})
}

// Complete handles POST /admin/withdrawals/:id/complete: runs the payout and
// finalizes the request.
func (h *AdminHandler) Complete(c *gin.Context) {
	h.transition(c, func(id uint, note string) (interface{}, error) {
		return h.withdrawalSvc.Complete(c.Request.Context(), id, note)
	})
}

// Reject handles POST /admin/withdrawals/:id/reject, refunding the held amount.
func (h *AdminHandler) Reject(c *gin.Context) {
	h.transition(c, func(id uint, note string) (interface{}, error) {
		return h.withdrawalSvc.Reject(id, note)
	})
}

func (h *AdminHandler) transition(c *gin.Context, fn func(id uint, note string) (interface{}, error)) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}
	var req struct {
		AdminNote string `json:"admin_note"`
	}
	_ = c.ShouldBindJSON(&req) // body is optional

	w, err := fn(uint(id), req.AdminNote)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

// GetSettings handles GET /admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	list, err := h.settingRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": list})
}

// UpdateSetting handles PUT /admin/settings.
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req struct {
		Key   string `json:"key" binding:"required"`
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settingRepo.Set(req.Key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": req.Key, "value": req.Value})
}
