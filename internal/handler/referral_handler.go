package handler

import (
	"net/http"

	"taskpay/internal/middleware"
	"taskpay/internal/service"

	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	referralSvc *service.ReferralService
}

func NewReferralHandler(referralSvc *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralSvc: referralSvc}
}

// GetMyReferralCode returns the authenticated user's referral code, creating one if it doesn't exist yet.
// GET /me/referral-code
func (h *ReferralHandler) GetMyReferralCode(c *gin.Context) {
	userID := middleware.GetUserID(c)
	rc, err := h.referralSvc.MyCode(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get referral code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":       rc.Code,
		"is_active":  rc.IsActive,
		"created_at": rc.CreatedAt,
	})
}

// GetMyReferrals returns the user's direct referrals and total network size.
// GET /me/referrals
func (h *ReferralHandler) GetMyReferrals(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := parsePagination(c)

	referrals, err := h.referralSvc.ListDirect(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list referrals"})
		return
	}
	networkSize, err := h.referralSvc.NetworkSize(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute network size"})
		return
	}

	out := make([]gin.H, 0, len(referrals))
	for i := range referrals {
		edge := &referrals[i]
		out = append(out, gin.H{
			"referred_user": gin.H{
				"username": edge.ReferredUser.Username,
			},
			"status":     edge.Status,
			"created_at": edge.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"referrals":    out,
		"network_size": networkSize,
	})
}
