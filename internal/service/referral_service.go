package service

import (
	"errors"
	"log"

	"taskpay/internal/domain"
	"taskpay/internal/models"
	"taskpay/internal/repository"

	"gorm.io/gorm"
)

// UplineEntry is one step of the bounded referrer walk. EdgeStatus is the
// status of the edge traversed to reach this referrer; the cascade skips
// levels whose edge hasn't been activated yet.
type UplineEntry struct {
	Level      int
	ReferrerID uint
	EdgeStatus string
}

// ReferralService owns the referral graph: codes, edge registration and
// activation, and the bounded upline/downline traversals.
type ReferralService struct {
	referralRepo *repository.ReferralRepository
	milestones   *MilestoneService
}

func NewReferralService(referralRepo *repository.ReferralRepository, milestones *MilestoneService) *ReferralService {
	return &ReferralService{referralRepo: referralRepo, milestones: milestones}
}

// MyCode returns the user's invite code, creating one on first access.
func (s *ReferralService) MyCode(userID uint) (*models.ReferralCode, error) {
	return s.referralRepo.GetOrCreateCode(userID)
}

// Register links a newly signed-up user to the owner of the supplied referral
// code. Failures are logged, never fatal: a bad code must not break signup.
func (s *ReferralService) Register(referralCode string, newUserID uint) {
	if referralCode == "" {
		return
	}
	rc, err := s.referralRepo.GetByCode(referralCode)
	if err != nil || rc == nil {
		return
	}
	if rc.UserID == newUserID {
		log.Printf("[referral] user %d tried to refer themselves, ignoring", newUserID)
		return
	}
	edge := &models.ReferralEdge{
		ReferrerID:     rc.UserID,
		ReferredUserID: newUserID,
		Status:         domain.ReferralStatusPending,
	}
	if err := s.referralRepo.CreateEdge(edge); err != nil {
		log.Printf("[referral] failed to create edge %d -> %d: %v", newUserID, rc.UserID, err)
		return
	}
	if err := s.milestones.CheckMilestones(rc.UserID); err != nil {
		log.Printf("[referral] milestone check for user %d failed: %v", rc.UserID, err)
	}
}

// Activate marks the user's own edge ACTIVE on their first qualifying action
// and re-evaluates the referrer's milestones. A no-op for root users and for
// already-active edges.
func (s *ReferralService) Activate(userID uint) error {
	changed, err := s.referralRepo.ActivateEdge(userID)
	if err != nil || !changed {
		return err
	}
	edge, err := s.referralRepo.GetEdgeByReferredUserID(userID)
	if err != nil {
		return err
	}
	if err := s.milestones.CheckMilestones(edge.ReferrerID); err != nil {
		log.Printf("[referral] milestone check for user %d failed: %v", edge.ReferrerID, err)
	}
	return nil
}

// Upline walks from the user's direct referrer upward, stopping at maxLevel or
// at a root user. A node seen twice means the graph is corrupted: the walk is
// truncated and ErrCycleDetected returned alongside the partial result.
func (s *ReferralService) Upline(userID uint, maxLevel int) ([]UplineEntry, error) {
	if maxLevel <= 0 || maxLevel > domain.MaxUplineLevels {
		maxLevel = domain.MaxUplineLevels
	}
	visited := map[uint]bool{userID: true}
	var upline []UplineEntry
	current := userID
	for level := 1; level <= maxLevel; level++ {
		edge, err := s.referralRepo.GetEdgeByReferredUserID(current)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return upline, nil
		}
		if err != nil {
			return upline, err
		}
		if visited[edge.ReferrerID] {
			log.Printf("[referral] cycle detected walking upline of user %d at user %d", userID, edge.ReferrerID)
			return upline, domain.ErrCycleDetected
		}
		visited[edge.ReferrerID] = true
		upline = append(upline, UplineEntry{Level: level, ReferrerID: edge.ReferrerID, EdgeStatus: edge.Status})
		current = edge.ReferrerID
	}
	return upline, nil
}

// NetworkSize counts all direct and indirect referrals of a user. The visited
// set makes the traversal terminate even on a corrupted (cyclic) graph.
func (s *ReferralService) NetworkSize(userID uint) (int64, error) {
	visited := map[uint]bool{userID: true}
	frontier := []uint{userID}
	var total int64
	for len(frontier) > 0 {
		children, err := s.referralRepo.ChildIDs(frontier)
		if err != nil {
			return total, err
		}
		frontier = frontier[:0]
		for _, id := range children {
			if visited[id] {
				continue
			}
			visited[id] = true
			total++
			frontier = append(frontier, id)
		}
	}
	return total, nil
}

// ListDirect returns the user's direct referrals for the dashboard.
func (s *ReferralService) ListDirect(userID uint, limit, offset int) ([]models.ReferralEdge, error) {
	return s.referralRepo.ListByReferrerID(userID, limit, offset)
}
