package service

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"taskpay/internal/domain"
	"taskpay/internal/models"
	"taskpay/internal/repository"

	"gorm.io/gorm"
)

// Milestone is one row of the referral bonus table.
type Milestone struct {
	Threshold  int
	BonusPaise int64
}

// MilestoneService pays one-time bonuses when a user's direct referral count
// crosses configured thresholds. The unique constraint on
// (user_id, threshold) makes concurrent or repeated evaluation a no-op.
type MilestoneService struct {
	db           *gorm.DB
	ledger       *LedgerService
	referralRepo *repository.ReferralRepository
	settingRepo  *repository.SettingRepository
}

func NewMilestoneService(
	db *gorm.DB,
	ledger *LedgerService,
	referralRepo *repository.ReferralRepository,
	settingRepo *repository.SettingRepository,
) *MilestoneService {
	return &MilestoneService{db: db, ledger: ledger, referralRepo: referralRepo, settingRepo: settingRepo}
}

// CheckMilestones awards every threshold at or below the user's current direct
// referral count that hasn't been paid yet. Award row and bonus credit land in
// one transaction; a duplicate award means "already paid" and is skipped.
func (s *MilestoneService) CheckMilestones(userID uint) error {
	count, err := s.referralRepo.CountDirectReferrals(userID)
	if err != nil {
		return err
	}
	for _, m := range s.milestoneTable() {
		if int64(m.Threshold) > count {
			break
		}
		m := m
		err := s.db.Transaction(func(tx *gorm.DB) error {
			award := &models.MilestoneAward{
				UserID:     userID,
				Threshold:  m.Threshold,
				BonusPaise: m.BonusPaise,
			}
			if err := tx.Create(award).Error; err != nil {
				return err
			}
			_, err := s.ledger.CreditTx(tx, userID, m.BonusPaise, domain.EntryKindBonus,
				fmt.Sprintf("referral milestone bonus (%d referrals)", m.Threshold), "")
			return err
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return err
		}
		log.Printf("[milestone] user %d awarded bonus for %d referrals", userID, m.Threshold)
	}
	return nil
}

// milestoneTable parses the configured "count:bonus_paise,..." table, falling
// back to the compiled-in defaults when the setting is absent or malformed.
func (s *MilestoneService) milestoneTable() []Milestone {
	raw, err := s.settingRepo.Get(domain.SettingReferralMilestones)
	if err != nil || raw == "" {
		raw = domain.DefaultReferralMilestones
	}
	table := parseMilestones(raw)
	if len(table) == 0 {
		table = parseMilestones(domain.DefaultReferralMilestones)
	}
	return table
}

func parseMilestones(raw string) []Milestone {
	var table []Milestone
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			continue
		}
		threshold, err1 := strconv.Atoi(parts[0])
		bonus, err2 := strconv.ParseInt(parts[1], 10, 64)
		if err1 != nil || err2 != nil || threshold <= 0 || bonus <= 0 {
			continue
		}
		table = append(table, Milestone{Threshold: threshold, BonusPaise: bonus})
	}
	sort.Slice(table, func(i, j int) bool { return table[i].Threshold < table[j].Threshold })
	return table
}
