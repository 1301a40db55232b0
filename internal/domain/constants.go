package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	UserStatusActive  = "ACTIVE"
	UserStatusDeleted = "DELETED"
)

// Ledger entry kinds. Debit-side kinds reduce the balance; everything else adds.
const (
	EntryKindCredit     = "CREDIT"
	EntryKindDebit      = "DEBIT"
	EntryKindBonus      = "BONUS"
	EntryKindCommission = "REFERRAL_COMMISSION"
	EntryKindWithdrawal = "WITHDRAWAL"
)

const (
	EntryStatusPending   = "PENDING"
	EntryStatusCompleted = "COMPLETED"
	EntryStatusFailed    = "FAILED"
)

const (
	WithdrawalStatusPending    = "PENDING"
	WithdrawalStatusApproved   = "APPROVED"
	WithdrawalStatusProcessing = "PROCESSING"
	WithdrawalStatusCompleted  = "COMPLETED"
	WithdrawalStatusRejected   = "REJECTED"
	WithdrawalStatusCancelled  = "CANCELLED"
)

const (
	PaymentMethodUPI    = "UPI"
	PaymentMethodBank   = "BANK"
	PaymentMethodWallet = "WALLET"
)

const (
	ReferralStatusPending = "PENDING"
	ReferralStatusActive  = "ACTIVE"
)

// MaxUplineLevels bounds the commission cascade walk.
const MaxUplineLevels = 3

// System setting keys. Values are strings; services parse with fallbacks.
const (
	SettingMinWithdrawalPaise = "min_withdrawal_paise"
	SettingCommissionRateL1   = "commission_rate_l1"
	SettingCommissionRateL2   = "commission_rate_l2"
	SettingCommissionRateL3   = "commission_rate_l3"
	SettingReferralMilestones = "referral_milestones"
)

// Setting defaults, used when the row is absent or unparsable.
const (
	DefaultMinWithdrawalPaise = int64(10000) // INR 100
	DefaultCommissionRateL1   = "0.10"
	DefaultCommissionRateL2   = "0.05"
	DefaultCommissionRateL3   = "0.02"
	// count:bonus_paise pairs, ordered by count
	DefaultReferralMilestones = "5:50000,10:100000,25:250000,50:1000000,100:2500000"
)

func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodUPI, PaymentMethodBank, PaymentMethodWallet:
		return true
	}
	return false
}

func IsTerminalWithdrawalStatus(s string) bool {
	switch s {
	case WithdrawalStatusCompleted, WithdrawalStatusRejected, WithdrawalStatusCancelled:
		return true
	}
	return false
}
