package payout

import "context"

// Request describes a disbursement to a user's payout destination.
type Request struct {
	OrderID     string // unique withdrawal order id, doubles as idempotency key
	UserID      uint
	AmountPaise int64
	Currency    string
	Method      string // UPI, BANK, WALLET
	Details     string // method-specific payload (VPA, account number, wallet id)
	Description string
}

type Response struct {
	Reference string
	Status    string
}

// Provider executes payouts. The withdrawal service only finalizes a request
// after the provider accepts the disbursement.
type Provider interface {
	Disburse(ctx context.Context, req Request) (*Response, error)
}
