package payout

import (
	"context"
	"fmt"
	"time"
)

// StubProvider is a no-op provider for development; replace with a real
// UPI/bank/wallet integration.
type StubProvider struct{}

func (s *StubProvider) Disburse(ctx context.Context, req Request) (*Response, error) {
	return &Response{
		Reference: fmt.Sprintf("stub_%d_%d", time.Now().UnixNano(), req.UserID),
		Status:    "ACCEPTED",
	}, nil
}
