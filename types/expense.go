package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single cost recorded on a trip. Amount may be absent and
// ParticipantID is nil for unattributed expenses.
type Expense struct {
	ID            int64            `json:"id"`
	TripID        int64            `json:"tripId"`
	ParticipantID *int64           `json:"participantId"`
	Title         string           `json:"title"`
	Amount        *decimal.Decimal `json:"amount"`
	Currency      string           `json:"currency"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// AmountOrZero returns the recorded amount, or zero when none was recorded.
func (e Expense) AmountOrZero() decimal.Decimal {
	if e.Amount == nil {
		return decimal.Zero
	}
	return *e.Amount
}
