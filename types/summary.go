package types

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Monetary amounts are part of the public JSON contract as numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ParticipantExpense is one participant's spending in the reference currency.
type ParticipantExpense struct {
	ParticipantID int64           `json:"participantId"`
	Name          string          `json:"name"`
	Surname       string          `json:"surname"`
	Email         *string         `json:"email"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	ExpenseCount  int             `json:"expenseCount"`
}

// FullName matches Participant.FullName.
func (pe ParticipantExpense) FullName() string {
	return displayName(pe.Name, pe.Surname)
}

// Payment is a single transfer of the settlement plan.
type Payment struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// TripSummary is the settlement of a trip. TotalExpenses, TotalSpent and
// payment amounts are in ReferenceCurrency; ExpensesByCurrency keeps the
// original, unconverted amounts keyed by currency code.
type TripSummary struct {
	TripID              int64                      `json:"tripId"`
	TripTitle           string                     `json:"tripTitle"`
	Destination         *string                    `json:"destination,omitempty"`
	StartDate           *time.Time                 `json:"startDate,omitempty"`
	EndDate             *time.Time                 `json:"endDate,omitempty"`
	ReferenceCurrency   string                     `json:"referenceCurrency"`
	TotalExpenses       decimal.Decimal            `json:"totalExpenses"`
	ExpensesByCurrency  map[string]decimal.Decimal `json:"expensesByCurrency"`
	ParticipantExpenses []ParticipantExpense       `json:"participantExpenses"`
	PaymentSummary      []Payment                  `json:"paymentSummary"`
}

// TripCloseResult is returned after a trip has been closed.
type TripCloseResult struct {
	Message    string       `json:"message"`
	EmailsSent int          `json:"emailsSent"`
	Summary    *TripSummary `json:"summary"`
}

// ReportLink points at an archived settlement report.
type ReportLink struct {
	TripID    int64     `json:"tripId"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
