package types

import "time"

// TripStatus is the closure state of a trip. A trip is CLOSED once archived.
type TripStatus string

const (
	TripStatusOpen   TripStatus = "OPEN"
	TripStatusClosed TripStatus = "CLOSED"
)

// IsValidTransition reports whether a trip may move from s to next.
// The only legal transition is OPEN -> CLOSED.
func (s TripStatus) IsValidTransition(next TripStatus) bool {
	return s == TripStatusOpen && next == TripStatusClosed
}

// Trip is a group trip whose expenses are settled between its participants.
type Trip struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Destination *string    `json:"destination,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	IsArchived  bool       `json:"isArchived"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Status derives the state machine position from the archived flag.
func (t Trip) Status() TripStatus {
	if t.IsArchived {
		return TripStatusClosed
	}
	return TripStatusOpen
}

// TripSnapshot is a trip together with its non-archived participants and
// expenses, read in one consistent pass.
type TripSnapshot struct {
	Trip         Trip          `json:"trip"`
	Participants []Participant `json:"participants"`
	Expenses     []Expense     `json:"expenses"`
}
