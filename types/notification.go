package types

import (
	"encoding/json"
	"time"
)

// OutboxKindTripSummaryEmail tags outbox rows carrying a SummaryEmailJob.
const OutboxKindTripSummaryEmail = "trip_summary_email"

// SummaryEmailJob asks the notification queue to mail a trip summary to one participant.
type SummaryEmailJob struct {
	RecipientEmail string      `json:"recipientEmail"`
	RecipientName  string      `json:"recipientName"`
	TripSummary    TripSummary `json:"tripSummary"`
}

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSent    OutboxStatus = "SENT"
	OutboxStatusFailed  OutboxStatus = "FAILED"
)

// OutboxMessage is a row of the notification outbox.
type OutboxMessage struct {
	ID            int64           `json:"id"`
	Kind          string          `json:"kind"`
	TripID        int64           `json:"tripId"`
	Payload       json.RawMessage `json:"payload"`
	Status        OutboxStatus    `json:"status"`
	Attempts      int             `json:"attempts"`
	NextAttemptAt time.Time       `json:"nextAttemptAt"`
	LastError     *string         `json:"lastError,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// OutboxInsert is the data needed to enqueue one outbox row.
type OutboxInsert struct {
	Kind    string
	TripID  int64
	Payload json.RawMessage
}
