package model

import (
	"time"

	"github.com/google/uuid"
)

// Payload is the message body pushed to the patient's devices.
type Payload struct {
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	MedicationName string    `json:"medication_name"`
	ReminderID     uuid.UUID `json:"reminder_id"`
	OccurrenceAt   time.Time `json:"occurrence_at"`
}

// Intent is a request to deliver one reminder occurrence to a user.
//
// ID is derived from ReminderID and OccurrenceKey, so the same occurrence
// always produces the same intent.
type Intent struct {
	ID               uuid.UUID `json:"id"`
	ReminderID       uuid.UUID `json:"reminder_id"`
	UserID           uuid.UUID `json:"user_id"`
	OccurrenceKey    string    `json:"occurrence_key"`
	OccurrenceAt     time.Time `json:"occurrence_at"`
	Payload          Payload   `json:"payload"`
	CreatedAt        time.Time `json:"created_at"`
	DeliveryAttempts int       `json:"delivery_attempts"`
}
