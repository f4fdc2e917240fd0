package model

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus is the recorded result of delivering an intent.
type DeliveryStatus string

const (
	DeliveryPending      DeliveryStatus = "pending"
	DeliveryDelivered    DeliveryStatus = "delivered"
	DeliveryNoTarget     DeliveryStatus = "no_target"
	DeliveryDeadLettered DeliveryStatus = "dead_lettered"
	DeliverySkipped      DeliveryStatus = "skipped"
)

// Dispatch marks one reminder occurrence as handed to the pipeline.
type Dispatch struct {
	ReminderID     uuid.UUID      `json:"reminder_id"`
	OccurrenceKey  string         `json:"occurrence_key"`
	OccurrenceAt   time.Time      `json:"occurrence_at"`
	IntentID       uuid.UUID      `json:"intent_id"`
	DispatchedAt   time.Time      `json:"dispatched_at"`
	PublishedAt    *time.Time     `json:"published_at,omitempty"`
	DeliveryStatus DeliveryStatus `json:"delivery_status"`
	Attempts       int            `json:"attempts"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty"`
	LastError      string         `json:"last_error,omitempty"`
}

// DeliveryOutcome is what the processor reports after handling an intent.
type DeliveryOutcome struct {
	IntentID uuid.UUID
	Status   DeliveryStatus
	Attempts int
	Error    string
	At       time.Time
}
