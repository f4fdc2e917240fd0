package model

import (
	"time"

	"github.com/google/uuid"
)

// Recurrence describes how often a reminder fires.
type Recurrence string

const (
	RecurrenceNone   Recurrence = "none"   // fires once at ScheduledAt
	RecurrenceDaily  Recurrence = "daily"  // fires every day at TimeOfDay
	RecurrenceCustom Recurrence = "custom" // fires on CronExpr
)

// ReminderStatus is the lifecycle state of a reminder.
type ReminderStatus string

const (
	StatusPending      ReminderStatus = "pending"
	StatusDispatched   ReminderStatus = "dispatched"
	StatusAcknowledged ReminderStatus = "acknowledged"
	StatusCancelled    ReminderStatus = "cancelled"
)

// Reminder represents a medication reminder owned by a single user.
type Reminder struct {
	ID               uuid.UUID      `json:"id"`
	UserID           uuid.UUID      `json:"user_id"`
	MedicationName   string         `json:"medication_name"`
	Dosage           string         `json:"dosage,omitempty"`
	Recurrence       Recurrence     `json:"recurrence"`
	ScheduledAt      *time.Time     `json:"scheduled_at,omitempty"` // used by RecurrenceNone
	TimeOfDay        string         `json:"time_of_day,omitempty"`  // "HH:MM", used by RecurrenceDaily
	CronExpr         string         `json:"cron_expr,omitempty"`    // 5-field cron, used by RecurrenceCustom
	Timezone         string         `json:"timezone"`               // IANA name
	LastDispatchedAt *time.Time     `json:"last_dispatched_at,omitempty"`
	Status           ReminderStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Schedule is the part of a reminder that decides when it fires.
type Schedule struct {
	Recurrence  Recurrence
	ScheduledAt *time.Time
	TimeOfDay   string
	CronExpr    string
	Timezone    string
}

// Schedule returns the scheduling fields of the reminder.
func (r Reminder) Schedule() Schedule {
	return Schedule{
		Recurrence:  r.Recurrence,
		ScheduledAt: r.ScheduledAt,
		TimeOfDay:   r.TimeOfDay,
		CronExpr:    r.CronExpr,
		Timezone:    r.Timezone,
	}
}
