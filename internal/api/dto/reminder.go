package dto

import (
	"time"

	"github.com/aliskhannn/medreminder/internal/model"
)

type CreateReminderRequest struct {
	UserID         string     `json:"user_id" validate:"required,uuid"`
	MedicationName string     `json:"medication_name" validate:"required,max=200"`
	Dosage         string     `json:"dosage" validate:"max=100"`
	Recurrence     string     `json:"recurrence" validate:"required,oneof=none daily custom"`
	ScheduledAt    *time.Time `json:"scheduled_at"`
	TimeOfDay      string     `json:"time_of_day"`
	CronExpr       string     `json:"cron_expr"`
	Timezone       string     `json:"timezone" validate:"required"`
}

type RescheduleRequest struct {
	Recurrence  string     `json:"recurrence" validate:"required,oneof=none daily custom"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	TimeOfDay   string     `json:"time_of_day"`
	CronExpr    string     `json:"cron_expr"`
	Timezone    string     `json:"timezone" validate:"required"`
}

func (r RescheduleRequest) Schedule() model.Schedule {
	return model.Schedule{
		Recurrence:  model.Recurrence(r.Recurrence),
		ScheduledAt: r.ScheduledAt,
		TimeOfDay:   r.TimeOfDay,
		CronExpr:    r.CronExpr,
		Timezone:    r.Timezone,
	}
}

type RedriveRequest struct {
	Limit int `json:"limit" validate:"min=0,max=10000"`
}
