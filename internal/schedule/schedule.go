// Package schedule computes reminder occurrences and scan windows.
//
// All occurrences are evaluated in the reminder's own timezone and returned
// in UTC.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/aliskhannn/medreminder/internal/model"
)

var (
	ErrUnknownRecurrence = errors.New("unknown recurrence")
	ErrInvalidTimeOfDay  = errors.New("invalid time of day")
	ErrMissingSchedule   = errors.New("missing scheduled time")
)

// intentNamespace seeds deterministic intent ids.
var intentNamespace = uuid.MustParse("6f1c2b0e-7d43-4c55-9a0e-3d1f7b2a9c11")

// Window returns the half-open scan window [start, end) for a scan at now.
//
// The window is aligned to interval and widened backwards by lookback so
// that an occurrence missed by one late invocation is still picked up by the
// next one.
func Window(now time.Time, interval, lookback time.Duration) (time.Time, time.Time) {
	floor := now.UTC().Truncate(interval)
	return floor.Add(-lookback), floor.Add(interval)
}

// Validate checks that the schedule can produce occurrences.
func Validate(s model.Schedule) error {
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}

	switch s.Recurrence {
	case model.RecurrenceNone:
		if s.ScheduledAt == nil {
			return ErrMissingSchedule
		}
	case model.RecurrenceDaily:
		if _, _, err := parseTimeOfDay(s.TimeOfDay); err != nil {
			return err
		}
	case model.RecurrenceCustom:
		if _, err := cron.ParseStandard(s.CronExpr); err != nil {
			return fmt.Errorf("parse cron %q: %w", s.CronExpr, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRecurrence, s.Recurrence)
	}

	return nil
}

// Occurrences returns every occurrence of s within [start, end), in UTC and
// in ascending order. A one-off occurrence before start is still returned:
// it was missed and its dispatch marker guards against a second fire.
func Occurrences(s model.Schedule, start, end time.Time) ([]time.Time, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}

	switch s.Recurrence {
	case model.RecurrenceNone:
		if s.ScheduledAt == nil {
			return nil, ErrMissingSchedule
		}
		at := s.ScheduledAt.UTC().Truncate(time.Minute)
		if at.Before(end) {
			return []time.Time{at}, nil
		}
		return nil, nil

	case model.RecurrenceDaily:
		hh, mm, err := parseTimeOfDay(s.TimeOfDay)
		if err != nil {
			return nil, err
		}

		var out []time.Time
		first := start.In(loc).AddDate(0, 0, -1)
		last := end.In(loc).AddDate(0, 0, 1)
		for d := dateOf(first, loc); !d.After(last); d = d.AddDate(0, 0, 1) {
			at := time.Date(d.Year(), d.Month(), d.Day(), hh, mm, 0, 0, loc).UTC()
			if within(at, start, end) {
				out = append(out, at)
			}
		}
		return out, nil

	case model.RecurrenceCustom:
		sched, err := cron.ParseStandard(s.CronExpr)
		if err != nil {
			return nil, fmt.Errorf("parse cron %q: %w", s.CronExpr, err)
		}

		var out []time.Time
		for t := sched.Next(start.In(loc).Add(-time.Nanosecond)); !t.IsZero() && t.Before(end); t = sched.Next(t) {
			out = append(out, t.UTC())
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownRecurrence, s.Recurrence)
}

// Due returns the occurrences of r inside the scan window that are not in
// the future and were not already covered by r.LastDispatchedAt.
func Due(r model.Reminder, now, start, end time.Time) ([]time.Time, error) {
	all, err := Occurrences(r.Schedule(), start, end)
	if err != nil {
		return nil, err
	}

	due := all[:0]
	for _, at := range all {
		if at.After(now) {
			continue
		}
		if r.LastDispatchedAt != nil && !at.After(r.LastDispatchedAt.UTC()) {
			continue
		}
		due = append(due, at)
	}

	return due, nil
}

// OccurrenceKey identifies one occurrence of a reminder.
//
// The key carries the recurrence kind and the occurrence instant at minute
// precision, so rescheduling to a different time yields a different key.
func OccurrenceKey(rec model.Recurrence, at time.Time) string {
	var prefix string
	switch rec {
	case model.RecurrenceDaily:
		prefix = "d"
	case model.RecurrenceCustom:
		prefix = "c"
	default:
		prefix = "o"
	}

	return prefix + ":" + at.UTC().Truncate(time.Minute).Format(time.RFC3339)
}

// IntentID derives the intent id for an occurrence.
func IntentID(reminderID uuid.UUID, occurrenceKey string) uuid.UUID {
	return uuid.NewSHA1(intentNamespace, []byte(reminderID.String()+"/"+occurrenceKey))
}

// NewIntent builds the notification intent for one occurrence of r.
func NewIntent(r model.Reminder, at, now time.Time) model.Intent {
	key := OccurrenceKey(r.Recurrence, at)

	body := fmt.Sprintf("Time to take %s", r.MedicationName)
	if r.Dosage != "" {
		body = fmt.Sprintf("Time to take %s (%s)", r.MedicationName, r.Dosage)
	}

	return model.Intent{
		ID:            IntentID(r.ID, key),
		ReminderID:    r.ID,
		UserID:        r.UserID,
		OccurrenceKey: key,
		OccurrenceAt:  at.UTC(),
		Payload: model.Payload{
			Type:           "medication_reminder",
			Title:          "Medication reminder",
			Body:           body,
			MedicationName: r.MedicationName,
			ReminderID:     r.ID,
			OccurrenceAt:   at.UTC(),
		},
		CreatedAt: now.UTC(),
	}
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func parseTimeOfDay(s string) (int, int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return t.Hour(), t.Minute(), nil
}
