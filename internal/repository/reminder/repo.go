package reminder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/medreminder/internal/model"
)

var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrDispatchNotFound = errors.New("dispatch not found")
)

const reminderColumns = `
		id, user_id, medication_name, dosage, recurrence, scheduled_at, time_of_day,
		cron_expr, timezone, last_dispatched_at, status, created_at, updated_at`

// Repository provides access to the reminders and reminder_dispatches tables.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new reminder repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (model.Reminder, error) {
	var (
		r              model.Reminder
		scheduledAt    sql.NullTime
		lastDispatched sql.NullTime
	)

	err := row.Scan(
		&r.ID, &r.UserID, &r.MedicationName, &r.Dosage, &r.Recurrence, &scheduledAt, &r.TimeOfDay,
		&r.CronExpr, &r.Timezone, &lastDispatched, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return model.Reminder{}, err
	}

	if scheduledAt.Valid {
		t := scheduledAt.Time
		r.ScheduledAt = &t
	}
	if lastDispatched.Valid {
		t := lastDispatched.Time
		r.LastDispatchedAt = &t
	}

	return r, nil
}

// CreateReminder inserts a new reminder and returns its ID.
func (r *Repository) CreateReminder(ctx context.Context, rem model.Reminder) (uuid.UUID, error) {
	query := `
		INSERT INTO reminders (
		    user_id, medication_name, dosage, recurrence, scheduled_at, time_of_day, cron_expr, timezone
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;
    `

	err := r.db.Master.QueryRowContext(
		ctx, query, rem.UserID, rem.MedicationName, rem.Dosage, rem.Recurrence,
		rem.ScheduledAt, rem.TimeOfDay, rem.CronExpr, rem.Timezone,
	).Scan(&rem.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	return rem.ID, nil
}

// GetReminderByID returns a reminder by its ID.
func (r *Repository) GetReminderByID(ctx context.Context, id uuid.UUID) (model.Reminder, error) {
	query := `
		SELECT` + reminderColumns + `
		FROM reminders
		WHERE id = $1;
    `

	rem, err := scanReminder(r.db.Master.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reminder{}, ErrReminderNotFound
		}

		return model.Reminder{}, fmt.Errorf("failed to get reminder: %w", err)
	}

	return rem, nil
}

// GetReminderStatusByID returns the status of a reminder.
func (r *Repository) GetReminderStatusByID(ctx context.Context, id uuid.UUID) (model.ReminderStatus, error) {
	query := `
		SELECT status
		FROM reminders
		WHERE id = $1;
    `

	var status model.ReminderStatus
	err := r.db.Master.QueryRowContext(ctx, query, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrReminderNotFound
		}

		return "", fmt.Errorf("failed to get reminder status: %w", err)
	}

	return status, nil
}

// UpdateStatus sets the status of a reminder.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReminderStatus) error {
	query := `
		UPDATE reminders
		SET status = $1, updated_at = now()
		WHERE id = $2;
    `

	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update reminder status: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrReminderNotFound
	}

	return nil
}

// Reschedule replaces the schedule of a non-cancelled reminder and clears
// its dispatch marker so the new schedule starts firing.
func (r *Repository) Reschedule(ctx context.Context, id uuid.UUID, s model.Schedule) error {
	query := `
		UPDATE reminders
		SET recurrence = $1, scheduled_at = $2, time_of_day = $3, cron_expr = $4, timezone = $5,
		    last_dispatched_at = NULL, status = 'pending', updated_at = now()
		WHERE id = $6 AND status <> 'cancelled';
    `

	res, err := r.db.ExecContext(ctx, query, s.Recurrence, s.ScheduledAt, s.TimeOfDay, s.CronExpr, s.Timezone, id)
	if err != nil {
		return fmt.Errorf("failed to reschedule reminder: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrReminderNotFound
	}

	return nil
}

// ListDueCandidates returns reminders that may have an occurrence before
// windowEnd. One-off reminders are returned only while still pending.
func (r *Repository) ListDueCandidates(ctx context.Context, windowEnd time.Time) ([]model.Reminder, error) {
	query := `
		SELECT` + reminderColumns + `
		FROM reminders
		WHERE status <> 'cancelled'
		  AND (recurrence <> 'none' OR (status = 'pending' AND scheduled_at < $1));
    `

	rows, err := r.db.QueryContext(ctx, query, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list due candidates: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}

		reminders = append(reminders, rem)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}

	return reminders, nil
}

// MarkDispatched records the dispatch of an intent's occurrence.
//
// The insert and the reminder update run as one statement; it reports false
// when the occurrence was already dispatched.
func (r *Repository) MarkDispatched(ctx context.Context, intent model.Intent) (bool, error) {
	query := `
		WITH inserted AS (
		    INSERT INTO reminder_dispatches (
		        reminder_id, user_id, occurrence_key, occurrence_at, intent_id, payload, dispatched_at
		    ) VALUES ($1, $2, $3, $4, $5, $6, $7)
		    ON CONFLICT (reminder_id, occurrence_key) DO NOTHING
		    RETURNING reminder_id, occurrence_at
		)
		UPDATE reminders AS r
		SET last_dispatched_at = GREATEST(COALESCE(r.last_dispatched_at, i.occurrence_at), i.occurrence_at),
		    status = CASE WHEN r.status = 'cancelled' THEN r.status ELSE 'dispatched' END,
		    updated_at = $7
		FROM inserted AS i
		WHERE r.id = i.reminder_id;
    `

	payload, err := json.Marshal(intent.Payload)
	if err != nil {
		return false, fmt.Errorf("failed to marshal payload: %w", err)
	}

	res, err := r.db.ExecContext(
		ctx, query, intent.ReminderID, intent.UserID, intent.OccurrenceKey, intent.OccurrenceAt,
		intent.ID, payload, intent.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark dispatched: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows == 1, nil
}

// MarkPublished records that the intent reached the fan-out channel.
func (r *Repository) MarkPublished(ctx context.Context, intentID uuid.UUID, at time.Time) error {
	query := `
		UPDATE reminder_dispatches
		SET published_at = $1
		WHERE intent_id = $2;
    `

	res, err := r.db.ExecContext(ctx, query, at, intentID)
	if err != nil {
		return fmt.Errorf("failed to mark published: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrDispatchNotFound
	}

	return nil
}

// ListUnpublished returns intents dispatched before olderThan that never
// reached the fan-out channel.
func (r *Repository) ListUnpublished(ctx context.Context, olderThan time.Time, limit int) ([]model.Intent, error) {
	query := `
		SELECT intent_id, reminder_id, user_id, occurrence_key, occurrence_at, payload, dispatched_at
		FROM reminder_dispatches
		WHERE published_at IS NULL AND dispatched_at < $1
		ORDER BY dispatched_at
		LIMIT $2;
    `

	rows, err := r.db.QueryContext(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpublished dispatches: %w", err)
	}
	defer rows.Close()

	var intents []model.Intent
	for rows.Next() {
		var (
			in      model.Intent
			payload []byte
		)
		if err := rows.Scan(
			&in.ID, &in.ReminderID, &in.UserID, &in.OccurrenceKey, &in.OccurrenceAt, &payload, &in.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan dispatch: %w", err)
		}

		if err := json.Unmarshal(payload, &in.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload of %s: %w", in.ID, err)
		}

		intents = append(intents, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dispatches: %w", err)
	}

	return intents, nil
}

// RecordOutcome stores the delivery result of an intent.
func (r *Repository) RecordOutcome(ctx context.Context, o model.DeliveryOutcome) error {
	query := `
		UPDATE reminder_dispatches
		SET delivery_status = $1,
		    attempts = GREATEST(attempts, $2),
		    last_error = $3,
		    delivered_at = CASE WHEN $1 = 'delivered' THEN $4 ELSE delivered_at END
		WHERE intent_id = $5;
    `

	res, err := r.db.ExecContext(ctx, query, o.Status, o.Attempts, o.Error, o.At, o.IntentID)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrDispatchNotFound
	}

	return nil
}

// ListDispatches returns the dispatch history of a reminder, newest first.
func (r *Repository) ListDispatches(ctx context.Context, reminderID uuid.UUID, limit int) ([]model.Dispatch, error) {
	query := `
		SELECT reminder_id, occurrence_key, occurrence_at, intent_id, dispatched_at, published_at,
		       delivery_status, attempts, delivered_at, last_error
		FROM reminder_dispatches
		WHERE reminder_id = $1
		ORDER BY occurrence_at DESC
		LIMIT $2;
    `

	rows, err := r.db.QueryContext(ctx, query, reminderID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispatches: %w", err)
	}
	defer rows.Close()

	var dispatches []model.Dispatch
	for rows.Next() {
		var (
			d           model.Dispatch
			publishedAt sql.NullTime
			deliveredAt sql.NullTime
		)
		if err := rows.Scan(
			&d.ReminderID, &d.OccurrenceKey, &d.OccurrenceAt, &d.IntentID, &d.DispatchedAt, &publishedAt,
			&d.DeliveryStatus, &d.Attempts, &deliveredAt, &d.LastError,
		); err != nil {
			return nil, fmt.Errorf("failed to scan dispatch: %w", err)
		}

		if publishedAt.Valid {
			t := publishedAt.Time
			d.PublishedAt = &t
		}
		if deliveredAt.Valid {
			t := deliveredAt.Time
			d.DeliveredAt = &t
		}

		dispatches = append(dispatches, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dispatches: %w", err)
	}

	return dispatches, nil
}
