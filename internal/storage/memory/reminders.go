// Package memory holds in-process stores with the same conditional-write
// semantics as the Postgres repositories, for pipeline tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/medreminder/internal/model"
	"github.com/aliskhannn/medreminder/internal/repository/reminder"
)

type dispatchKey struct {
	reminderID    uuid.UUID
	occurrenceKey string
}

type dispatchRow struct {
	model.Dispatch
	intent model.Intent
}

// ReminderStore keeps reminders and their dispatch markers in memory.
type ReminderStore struct {
	mu         sync.Mutex
	reminders  map[uuid.UUID]model.Reminder
	dispatches map[dispatchKey]*dispatchRow
	byIntent   map[uuid.UUID]*dispatchRow
}

// NewReminderStore creates an empty store.
func NewReminderStore() *ReminderStore {
	return &ReminderStore{
		reminders:  make(map[uuid.UUID]model.Reminder),
		dispatches: make(map[dispatchKey]*dispatchRow),
		byIntent:   make(map[uuid.UUID]*dispatchRow),
	}
}

// Put inserts or replaces a reminder. A nil ID is replaced with a new one.
func (s *ReminderStore) Put(r model.Reminder) model.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = model.StatusPending
	}
	s.reminders[r.ID] = r

	return r
}

// GetReminderStatusByID returns the status of a reminder.
func (s *ReminderStore) GetReminderStatusByID(_ context.Context, id uuid.UUID) (model.ReminderStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok {
		return "", reminder.ErrReminderNotFound
	}

	return r.Status, nil
}

// UpdateStatus sets the status of a reminder.
func (s *ReminderStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.ReminderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok {
		return reminder.ErrReminderNotFound
	}
	r.Status = status
	s.reminders[id] = r

	return nil
}

// ListDueCandidates mirrors the Postgres candidate filter.
func (s *ReminderStore) ListDueCandidates(_ context.Context, windowEnd time.Time) ([]model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Reminder
	for _, r := range s.reminders {
		if r.Status == model.StatusCancelled {
			continue
		}
		if r.Recurrence == model.RecurrenceNone &&
			(r.Status != model.StatusPending || r.ScheduledAt == nil || !r.ScheduledAt.Before(windowEnd)) {
			continue
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })

	return out, nil
}

// MarkDispatched inserts the dispatch marker unless it already exists.
func (s *ReminderStore) MarkDispatched(_ context.Context, in model.Intent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dispatchKey{reminderID: in.ReminderID, occurrenceKey: in.OccurrenceKey}
	if _, ok := s.dispatches[key]; ok {
		return false, nil
	}

	r, ok := s.reminders[in.ReminderID]
	if !ok {
		return false, nil
	}

	row := &dispatchRow{
		Dispatch: model.Dispatch{
			ReminderID:     in.ReminderID,
			OccurrenceKey:  in.OccurrenceKey,
			OccurrenceAt:   in.OccurrenceAt,
			IntentID:       in.ID,
			DispatchedAt:   in.CreatedAt,
			DeliveryStatus: model.DeliveryPending,
		},
		intent: in,
	}
	s.dispatches[key] = row
	s.byIntent[in.ID] = row

	if r.LastDispatchedAt == nil || in.OccurrenceAt.After(*r.LastDispatchedAt) {
		at := in.OccurrenceAt
		r.LastDispatchedAt = &at
	}
	if r.Status != model.StatusCancelled {
		r.Status = model.StatusDispatched
	}
	s.reminders[r.ID] = r

	return true, nil
}

// MarkPublished records that the intent reached the fan-out channel.
func (s *ReminderStore) MarkPublished(_ context.Context, intentID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.byIntent[intentID]
	if !ok {
		return reminder.ErrDispatchNotFound
	}
	row.PublishedAt = &at

	return nil
}

// ListUnpublished returns intents dispatched before olderThan that were
// never published.
func (s *ReminderStore) ListUnpublished(_ context.Context, olderThan time.Time, limit int) ([]model.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Intent
	for _, row := range s.byIntent {
		if row.PublishedAt == nil && row.DispatchedAt.Before(olderThan) {
			out = append(out, row.intent)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

// RecordOutcome stores the delivery result of an intent.
func (s *ReminderStore) RecordOutcome(_ context.Context, o model.DeliveryOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.byIntent[o.IntentID]
	if !ok {
		return reminder.ErrDispatchNotFound
	}

	row.DeliveryStatus = o.Status
	if o.Attempts > row.Attempts {
		row.Attempts = o.Attempts
	}
	row.LastError = o.Error
	if o.Status == model.DeliveryDelivered {
		at := o.At
		row.DeliveredAt = &at
	}

	return nil
}

// Dispatches returns a snapshot of every dispatch marker.
func (s *ReminderStore) Dispatches() []model.Dispatch {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Dispatch, 0, len(s.byIntent))
	for _, row := range s.byIntent {
		out = append(out, row.Dispatch)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].OccurrenceAt.Before(out[j].OccurrenceAt) })

	return out
}
