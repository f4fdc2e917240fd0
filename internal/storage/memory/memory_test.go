package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/medreminder/internal/model"
	"github.com/aliskhannn/medreminder/internal/repository/reminder"
)

func TestReminderStore_MarkDispatchedOnce(t *testing.T) {
	s := NewReminderStore()
	r := s.Put(model.Reminder{UserID: uuid.New(), Recurrence: model.RecurrenceDaily, TimeOfDay: "09:00", Timezone: "UTC"})

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	in := model.Intent{ID: uuid.New(), ReminderID: r.ID, OccurrenceKey: "d:1", OccurrenceAt: at, CreatedAt: at}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.MarkDispatched(context.Background(), in)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)

	status, err := s.GetReminderStatusByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDispatched, status)
}

func TestReminderStore_Outbox(t *testing.T) {
	s := NewReminderStore()
	r := s.Put(model.Reminder{Recurrence: model.RecurrenceDaily, TimeOfDay: "09:00", Timezone: "UTC"})

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	in := model.Intent{ID: uuid.New(), ReminderID: r.ID, OccurrenceKey: "d:1", OccurrenceAt: at, CreatedAt: at}
	_, err := s.MarkDispatched(context.Background(), in)
	require.NoError(t, err)

	pending, err := s.ListUnpublished(context.Background(), at.Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, s.MarkPublished(context.Background(), in.ID, at))

	pending, err = s.ListUnpublished(context.Background(), at.Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, s.MarkPublished(context.Background(), uuid.New(), at), reminder.ErrDispatchNotFound)
}

func TestReminderStore_CandidatesSkipCancelledAndDoneOneOffs(t *testing.T) {
	s := NewReminderStore()
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	s.Put(model.Reminder{Recurrence: model.RecurrenceDaily, Status: model.StatusCancelled})
	s.Put(model.Reminder{Recurrence: model.RecurrenceNone, ScheduledAt: &at, Status: model.StatusDispatched})
	keep := s.Put(model.Reminder{Recurrence: model.RecurrenceNone, ScheduledAt: &at})

	got, err := s.ListDueCandidates(context.Background(), at.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, keep.ID, got[0].ID)
}

func TestConnectionRegistry(t *testing.T) {
	reg := NewConnectionRegistry()
	ctx := context.Background()
	user := uuid.New()

	require.NoError(t, reg.RecordConnect(ctx, model.Connection{ConnectionID: "a", UserID: user, GatewayAddr: "gw1"}))
	require.NoError(t, reg.RecordConnect(ctx, model.Connection{ConnectionID: "b", UserID: user, GatewayAddr: "gw2"}))

	conns, err := reg.ListConnectionsForUser(ctx, user)
	require.NoError(t, err)
	assert.Len(t, conns, 2)

	require.NoError(t, reg.RemoveConnection(ctx, "a"))
	require.NoError(t, reg.RemoveConnection(ctx, "a"))

	n, err := reg.RemoveByGateway(ctx, "gw2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	conns, err = reg.ListConnectionsForUser(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, conns)
}
