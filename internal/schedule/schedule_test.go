package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/medreminder/internal/model"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestWindow(t *testing.T) {
	now := mustTime(t, "2026-03-02T09:00:30Z")

	start, end := Window(now, time.Minute, time.Minute)

	assert.Equal(t, mustTime(t, "2026-03-02T08:59:00Z"), start)
	assert.Equal(t, mustTime(t, "2026-03-02T09:01:00Z"), end)
}

func TestOccurrences_Daily(t *testing.T) {
	s := model.Schedule{Recurrence: model.RecurrenceDaily, TimeOfDay: "09:00", Timezone: "UTC"}

	got, err := Occurrences(s, mustTime(t, "2026-03-02T08:59:00Z"), mustTime(t, "2026-03-02T09:01:00Z"))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{mustTime(t, "2026-03-02T09:00:00Z")}, got)

	got, err = Occurrences(s, mustTime(t, "2026-03-02T09:01:00Z"), mustTime(t, "2026-03-02T09:02:00Z"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOccurrences_DailyInTimezone(t *testing.T) {
	s := model.Schedule{Recurrence: model.RecurrenceDaily, TimeOfDay: "09:00", Timezone: "Europe/Moscow"}

	got, err := Occurrences(s, mustTime(t, "2026-03-02T05:59:00Z"), mustTime(t, "2026-03-02T06:01:00Z"))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{mustTime(t, "2026-03-02T06:00:00Z")}, got)
}

func TestOccurrences_DailyAcrossDays(t *testing.T) {
	s := model.Schedule{Recurrence: model.RecurrenceDaily, TimeOfDay: "23:30", Timezone: "UTC"}

	got, err := Occurrences(s, mustTime(t, "2026-03-01T00:00:00Z"), mustTime(t, "2026-03-04T00:00:00Z"))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, mustTime(t, "2026-03-01T23:30:00Z"), got[0])
	assert.Equal(t, mustTime(t, "2026-03-03T23:30:00Z"), got[2])
}

func TestOccurrences_None(t *testing.T) {
	at := mustTime(t, "2026-03-02T09:00:00Z")
	s := model.Schedule{Recurrence: model.RecurrenceNone, ScheduledAt: &at, Timezone: "UTC"}

	got, err := Occurrences(s, mustTime(t, "2026-03-02T08:59:00Z"), mustTime(t, "2026-03-02T09:01:00Z"))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{at}, got)

	got, err = Occurrences(s, mustTime(t, "2026-03-02T08:58:00Z"), mustTime(t, "2026-03-02T09:00:00Z"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOccurrences_NoneMissedBeforeWindow(t *testing.T) {
	at := mustTime(t, "2026-03-02T08:50:00Z")
	s := model.Schedule{Recurrence: model.RecurrenceNone, ScheduledAt: &at, Timezone: "UTC"}

	got, err := Occurrences(s, mustTime(t, "2026-03-02T08:59:00Z"), mustTime(t, "2026-03-02T09:01:00Z"))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{at}, got)
}

func TestOccurrences_Custom(t *testing.T) {
	s := model.Schedule{Recurrence: model.RecurrenceCustom, CronExpr: "*/15 * * * *", Timezone: "UTC"}

	got, err := Occurrences(s, mustTime(t, "2026-03-02T09:00:00Z"), mustTime(t, "2026-03-02T10:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		mustTime(t, "2026-03-02T09:00:00Z"),
		mustTime(t, "2026-03-02T09:15:00Z"),
		mustTime(t, "2026-03-02T09:30:00Z"),
		mustTime(t, "2026-03-02T09:45:00Z"),
	}, got)
}

func TestOccurrences_InvalidTimezone(t *testing.T) {
	s := model.Schedule{Recurrence: model.RecurrenceDaily, TimeOfDay: "09:00", Timezone: "Mars/Olympus"}

	_, err := Occurrences(s, time.Now(), time.Now().Add(time.Minute))
	assert.Error(t, err)
}

func TestDue_SkipsFutureAndAlreadyDispatched(t *testing.T) {
	r := model.Reminder{
		ID:         uuid.New(),
		Recurrence: model.RecurrenceCustom,
		CronExpr:   "* * * * *",
		Timezone:   "UTC",
	}
	now := mustTime(t, "2026-03-02T09:00:30Z")
	start, end := Window(now, time.Minute, time.Minute)

	got, err := Due(r, now, start, end)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{mustTime(t, "2026-03-02T08:59:00Z"), mustTime(t, "2026-03-02T09:00:00Z")}, got)

	last := mustTime(t, "2026-03-02T08:59:00Z")
	r.LastDispatchedAt = &last

	got, err = Due(r, now, start, end)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{mustTime(t, "2026-03-02T09:00:00Z")}, got)
}

func TestValidate(t *testing.T) {
	at := time.Now()

	assert.NoError(t, Validate(model.Schedule{Recurrence: model.RecurrenceNone, ScheduledAt: &at, Timezone: "UTC"}))
	assert.ErrorIs(t, Validate(model.Schedule{Recurrence: model.RecurrenceNone, Timezone: "UTC"}), ErrMissingSchedule)
	assert.ErrorIs(t, Validate(model.Schedule{Recurrence: model.RecurrenceDaily, TimeOfDay: "25:00", Timezone: "UTC"}), ErrInvalidTimeOfDay)
	assert.Error(t, Validate(model.Schedule{Recurrence: model.RecurrenceCustom, CronExpr: "nope", Timezone: "UTC"}))
	assert.ErrorIs(t, Validate(model.Schedule{Recurrence: "weekly", Timezone: "UTC"}), ErrUnknownRecurrence)
}

func TestIntentID_Deterministic(t *testing.T) {
	id := uuid.New()
	at := mustTime(t, "2026-03-02T09:00:00Z")
	key := OccurrenceKey(model.RecurrenceDaily, at)

	assert.Equal(t, "d:2026-03-02T09:00:00Z", key)
	assert.Equal(t, IntentID(id, key), IntentID(id, key))
	assert.NotEqual(t, IntentID(id, key), IntentID(id, OccurrenceKey(model.RecurrenceDaily, at.Add(24*time.Hour))))
}

func TestNewIntent(t *testing.T) {
	r := model.Reminder{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		MedicationName: "Metformin",
		Dosage:         "500mg",
		Recurrence:     model.RecurrenceDaily,
	}
	at := mustTime(t, "2026-03-02T09:00:00Z")

	in := NewIntent(r, at, at.Add(30*time.Second))

	assert.Equal(t, r.UserID, in.UserID)
	assert.Equal(t, "Time to take Metformin (500mg)", in.Payload.Body)
	assert.Equal(t, IntentID(r.ID, in.OccurrenceKey), in.ID)
}
