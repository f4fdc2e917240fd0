package reminder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/medreminder/internal/api/dto"
	"github.com/aliskhannn/medreminder/internal/config"
	mocks "github.com/aliskhannn/medreminder/internal/mocks/api/handlers/reminder"
	"github.com/aliskhannn/medreminder/internal/model"
	reminderrepo "github.com/aliskhannn/medreminder/internal/repository/reminder"
	remindersvc "github.com/aliskhannn/medreminder/internal/service/reminder"
)

func setupHandler(t *testing.T) (*Handler, *mocks.MockreminderService, *config.Config) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockreminderService(ctrl)
	cfg := &config.Config{Retry: retry.Strategy{}}
	handler := NewHandler(mockService, validator.New(), cfg)
	return handler, mockService, cfg
}

func newContext(method, path string, body interface{}, id string) (*gin.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, &buf)
	if id != "" {
		c.Params = gin.Params{{Key: "id", Value: id}}
	}

	return c, w
}

func TestHandler_Create_Success(t *testing.T) {
	handler, mockService, cfg := setupHandler(t)

	req := dto.CreateReminderRequest{
		UserID:         uuid.NewString(),
		MedicationName: "Lisinopril",
		Dosage:         "10mg",
		Recurrence:     "daily",
		TimeOfDay:      "09:00",
		Timezone:       "Europe/Berlin",
	}
	c, w := newContext(http.MethodPost, "/api/reminders", req, "")

	id := uuid.New()
	mockService.EXPECT().
		CreateReminder(gomock.Any(), cfg.Retry, gomock.AssignableToTypeOf(model.Reminder{})).
		DoAndReturn(func(_ interface{}, _ retry.Strategy, r model.Reminder) (uuid.UUID, error) {
			assert.Equal(t, "Lisinopril", r.MedicationName)
			assert.Equal(t, model.RecurrenceDaily, r.Recurrence)
			assert.Equal(t, model.StatusPending, r.Status)
			return id, nil
		})

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
}

func TestHandler_Create_ValidationError(t *testing.T) {
	handler, _, _ := setupHandler(t)

	c, w := newContext(http.MethodPost, "/api/reminders", dto.CreateReminderRequest{
		UserID:         "not-a-uuid",
		MedicationName: "Lisinopril",
		Recurrence:     "weekly",
		Timezone:       "UTC",
	}, "")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Create_InvalidSchedule(t *testing.T) {
	handler, mockService, cfg := setupHandler(t)

	c, w := newContext(http.MethodPost, "/api/reminders", dto.CreateReminderRequest{
		UserID:         uuid.NewString(),
		MedicationName: "Lisinopril",
		Recurrence:     "daily",
		TimeOfDay:      "25:00",
		Timezone:       "UTC",
	}, "")

	mockService.EXPECT().
		CreateReminder(gomock.Any(), cfg.Retry, gomock.Any()).
		Return(uuid.Nil, fmt.Errorf("%w: bad time of day", remindersvc.ErrInvalidSchedule))

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Create_BadBody(t *testing.T) {
	handler, _, _ := setupHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/reminders", bytes.NewBufferString("{"))

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetStatus_Success(t *testing.T) {
	handler, mockService, cfg := setupHandler(t)
	id := uuid.New()
	c, w := newContext(http.MethodGet, "/api/reminders/"+id.String()+"/status", nil, id.String())

	mockService.EXPECT().
		GetReminderStatus(gomock.Any(), cfg.Retry, id).
		Return(model.StatusDispatched, nil)

	handler.GetStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"result":"dispatched"}`, w.Body.String())
}

func TestHandler_Get_NotFound(t *testing.T) {
	handler, mockService, _ := setupHandler(t)
	id := uuid.New()
	c, w := newContext(http.MethodGet, "/api/reminders/"+id.String(), nil, id.String())

	mockService.EXPECT().
		GetReminder(gomock.Any(), id).
		Return(model.Reminder{}, fmt.Errorf("get reminder: %w", reminderrepo.ErrReminderNotFound))

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Get_InvalidID(t *testing.T) {
	handler, _, _ := setupHandler(t)

	for _, id := range []string{"abc", uuid.Nil.String()} {
		c, w := newContext(http.MethodGet, "/api/reminders/"+id, nil, id)
		handler.Get(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
	}
}

func TestHandler_Cancel_Success(t *testing.T) {
	handler, mockService, cfg := setupHandler(t)
	id := uuid.New()
	c, w := newContext(http.MethodDelete, "/api/reminders/"+id.String(), nil, id.String())

	mockService.EXPECT().Cancel(gomock.Any(), cfg.Retry, id).Return(nil)

	handler.Cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_Cancel_InternalError(t *testing.T) {
	handler, mockService, cfg := setupHandler(t)
	id := uuid.New()
	c, w := newContext(http.MethodDelete, "/api/reminders/"+id.String(), nil, id.String())

	mockService.EXPECT().Cancel(gomock.Any(), cfg.Retry, id).Return(errors.New("db down"))

	handler.Cancel(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestHandler_Acknowledge_Cancelled(t *testing.T) {
	handler, mockService, cfg := setupHandler(t)
	id := uuid.New()
	c, w := newContext(http.MethodPost, "/api/reminders/"+id.String()+"/acknowledge", nil, id.String())

	mockService.EXPECT().Acknowledge(gomock.Any(), cfg.Retry, id).Return(remindersvc.ErrReminderCanceled)

	handler.Acknowledge(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_Reschedule_Success(t *testing.T) {
	handler, mockService, cfg := setupHandler(t)
	id := uuid.New()
	c, w := newContext(http.MethodPut, "/api/reminders/"+id.String()+"/schedule", dto.RescheduleRequest{
		Recurrence: "custom",
		CronExpr:   "0 8,20 * * *",
		Timezone:   "UTC",
	}, id.String())

	mockService.EXPECT().
		Reschedule(gomock.Any(), cfg.Retry, id, model.Schedule{
			Recurrence: model.RecurrenceCustom,
			CronExpr:   "0 8,20 * * *",
			Timezone:   "UTC",
		}).
		Return(nil)

	handler.Reschedule(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_ListDispatches(t *testing.T) {
	handler, mockService, _ := setupHandler(t)
	id := uuid.New()
	c, w := newContext(http.MethodGet, "/api/reminders/"+id.String()+"/dispatches?limit=5", nil, id.String())

	mockService.EXPECT().
		ListDispatches(gomock.Any(), id, 5).
		Return([]model.Dispatch{{ReminderID: id, OccurrenceKey: "d:2026-03-02T09:00:00Z", DeliveryStatus: model.DeliveryDelivered}}, nil)

	handler.ListDispatches(c)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Result []model.Dispatch `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Result, 1)
	assert.Equal(t, model.DeliveryDelivered, body.Result[0].DeliveryStatus)
}

func TestHandler_ListDispatches_InvalidLimit(t *testing.T) {
	handler, _, _ := setupHandler(t)
	id := uuid.New()
	c, w := newContext(http.MethodGet, "/api/reminders/"+id.String()+"/dispatches?limit=-1", nil, id.String())

	handler.ListDispatches(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
