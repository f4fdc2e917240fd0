package dlq

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	mocks "github.com/aliskhannn/medreminder/internal/mocks/api/handlers/dlq"
	"github.com/aliskhannn/medreminder/internal/model"
	"github.com/aliskhannn/medreminder/internal/queue"
)

func setupHandler(t *testing.T) (*Handler, *mocks.MockdeadLetterQueue) {
	ctrl := gomock.NewController(t)
	q := mocks.NewMockdeadLetterQueue(ctrl)
	return NewHandler(q, validator.New()), q
}

func newContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	return c, w
}

func TestHandler_List(t *testing.T) {
	handler, q := setupHandler(t)
	c, w := newContext(http.MethodGet, "/api/dlq?limit=2", "")

	q.EXPECT().DeadLetters(gomock.Any(), 2).Return([]queue.DeadLetter{
		{Intent: model.Intent{ID: uuid.New()}, Reason: queue.ReasonMaxReceives, ReceiveCount: 3},
	}, nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), queue.ReasonMaxReceives)
}

func TestHandler_List_Empty(t *testing.T) {
	handler, q := setupHandler(t)
	c, w := newContext(http.MethodGet, "/api/dlq", "")

	q.EXPECT().DeadLetters(gomock.Any(), defaultLimit).Return(nil, nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"result":[]}`, w.Body.String())
}

func TestHandler_List_InvalidLimit(t *testing.T) {
	handler, _ := setupHandler(t)
	c, w := newContext(http.MethodGet, "/api/dlq?limit=x", "")

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Stats(t *testing.T) {
	handler, q := setupHandler(t)
	c, w := newContext(http.MethodGet, "/api/dlq/stats", "")

	q.EXPECT().DeadLetterStats(gomock.Any()).Return(queue.Stats{Depth: 4, OldestAge: 90 * time.Second}, nil)

	handler.Stats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"result":{"depth":4,"oldest_age_seconds":90}}`, w.Body.String())
}

func TestHandler_Stats_Error(t *testing.T) {
	handler, q := setupHandler(t)
	c, w := newContext(http.MethodGet, "/api/dlq/stats", "")

	q.EXPECT().DeadLetterStats(gomock.Any()).Return(queue.Stats{}, errors.New("broker down"))

	handler.Stats(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_Redrive(t *testing.T) {
	handler, q := setupHandler(t)
	c, w := newContext(http.MethodPost, "/api/dlq/redrive", `{"limit":10}`)

	q.EXPECT().Redrive(gomock.Any(), 10).Return(3, nil)

	handler.Redrive(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"result":{"redriven":3}}`, w.Body.String())
}

func TestHandler_Redrive_EmptyBodyRedrivesAll(t *testing.T) {
	handler, q := setupHandler(t)
	c, w := newContext(http.MethodPost, "/api/dlq/redrive", "")

	q.EXPECT().Redrive(gomock.Any(), 0).Return(7, nil)

	handler.Redrive(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_Redrive_InvalidLimit(t *testing.T) {
	handler, _ := setupHandler(t)
	c, w := newContext(http.MethodPost, "/api/dlq/redrive", `{"limit":-1}`)

	handler.Redrive(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
