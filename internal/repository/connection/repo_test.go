package connection

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/medreminder/internal/model"
)

func setupMockDB(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}

	return NewRepository(&dbpg.DB{Master: db}), mock
}

func TestRecordConnect(t *testing.T) {
	repo, mock := setupMockDB(t)

	c := model.Connection{
		ConnectionID:  "conn-1",
		UserID:        uuid.New(),
		GatewayAddr:   "http://gw-1:8081",
		EstablishedAt: time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (connection_id) DO UPDATE`)).
		WithArgs(c.ConnectionID, c.UserID, c.GatewayAddr, c.EstablishedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.RecordConnect(context.Background(), c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDisconnect_Idempotent(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM connections`)).
		WithArgs("conn-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM connections`)).
		WithArgs("conn-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.RecordDisconnect(context.Background(), "conn-1"))
	assert.NoError(t, repo.RemoveConnection(context.Background(), "conn-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveConnection_Error(t *testing.T) {
	repo, mock := setupMockDB(t)

	dbErr := errors.New("db down")
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM connections`)).
		WithArgs("conn-1").
		WillReturnError(dbErr)

	err := repo.RemoveConnection(context.Background(), "conn-1")
	assert.ErrorIs(t, err, dbErr)
}

func TestTouch(t *testing.T) {
	repo, mock := setupMockDB(t)

	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`SET last_seen_at = $1`)).
		WithArgs(at, "conn-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Touch(context.Background(), "conn-1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveByGateway(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`WHERE gateway_addr = $1`)).
		WithArgs("http://gw-1:8081").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.RemoveByGateway(context.Background(), "http://gw-1:8081")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListConnectionsForUser(t *testing.T) {
	repo, mock := setupMockDB(t)

	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM connections`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"connection_id", "user_id", "gateway_addr", "established_at", "last_seen_at"}).
			AddRow("conn-1", userID.String(), "http://gw-1:8081", now, now).
			AddRow("conn-2", userID.String(), "http://gw-2:8081", now, now))

	conns, err := repo.ListConnectionsForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, conns, 2)
	assert.Equal(t, "conn-2", conns[1].ConnectionID)
	assert.Equal(t, userID, conns[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListConnectionsForUser_Empty(t *testing.T) {
	repo, mock := setupMockDB(t)

	userID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM connections`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"connection_id", "user_id", "gateway_addr", "established_at", "last_seen_at"}))

	conns, err := repo.ListConnectionsForUser(context.Background(), userID)
	assert.NoError(t, err)
	assert.Empty(t, conns)
}
