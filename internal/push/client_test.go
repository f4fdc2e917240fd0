package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/medreminder/internal/model"
)

func TestClient_Push(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "delivered", status: http.StatusOK},
		{name: "gone", status: http.StatusGone, wantErr: ErrGone},
		{name: "unknown connection", status: http.StatusNotFound, wantErr: ErrGone},
		{name: "buffer full", status: http.StatusServiceUnavailable, wantErr: ErrTransient},
		{name: "gateway error", status: http.StatusInternalServerError, wantErr: ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPayload model.Payload
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/connections/conn-1", r.URL.Path)
				assert.Equal(t, "secret", r.Header.Get(TokenHeader))
				_ = json.NewDecoder(r.Body).Decode(&gotPayload)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "secret", time.Second)
			payload := model.Payload{Title: "Medication reminder", ReminderID: uuid.New()}

			err := c.Push(context.Background(), model.Connection{ConnectionID: "conn-1"}, payload)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, payload.ReminderID, gotPayload.ReminderID)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_PushUsesConnectionGateway(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("http://127.0.0.1:1", "", time.Second)

	err := c.Push(context.Background(), model.Connection{ConnectionID: "c", GatewayAddr: srv.URL + "/"}, model.Payload{})
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestClient_PushUnreachableIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := NewClient(addr, "", time.Second)

	err := c.Push(context.Background(), model.Connection{ConnectionID: "c"}, model.Payload{})
	assert.ErrorIs(t, err, ErrTransient)
}
