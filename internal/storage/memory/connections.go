package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/medreminder/internal/model"
)

// ConnectionRegistry keeps the connection_id to user mapping in memory.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	conns map[string]model.Connection
}

// NewConnectionRegistry creates an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{conns: make(map[string]model.Connection)}
}

func (r *ConnectionRegistry) RecordConnect(_ context.Context, c model.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.LastSeenAt.IsZero() {
		c.LastSeenAt = c.EstablishedAt
	}
	r.conns[c.ConnectionID] = c

	return nil
}

func (r *ConnectionRegistry) RecordDisconnect(_ context.Context, connectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, connectionID)

	return nil
}

func (r *ConnectionRegistry) RemoveConnection(ctx context.Context, connectionID string) error {
	return r.RecordDisconnect(ctx, connectionID)
}

func (r *ConnectionRegistry) Touch(_ context.Context, connectionID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.conns[connectionID]; ok {
		c.LastSeenAt = at
		r.conns[connectionID] = c
	}

	return nil
}

func (r *ConnectionRegistry) RemoveByGateway(_ context.Context, gatewayAddr string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, c := range r.conns {
		if c.GatewayAddr == gatewayAddr {
			delete(r.conns, id)
			n++
		}
	}

	return n, nil
}

func (r *ConnectionRegistry) ListConnectionsForUser(_ context.Context, userID uuid.UUID) ([]model.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Connection
	for _, c := range r.conns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ConnectionID < out[j].ConnectionID })

	return out, nil
}
