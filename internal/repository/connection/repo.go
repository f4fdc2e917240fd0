package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/medreminder/internal/model"
)

// Repository is the Postgres-backed connection registry.
//
// Every write is idempotent: removing an unknown connection is a no-op and
// recording a known connection again re-points it.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new connection repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// RecordConnect registers a connection for a user.
func (r *Repository) RecordConnect(ctx context.Context, c model.Connection) error {
	query := `
		INSERT INTO connections (connection_id, user_id, gateway_addr, established_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (connection_id) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    gateway_addr = EXCLUDED.gateway_addr,
		    established_at = EXCLUDED.established_at,
		    last_seen_at = EXCLUDED.last_seen_at;
    `

	_, err := r.db.ExecContext(ctx, query, c.ConnectionID, c.UserID, c.GatewayAddr, c.EstablishedAt)
	if err != nil {
		return fmt.Errorf("failed to record connect: %w", err)
	}

	return nil
}

// RecordDisconnect removes a connection after the client went away.
func (r *Repository) RecordDisconnect(ctx context.Context, connectionID string) error {
	return r.delete(ctx, connectionID, "record disconnect")
}

// RemoveConnection removes a connection the gateway reported as gone.
func (r *Repository) RemoveConnection(ctx context.Context, connectionID string) error {
	return r.delete(ctx, connectionID, "remove connection")
}

func (r *Repository) delete(ctx context.Context, connectionID, op string) error {
	query := `
		DELETE FROM connections
		WHERE connection_id = $1;
    `

	if _, err := r.db.ExecContext(ctx, query, connectionID); err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	return nil
}

// Touch refreshes the last-seen time of a connection. Concurrent touches
// resolve as last write wins.
func (r *Repository) Touch(ctx context.Context, connectionID string, at time.Time) error {
	query := `
		UPDATE connections
		SET last_seen_at = $1
		WHERE connection_id = $2;
    `

	if _, err := r.db.ExecContext(ctx, query, at, connectionID); err != nil {
		return fmt.Errorf("failed to touch connection: %w", err)
	}

	return nil
}

// RemoveByGateway drops every connection owned by a gateway instance.
func (r *Repository) RemoveByGateway(ctx context.Context, gatewayAddr string) (int64, error) {
	query := `
		DELETE FROM connections
		WHERE gateway_addr = $1;
    `

	res, err := r.db.ExecContext(ctx, query, gatewayAddr)
	if err != nil {
		return 0, fmt.Errorf("failed to remove gateway connections: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows, nil
}

// ListConnectionsForUser returns the live connections of a user.
func (r *Repository) ListConnectionsForUser(ctx context.Context, userID uuid.UUID) ([]model.Connection, error) {
	query := `
		SELECT connection_id, user_id, gateway_addr, established_at, last_seen_at
		FROM connections
		WHERE user_id = $1
		ORDER BY established_at;
    `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	var conns []model.Connection
	for rows.Next() {
		var c model.Connection
		if err := rows.Scan(&c.ConnectionID, &c.UserID, &c.GatewayAddr, &c.EstablishedAt, &c.LastSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}

		conns = append(conns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate connections: %w", err)
	}

	return conns, nil
}
