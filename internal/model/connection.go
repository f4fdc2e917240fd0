package model

import (
	"time"

	"github.com/google/uuid"
)

// Connection is a live push connection held by a gateway instance.
type Connection struct {
	ConnectionID  string    `json:"connection_id"`
	UserID        uuid.UUID `json:"user_id"`
	GatewayAddr   string    `json:"gateway_addr,omitempty"` // base URL of the owning gateway
	EstablishedAt time.Time `json:"established_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}
