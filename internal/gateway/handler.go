package gateway

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/medreminder/internal/api/respond"
	"github.com/aliskhannn/medreminder/internal/model"
	"github.com/aliskhannn/medreminder/internal/push"
	"github.com/aliskhannn/medreminder/pkg/auth"
)

const (
	maxPayloadSize  = 64 << 10
	registryTimeout = 5 * time.Second
	touchInterval   = 30 * time.Second
)

type connectionRegistry interface {
	RecordConnect(ctx context.Context, c model.Connection) error
	RecordDisconnect(ctx context.Context, connectionID string) error
	Touch(ctx context.Context, connectionID string, at time.Time) error
}

type tokenVerifier interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Welcome is the first frame a client receives.
type Welcome struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connection_id"`
}

type Handler struct {
	hub           *Hub
	registry      connectionRegistry
	verifier      tokenVerifier
	advertiseAddr string
	upgrader      websocket.Upgrader
}

// NewHandler creates the gateway handlers. advertiseAddr is the base URL the
// processors use to reach this instance; it is stored with every connection.
func NewHandler(hub *Hub, registry connectionRegistry, verifier tokenVerifier, advertiseAddr string) *Handler {
	return &Handler{
		hub:           hub,
		registry:      registry,
		verifier:      verifier,
		advertiseAddr: advertiseAddr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Connect upgrades an authenticated request and serves the connection until
// the peer goes away.
func (h *Handler) Connect(c *gin.Context) {
	claims, err := h.verifier.ValidateToken(c.Query("token"))
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("rejected connection with invalid token")
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("invalid token"))
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	now := time.Now()
	client := NewClient(uuid.NewString(), claims.UserID, ws)
	log := zlog.Logger.With().Str("connection_id", client.ID).Str("user_id", client.UserID.String()).Logger()

	h.hub.Register(client)

	ctx, cancel := context.WithTimeout(context.Background(), registryTimeout)
	err = h.registry.RecordConnect(ctx, model.Connection{
		ConnectionID:  client.ID,
		UserID:        client.UserID,
		GatewayAddr:   h.advertiseAddr,
		EstablishedAt: now,
		LastSeenAt:    now,
	})
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("failed to record connect")
		h.hub.Unregister(client)
		_ = ws.Close()
		return
	}

	welcome, _ := json.Marshal(Welcome{Type: "connected", ConnectionID: client.ID})
	_ = h.hub.Deliver(client.ID, welcome)

	log.Info().Msg("client connected")

	go client.writePump()
	client.readPump(h.toucher(client.ID))

	h.hub.Unregister(client)

	ctx, cancel = context.WithTimeout(context.Background(), registryTimeout)
	defer cancel()
	if err := h.registry.RecordDisconnect(ctx, client.ID); err != nil {
		log.Error().Err(err).Msg("failed to record disconnect")
	}

	log.Info().Msg("client disconnected")
}

// toucher refreshes last_seen_at at most once per touchInterval.
func (h *Handler) toucher(connectionID string) func() {
	last := time.Now()

	return func() {
		now := time.Now()
		if now.Sub(last) < touchInterval {
			return
		}
		last = now

		ctx, cancel := context.WithTimeout(context.Background(), registryTimeout)
		defer cancel()
		if err := h.registry.Touch(ctx, connectionID, now); err != nil {
			zlog.Logger.Warn().Err(err).Str("connection_id", connectionID).Msg("failed to touch connection")
		}
	}
}

// Push delivers the request body to one connection of this instance.
func (h *Handler) Push(c *gin.Context) {
	id := c.Param("id")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadSize))
	if err != nil || !json.Valid(body) {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid payload"))
		return
	}

	err = h.hub.Deliver(id, body)
	switch {
	case err == nil:
		respond.OK(c.Writer, "delivered")
	case errors.Is(err, ErrUnknownConnection):
		respond.Fail(c.Writer, http.StatusGone, err)
	case errors.Is(err, ErrBufferFull):
		zlog.Logger.Warn().Str("connection_id", id).Msg("send buffer full")
		respond.Fail(c.Writer, http.StatusServiceUnavailable, err)
	default:
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
	}
}

// Health reports the number of live connections.
func (h *Handler) Health(c *gin.Context) {
	respond.OK(c.Writer, gin.H{"connections": h.hub.ClientCount()})
}

// RequireToken guards the management endpoint with a shared secret. An empty
// secret disables the check.
func RequireToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		got := c.GetHeader(push.TokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("invalid gateway token"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// NewRouter wires the gateway routes.
func NewRouter(h *Handler, managementToken string) *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery())

	e.GET("/ws", h.Connect)
	e.GET("/healthz", h.Health)
	e.POST("/connections/:id", RequireToken(managementToken), h.Push)

	return e
}
