// Package push delivers payloads to a single connection through the
// gateway's management endpoint.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aliskhannn/medreminder/internal/model"
)

// TokenHeader carries the shared secret of the management endpoint.
const TokenHeader = "X-Gateway-Token"

var (
	// ErrGone means the connection no longer exists and will never accept
	// a push again.
	ErrGone = errors.New("connection gone")
	// ErrTransient wraps every failure worth retrying.
	ErrTransient = errors.New("transient push failure")
)

// Client posts payloads to gateway instances.
type Client struct {
	defaultAddr string
	token       string
	client      *http.Client
}

// NewClient creates a push client. defaultAddr is used for connections that
// do not name their gateway.
func NewClient(defaultAddr, token string, timeout time.Duration) *Client {
	return &Client{
		defaultAddr: strings.TrimRight(defaultAddr, "/"),
		token:       token,
		client:      &http.Client{Timeout: timeout},
	}
}

// Push sends the payload to the connection.
//
// It returns nil when the gateway accepted the message, ErrGone when the
// connection is unknown to the gateway, and an error wrapping ErrTransient
// otherwise.
func (c *Client) Push(ctx context.Context, conn model.Connection, payload model.Payload) error {
	addr := strings.TrimRight(conn.GatewayAddr, "/")
	if addr == "" {
		addr = c.defaultAddr
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/connections/%s", addr, url.PathEscape(conn.ConnectionID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(TokenHeader, c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send request: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return ErrGone
	default:
		return fmt.Errorf("%w: gateway responded %s", ErrTransient, resp.Status)
	}
}
