// Package queue defines the delivery queue contract shared by the in-memory
// and RabbitMQ implementations.
//
// A received message stays invisible to other consumers until it is
// acknowledged, released or its visibility timeout expires. A message
// received more than MaxReceiveCount times moves to the dead-letter queue.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/aliskhannn/medreminder/internal/model"
)

var (
	ErrUnknownReceipt = errors.New("unknown or expired receipt")
	ErrClosed         = errors.New("queue closed")
)

// Reasons recorded on dead letters.
const (
	ReasonMaxReceives = "max receive count exceeded"
	ReasonUndecodable = "undecodable message"
)

// Delivery is one received message.
type Delivery struct {
	Intent       model.Intent
	Receipt      string
	ReceiveCount int
}

// DeadLetter is a message parked in the dead-letter queue.
type DeadLetter struct {
	Intent         model.Intent `json:"intent"`
	Reason         string       `json:"reason"`
	ReceiveCount   int          `json:"receive_count"`
	DeadLetteredAt time.Time    `json:"dead_lettered_at"`
}

// Stats describes the dead-letter queue.
type Stats struct {
	Depth     int           `json:"depth"`
	OldestAge time.Duration `json:"oldest_age"`
}

// Config holds queue behaviour.
type Config struct {
	VisibilityTimeout time.Duration `mapstructure:"visibility_timeout"`
	MaxReceiveCount   int           `mapstructure:"max_receive_count"`
	DLQRetention      time.Duration `mapstructure:"dlq_retention"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"` // delay before a released message is visible again
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		VisibilityTimeout: 300 * time.Second,
		MaxReceiveCount:   3,
		DLQRetention:      14 * 24 * time.Hour,
		RetryDelay:        300 * time.Second,
	}
}

// Queue is implemented by every delivery queue backend.
type Queue interface {
	Publish(ctx context.Context, intent model.Intent) error
	ReceiveBatch(ctx context.Context, max int, wait time.Duration) ([]Delivery, error)
	Acknowledge(ctx context.Context, d Delivery) error
	Release(ctx context.Context, d Delivery) (bool, error)
	DeadLetter(ctx context.Context, d Delivery, reason string) error
	DeadLetters(ctx context.Context, limit int) ([]DeadLetter, error)
	DeadLetterStats(ctx context.Context) (Stats, error)
	Redrive(ctx context.Context, limit int) (int, error)
	Close() error
}
