package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/medreminder/internal/model"
)

const pollInterval = 25 * time.Millisecond

type message struct {
	intent       model.Intent
	receiveCount int
	visibleAt    time.Time
}

// Memory is an in-process delivery queue with visibility timeouts, receive
// counting and a dead-letter queue.
type Memory struct {
	mu       sync.Mutex
	cfg      Config
	now      func() time.Time
	active   []*message
	inflight map[string]*message
	dlq      []DeadLetter
	closed   bool
	notify   chan struct{}
}

// Option configures a Memory queue.
type Option func(*Memory)

// WithClock replaces the clock used for visibility and retention.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

var _ Queue = (*Memory)(nil)

// NewMemory creates an empty in-memory queue.
func NewMemory(cfg Config, opts ...Option) *Memory {
	m := &Memory{
		cfg:      cfg,
		now:      time.Now,
		inflight: make(map[string]*message),
		notify:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Publish enqueues an intent as a visible message.
func (m *Memory) Publish(_ context.Context, intent model.Intent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	m.active = append(m.active, &message{intent: intent, visibleAt: m.now()})
	m.signal()

	return nil
}

// ReceiveBatch collects up to max visible messages, waiting at most wait for
// the batch to fill. It returns early once max messages are collected.
func (m *Memory) ReceiveBatch(ctx context.Context, max int, wait time.Duration) ([]Delivery, error) {
	deadline := time.Now().Add(wait)
	var out []Delivery

	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return out, ErrClosed
		}
		out = append(out, m.takeLocked(max-len(out))...)
		m.mu.Unlock()

		if len(out) >= max {
			return out, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return out, nil
		}

		timer := time.NewTimer(min(remaining, pollInterval))
		select {
		case <-ctx.Done():
			timer.Stop()
			if len(out) > 0 {
				return out, nil
			}
			return nil, ctx.Err()
		case <-m.notify:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// takeLocked reclaims expired messages and hands out up to n visible ones.
func (m *Memory) takeLocked(n int) []Delivery {
	now := m.now()
	m.reclaimLocked(now)

	var out []Delivery
	kept := m.active[:0]
	for _, msg := range m.active {
		if len(out) >= n || msg.visibleAt.After(now) {
			kept = append(kept, msg)
			continue
		}

		msg.receiveCount++
		msg.visibleAt = now.Add(m.cfg.VisibilityTimeout)
		msg.intent.DeliveryAttempts = msg.receiveCount

		receipt := uuid.NewString()
		m.inflight[receipt] = msg
		out = append(out, Delivery{Intent: msg.intent, Receipt: receipt, ReceiveCount: msg.receiveCount})
	}
	m.active = kept

	return out
}

// reclaimLocked returns messages whose visibility timeout expired to the
// active queue, or dead-letters them when their receive budget is spent.
func (m *Memory) reclaimLocked(now time.Time) {
	for receipt, msg := range m.inflight {
		if msg.visibleAt.After(now) {
			continue
		}

		delete(m.inflight, receipt)
		if msg.receiveCount >= m.cfg.MaxReceiveCount {
			m.deadLetterLocked(msg, ReasonMaxReceives, now)
			continue
		}
		m.active = append(m.active, msg)
	}

	m.purgeLocked(now)
}

func (m *Memory) purgeLocked(now time.Time) {
	if m.cfg.DLQRetention <= 0 {
		return
	}

	kept := m.dlq[:0]
	for _, dl := range m.dlq {
		if now.Sub(dl.DeadLetteredAt) < m.cfg.DLQRetention {
			kept = append(kept, dl)
		}
	}
	m.dlq = kept
}

func (m *Memory) deadLetterLocked(msg *message, reason string, now time.Time) {
	m.dlq = append(m.dlq, DeadLetter{
		Intent:         msg.intent,
		Reason:         reason,
		ReceiveCount:   msg.receiveCount,
		DeadLetteredAt: now,
	})
}

func (m *Memory) signal() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Acknowledge removes a received message permanently.
func (m *Memory) Acknowledge(_ context.Context, d Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.inflight[d.Receipt]; !ok {
		return ErrUnknownReceipt
	}
	delete(m.inflight, d.Receipt)

	return nil
}

// Release hands a received message back for redelivery after RetryDelay.
// It reports true when the message was dead-lettered instead.
func (m *Memory) Release(_ context.Context, d Delivery) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.inflight[d.Receipt]
	if !ok {
		return false, ErrUnknownReceipt
	}
	delete(m.inflight, d.Receipt)

	now := m.now()
	if msg.receiveCount >= m.cfg.MaxReceiveCount {
		m.deadLetterLocked(msg, ReasonMaxReceives, now)
		return true, nil
	}

	msg.visibleAt = now.Add(m.cfg.RetryDelay)
	m.active = append(m.active, msg)
	m.signal()

	return false, nil
}

// DeadLetter moves a received message straight to the dead-letter queue.
func (m *Memory) DeadLetter(_ context.Context, d Delivery, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.inflight[d.Receipt]
	if !ok {
		return ErrUnknownReceipt
	}
	delete(m.inflight, d.Receipt)
	m.deadLetterLocked(msg, reason, m.now())

	return nil
}

// DeadLetters lists up to limit dead letters, oldest first.
func (m *Memory) DeadLetters(_ context.Context, limit int) ([]DeadLetter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reclaimLocked(m.now())

	n := len(m.dlq)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]DeadLetter, n)
	copy(out, m.dlq[:n])

	return out, nil
}

// DeadLetterStats reports DLQ depth and the age of its oldest message.
func (m *Memory) DeadLetterStats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.reclaimLocked(now)

	st := Stats{Depth: len(m.dlq)}
	if len(m.dlq) > 0 {
		st.OldestAge = now.Sub(m.dlq[0].DeadLetteredAt)
	}

	return st, nil
}

// Redrive moves up to limit dead letters back to the active queue with a
// fresh receive budget.
func (m *Memory) Redrive(_ context.Context, limit int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.dlq)
	if limit > 0 && limit < n {
		n = limit
	}

	now := m.now()
	for _, dl := range m.dlq[:n] {
		in := dl.Intent
		in.DeliveryAttempts = 0
		m.active = append(m.active, &message{intent: in, visibleAt: now})
	}
	m.dlq = append(m.dlq[:0], m.dlq[n:]...)
	if n > 0 {
		m.signal()
	}

	return n, nil
}

// Depth returns the number of queued and in-flight messages.
func (m *Memory) Depth() (queued, inflight int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.active), len(m.inflight)
}

// Close rejects further operations.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}
