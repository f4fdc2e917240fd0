// Package alert watches the dead-letter queue and notifies operators.
package alert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/medreminder/internal/queue"
)

//go:generate mockgen -source=monitor.go -destination=../mocks/alert/mock.go -package=mocks

type dlqStats interface {
	DeadLetterStats(ctx context.Context) (queue.Stats, error)
}

// Notifier delivers an alert text to one recipient.
type Notifier interface {
	Send(ctx context.Context, to string, msg string) error
}

// Target is one operator destination, e.g. a Telegram chat or a mailbox.
type Target struct {
	Channel string `mapstructure:"channel"`
	To      string `mapstructure:"to"`
}

// Config controls when alerts fire.
type Config struct {
	MaxOldestAge time.Duration `mapstructure:"max_oldest_age"`
	Cooldown     time.Duration `mapstructure:"cooldown"`
	Targets      []Target      `mapstructure:"targets"`
}

// Monitor raises an alert when the DLQ holds messages, at most once per
// cooldown.
type Monitor struct {
	stats     dlqStats
	notifiers map[string]Notifier
	cfg       Config
	now       func() time.Time

	mu        sync.Mutex
	lastAlert time.Time
}

func NewMonitor(stats dlqStats, notifiers map[string]Notifier, cfg Config) *Monitor {
	return &Monitor{stats: stats, notifiers: notifiers, cfg: cfg, now: time.Now}
}

// Check reads the DLQ stats and alerts when needed. It reports whether an
// alert was sent.
func (m *Monitor) Check(ctx context.Context) (bool, error) {
	st, err := m.stats.DeadLetterStats(ctx)
	if err != nil {
		return false, fmt.Errorf("get dlq stats: %w", err)
	}

	if st.Depth == 0 {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !m.lastAlert.IsZero() && now.Sub(m.lastAlert) < m.cfg.Cooldown {
		return false, nil
	}

	msg := message(st, m.cfg.MaxOldestAge)
	zlog.Logger.Warn().Int("depth", st.Depth).Dur("oldest_age", st.OldestAge).Msg(msg)

	var errs []error
	sent := 0
	for _, t := range m.cfg.Targets {
		n, ok := m.notifiers[t.Channel]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown alert channel %q", t.Channel))
			continue
		}

		if err := n.Send(ctx, t.To, msg); err != nil {
			errs = append(errs, fmt.Errorf("send %s alert to %s: %w", t.Channel, t.To, err))
			continue
		}
		sent++
	}

	if sent > 0 || len(m.cfg.Targets) == 0 {
		m.lastAlert = now
	}

	return sent > 0, errors.Join(errs...)
}

func message(st queue.Stats, maxAge time.Duration) string {
	age := st.OldestAge.Round(time.Second)
	if maxAge > 0 && st.OldestAge > maxAge {
		return fmt.Sprintf("medication reminders: %d intents in the dead-letter queue, oldest waiting %s (over %s)", st.Depth, age, maxAge)
	}

	return fmt.Sprintf("medication reminders: %d intents in the dead-letter queue, oldest waiting %s", st.Depth, age)
}
