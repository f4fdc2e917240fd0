// Package scanner finds due reminder occurrences and hands one notification
// intent per occurrence to the fan-out channel.
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/medreminder/internal/model"
	"github.com/aliskhannn/medreminder/internal/schedule"
)

//go:generate mockgen -source=scanner.go -destination=../mocks/scanner/mock.go -package=mocks

type reminderStore interface {
	ListDueCandidates(ctx context.Context, windowEnd time.Time) ([]model.Reminder, error)
	MarkDispatched(ctx context.Context, intent model.Intent) (bool, error)
	MarkPublished(ctx context.Context, intentID uuid.UUID, at time.Time) error
	ListUnpublished(ctx context.Context, olderThan time.Time, limit int) ([]model.Intent, error)
}

type intentPublisher interface {
	Publish(ctx context.Context, intent model.Intent) error
}

// Config controls the scan window and the outbox republish.
type Config struct {
	Interval       time.Duration `mapstructure:"interval"`        // cadence of the scan trigger
	Lookback       time.Duration `mapstructure:"lookback"`        // how far the window reaches behind the current interval
	RepublishAfter time.Duration `mapstructure:"republish_after"` // age after which an unpublished dispatch is republished
	RepublishLimit int           `mapstructure:"republish_limit"`
}

// Result summarises one scan.
type Result struct {
	Candidates    int
	Due           int
	Dispatched    int
	Duplicates    int
	Published     int
	PublishFailed int
	Republished   int
	Skipped       int
}

// Scanner runs scan cycles. It keeps no state between cycles.
type Scanner struct {
	store     reminderStore
	publisher intentPublisher
	cfg       Config
	strategy  retry.Strategy
}

// New creates a Scanner.
func New(store reminderStore, publisher intentPublisher, cfg Config, strategy retry.Strategy) *Scanner {
	return &Scanner{store: store, publisher: publisher, cfg: cfg, strategy: strategy}
}

// Scan runs one cycle for the window around now.
//
// A failure to read candidates aborts the cycle; the next trigger retries.
// Occurrences are claimed through MarkDispatched, so overlapping scans of the
// same window publish each occurrence once.
func (s *Scanner) Scan(ctx context.Context, now time.Time) (Result, error) {
	var res Result

	start, end := schedule.Window(now, s.cfg.Interval, s.cfg.Lookback)

	reminders, err := s.store.ListDueCandidates(ctx, end)
	if err != nil {
		return res, fmt.Errorf("list due candidates: %w", err)
	}
	res.Candidates = len(reminders)

	for _, r := range reminders {
		due, err := schedule.Due(r, now, start, end)
		if err != nil {
			zlog.Logger.Warn().Err(err).Str("reminder_id", r.ID.String()).Msg("skipping reminder with invalid schedule")
			res.Skipped++
			continue
		}

		for _, at := range due {
			res.Due++

			intent := schedule.NewIntent(r, at, now)

			claimed, err := s.store.MarkDispatched(ctx, intent)
			if err != nil {
				zlog.Logger.Error().Err(err).Str("reminder_id", r.ID.String()).Msg("failed to mark dispatched")
				continue
			}
			if !claimed {
				res.Duplicates++
				continue
			}
			res.Dispatched++

			if err := s.publish(ctx, intent, now); err != nil {
				zlog.Logger.Error().Err(err).Str("intent_id", intent.ID.String()).Msg("failed to publish intent, left for republish")
				res.PublishFailed++
				continue
			}
			res.Published++
		}
	}

	if err := s.republish(ctx, now, &res); err != nil {
		return res, err
	}

	if res.Due > 0 || res.Republished > 0 {
		zlog.Logger.Info().
			Int("candidates", res.Candidates).
			Int("dispatched", res.Dispatched).
			Int("duplicates", res.Duplicates).
			Int("published", res.Published).
			Int("publish_failed", res.PublishFailed).
			Int("republished", res.Republished).
			Msg("scan completed")
	}

	return res, nil
}

// republish publishes intents whose dispatch was recorded but whose publish
// never succeeded.
func (s *Scanner) republish(ctx context.Context, now time.Time, res *Result) error {
	intents, err := s.store.ListUnpublished(ctx, now.Add(-s.cfg.RepublishAfter), s.cfg.RepublishLimit)
	if err != nil {
		return fmt.Errorf("list unpublished: %w", err)
	}

	for _, intent := range intents {
		if err := s.publish(ctx, intent, now); err != nil {
			zlog.Logger.Error().Err(err).Str("intent_id", intent.ID.String()).Msg("failed to republish intent")
			res.PublishFailed++
			continue
		}
		res.Republished++
	}

	return nil
}

func (s *Scanner) publish(ctx context.Context, intent model.Intent, now time.Time) error {
	err := retry.Do(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return s.publisher.Publish(ctx, intent)
		}
	}, s.strategy)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	if err := s.store.MarkPublished(ctx, intent.ID, now); err != nil {
		zlog.Logger.Warn().Err(err).Str("intent_id", intent.ID.String()).Msg("failed to mark intent published")
	}

	return nil
}
