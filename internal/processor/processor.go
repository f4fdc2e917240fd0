// Package processor consumes notification intents and pushes them to every
// live connection of the target user.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/medreminder/internal/model"
	"github.com/aliskhannn/medreminder/internal/push"
	"github.com/aliskhannn/medreminder/internal/queue"
	"github.com/aliskhannn/medreminder/internal/repository/reminder"
)

//go:generate mockgen -source=processor.go -destination=../mocks/processor/mock.go -package=mocks

type deliveryQueue interface {
	Acknowledge(ctx context.Context, d queue.Delivery) error
	Release(ctx context.Context, d queue.Delivery) (bool, error)
	DeadLetter(ctx context.Context, d queue.Delivery, reason string) error
}

type reminderService interface {
	GetReminderStatus(ctx context.Context, strategy retry.Strategy, id uuid.UUID) (model.ReminderStatus, error)
}

type connectionRegistry interface {
	ListConnectionsForUser(ctx context.Context, userID uuid.UUID) ([]model.Connection, error)
	RemoveConnection(ctx context.Context, connectionID string) error
}

type pusher interface {
	Push(ctx context.Context, conn model.Connection, payload model.Payload) error
}

type deliveryMarkers interface {
	Seen(ctx context.Context, intentID uuid.UUID, connectionID string) (bool, error)
	Mark(ctx context.Context, intentID uuid.UUID, connectionID string) error
}

type outcomeRecorder interface {
	RecordOutcome(ctx context.Context, o model.DeliveryOutcome) error
}

// Result is what happened to one intent.
type Result string

const (
	ResultDelivered    Result = "delivered"
	ResultNoTarget     Result = "no_target"
	ResultSkipped      Result = "skipped"
	ResultRetry        Result = "retry"
	ResultDeadLettered Result = "dead_lettered"
)

// Outcome reports the handling of one delivery. Err is set when the queue
// could not be updated; the message then reappears after its visibility
// timeout.
type Outcome struct {
	IntentID uuid.UUID
	Result   Result
	Err      error
}

// Deps groups the collaborators of a Processor.
type Deps struct {
	Queue     deliveryQueue
	Reminders reminderService
	Registry  connectionRegistry
	Pusher    pusher
	Markers   deliveryMarkers
	Outcomes  outcomeRecorder
}

// Processor handles batches of deliveries.
type Processor struct {
	deps        Deps
	strategy    retry.Strategy
	concurrency int
	now         func() time.Time
}

// New creates a Processor. concurrency bounds how many items of a batch are
// handled at once.
func New(deps Deps, strategy retry.Strategy, concurrency int) *Processor {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Processor{deps: deps, strategy: strategy, concurrency: concurrency, now: time.Now}
}

// HandleBatch handles every delivery independently and returns the outcomes
// in input order. A failing item never blocks the others.
func (p *Processor) HandleBatch(ctx context.Context, batch []queue.Delivery) []Outcome {
	out := make([]Outcome, len(batch))
	sem := make(chan struct{}, p.concurrency)

	var wg sync.WaitGroup
	for i, d := range batch {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, d queue.Delivery) {
			defer wg.Done()
			defer func() { <-sem }()

			out[i] = p.Handle(ctx, d)
		}(i, d)
	}
	wg.Wait()

	return out
}

// Handle processes a single delivery.
func (p *Processor) Handle(ctx context.Context, d queue.Delivery) Outcome {
	in := d.Intent
	log := zlog.Logger.With().
		Str("intent_id", in.ID.String()).
		Str("reminder_id", in.ReminderID.String()).
		Int("receive_count", d.ReceiveCount).
		Logger()

	status, err := p.deps.Reminders.GetReminderStatus(ctx, p.strategy, in.ReminderID)
	if err != nil {
		if errors.Is(err, reminder.ErrReminderNotFound) {
			log.Warn().Msg("reminder no longer exists, dead-lettering intent")
			return p.deadLetter(ctx, d, "reminder not found")
		}

		log.Error().Err(err).Msg("failed to get reminder status")
		return p.release(ctx, d, err)
	}

	switch status {
	case model.StatusCancelled:
		log.Info().Msg("reminder cancelled, skipping")
		return p.ack(ctx, d, ResultSkipped, model.DeliverySkipped)
	case model.StatusAcknowledged:
		log.Info().Msg("occurrence already acknowledged, skipping")
		return p.ack(ctx, d, ResultSkipped, model.DeliverySkipped)
	}

	conns, err := p.deps.Registry.ListConnectionsForUser(ctx, in.UserID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list connections")
		return p.release(ctx, d, err)
	}

	if len(conns) == 0 {
		log.Warn().Str("user_id", in.UserID.String()).Msg("no live connections, notification missed")
		return p.ack(ctx, d, ResultNoTarget, model.DeliveryNoTarget)
	}

	var (
		delivered int
		transient []error
	)
	for _, c := range conns {
		seen, err := p.deps.Markers.Seen(ctx, in.ID, c.ConnectionID)
		if err != nil {
			log.Warn().Err(err).Str("connection_id", c.ConnectionID).Msg("failed to check delivery marker")
		}
		if seen {
			delivered++
			continue
		}

		err = p.deps.Pusher.Push(ctx, c, in.Payload)
		switch {
		case err == nil:
			delivered++
			if err := p.deps.Markers.Mark(ctx, in.ID, c.ConnectionID); err != nil {
				log.Warn().Err(err).Str("connection_id", c.ConnectionID).Msg("failed to set delivery marker")
			}

		case errors.Is(err, push.ErrGone):
			log.Info().Str("connection_id", c.ConnectionID).Msg("connection gone, removing")
			if err := p.deps.Registry.RemoveConnection(ctx, c.ConnectionID); err != nil {
				log.Error().Err(err).Str("connection_id", c.ConnectionID).Msg("failed to remove connection")
			}

		default:
			log.Warn().Err(err).Str("connection_id", c.ConnectionID).Msg("push failed")
			transient = append(transient, fmt.Errorf("%s: %w", c.ConnectionID, err))
		}
	}

	switch {
	case delivered > 0:
		return p.ack(ctx, d, ResultDelivered, model.DeliveryDelivered)
	case len(transient) == 0:
		log.Warn().Str("user_id", in.UserID.String()).Msg("every connection gone, notification missed")
		return p.ack(ctx, d, ResultNoTarget, model.DeliveryNoTarget)
	default:
		return p.release(ctx, d, errors.Join(transient...))
	}
}

func (p *Processor) ack(ctx context.Context, d queue.Delivery, res Result, status model.DeliveryStatus) Outcome {
	if err := p.deps.Queue.Acknowledge(ctx, d); err != nil {
		zlog.Logger.Error().Err(err).Str("intent_id", d.Intent.ID.String()).Msg("failed to acknowledge delivery")
		return Outcome{IntentID: d.Intent.ID, Result: res, Err: err}
	}

	p.record(ctx, d, status, "")

	return Outcome{IntentID: d.Intent.ID, Result: res}
}

func (p *Processor) release(ctx context.Context, d queue.Delivery, cause error) Outcome {
	dead, err := p.deps.Queue.Release(ctx, d)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("intent_id", d.Intent.ID.String()).Msg("failed to release delivery")
		return Outcome{IntentID: d.Intent.ID, Result: ResultRetry, Err: err}
	}

	if dead {
		zlog.Logger.Error().Err(cause).Str("intent_id", d.Intent.ID.String()).Msg("delivery attempts exhausted, dead-lettered")
		p.record(ctx, d, model.DeliveryDeadLettered, cause.Error())
		return Outcome{IntentID: d.Intent.ID, Result: ResultDeadLettered}
	}

	p.record(ctx, d, model.DeliveryPending, cause.Error())

	return Outcome{IntentID: d.Intent.ID, Result: ResultRetry}
}

func (p *Processor) deadLetter(ctx context.Context, d queue.Delivery, reason string) Outcome {
	if err := p.deps.Queue.DeadLetter(ctx, d, reason); err != nil {
		zlog.Logger.Error().Err(err).Str("intent_id", d.Intent.ID.String()).Msg("failed to dead-letter delivery")
		return Outcome{IntentID: d.Intent.ID, Result: ResultDeadLettered, Err: err}
	}

	p.record(ctx, d, model.DeliveryDeadLettered, reason)

	return Outcome{IntentID: d.Intent.ID, Result: ResultDeadLettered}
}

// record stores the outcome. Failures are logged only: the queue state is
// already settled.
func (p *Processor) record(ctx context.Context, d queue.Delivery, status model.DeliveryStatus, reason string) {
	err := p.deps.Outcomes.RecordOutcome(ctx, model.DeliveryOutcome{
		IntentID: d.Intent.ID,
		Status:   status,
		Attempts: d.ReceiveCount,
		Error:    reason,
		At:       p.now(),
	})
	if err != nil && !errors.Is(err, reminder.ErrDispatchNotFound) {
		zlog.Logger.Error().Err(err).Str("intent_id", d.Intent.ID.String()).Msg("failed to record delivery outcome")
	}
}
