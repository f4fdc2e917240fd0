package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/medreminder/internal/processor"
	"github.com/aliskhannn/medreminder/internal/queue"
)

type batchReceiver interface {
	ReceiveBatch(ctx context.Context, max int, wait time.Duration) ([]queue.Delivery, error)
}

type batchHandler interface {
	HandleBatch(ctx context.Context, batch []queue.Delivery) []processor.Outcome
}

// PoolConfig sizes the processor pool.
type PoolConfig struct {
	Workers   int           `mapstructure:"workers"`
	BatchSize int           `mapstructure:"batch_size"`
	BatchWait time.Duration `mapstructure:"batch_wait"`
}

// Pool runs workers that pull batches from the delivery queue and hand them
// to the processor.
type Pool struct {
	queue   batchReceiver
	handler batchHandler
	cfg     PoolConfig
}

func NewPool(q batchReceiver, h batchHandler, cfg PoolConfig) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 10
	}
	if cfg.BatchWait <= 0 {
		cfg.BatchWait = 5 * time.Second
	}

	return &Pool{queue: q, handler: h, cfg: cfg}
}

// Run blocks until ctx is cancelled or the queue is closed.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			zlog.Logger.Info().Int("worker", id).Msg("worker started")
			p.loop(ctx, id)
			zlog.Logger.Info().Int("worker", id).Msg("worker stopped")
		}(i)
	}

	wg.Wait()
	zlog.Logger.Info().Msg("processor pool stopped")
}

func (p *Pool) loop(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			return
		}

		batch, err := p.queue.ReceiveBatch(ctx, p.cfg.BatchSize, p.cfg.BatchWait)
		if len(batch) > 0 {
			p.handle(ctx, id, batch)
		}

		switch {
		case err == nil:
		case errors.Is(err, queue.ErrClosed):
			zlog.Logger.Warn().Int("worker", id).Msg("delivery queue closed")
			return
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return
		default:
			zlog.Logger.Error().Err(err).Int("worker", id).Msg("failed to receive batch")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}
}

func (p *Pool) handle(ctx context.Context, id int, batch []queue.Delivery) {
	counts := make(map[processor.Result]int)
	failed := 0

	for _, o := range p.handler.HandleBatch(ctx, batch) {
		counts[o.Result]++
		if o.Err != nil {
			failed++
		}
	}

	zlog.Logger.Info().
		Int("worker", id).
		Int("batch", len(batch)).
		Int("delivered", counts[processor.ResultDelivered]).
		Int("no_target", counts[processor.ResultNoTarget]).
		Int("skipped", counts[processor.ResultSkipped]).
		Int("retry", counts[processor.ResultRetry]).
		Int("dead_lettered", counts[processor.ResultDeadLettered]).
		Int("queue_errors", failed).
		Msg("batch handled")
}
