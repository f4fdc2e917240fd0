package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/medreminder/internal/config"
	"github.com/aliskhannn/medreminder/internal/queue"
	rabbitqueue "github.com/aliskhannn/medreminder/internal/rabbitmq/queue"
)

// app opens shared infrastructure on demand and closes it in reverse order.
type app struct {
	cfg *config.Config

	db    *dbpg.DB
	rdb   *redis.Client
	conn  *amqp.Connection
	queue queue.Queue

	closers []io.Closer
}

func newApp(configDir string) (*app, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg}, nil
}

func (a *app) database() (*dbpg.DB, error) {
	if a.db != nil {
		return a.db, nil
	}

	opts := &dbpg.Options{
		MaxOpenConns:    a.cfg.Database.MaxOpenConns,
		MaxIdleConns:    a.cfg.Database.MaxIdleConns,
		ConnMaxLifetime: a.cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(a.cfg.Database.Slaves))
	for _, s := range a.cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(a.cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	a.db = db
	a.closers = append(a.closers, db.Master)
	for _, s := range db.Slaves {
		a.closers = append(a.closers, s)
	}

	return db, nil
}

func (a *app) redisClient(ctx context.Context) (*redis.Client, error) {
	if a.rdb != nil {
		return a.rdb, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Address,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.Database,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	a.rdb = rdb
	a.closers = append(a.closers, rdb)

	return rdb, nil
}

func (a *app) rabbit() (*amqp.Connection, error) {
	if a.conn != nil {
		return a.conn, nil
	}

	strategy := retry.Strategy{Attempts: a.cfg.RabbitMQ.Retries, Delay: a.cfg.RabbitMQ.Pause, Backoff: 1}

	var conn *amqp.Connection
	err := retry.Do(func() error {
		var err error
		conn, err = amqp.Dial(a.cfg.RabbitMQ.URL())
		if err != nil {
			zlog.Logger.Warn().Err(err).Msg("rabbitmq not reachable yet")
		}
		return err
	}, strategy)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	a.conn = conn
	a.closers = append(a.closers, conn)

	return conn, nil
}

// deliveryQueue returns the configured queue backend. The memory backend
// only works when producer and consumer share the process.
func (a *app) deliveryQueue() (queue.Queue, error) {
	if a.queue != nil {
		return a.queue, nil
	}

	switch a.cfg.Queue.Backend {
	case "memory":
		a.queue = queue.NewMemory(a.cfg.Queue.Config)
	case "rabbitmq", "":
		conn, err := a.rabbit()
		if err != nil {
			return nil, err
		}

		q, err := rabbitqueue.NewDeliveryQueue(conn, a.cfg.Queue.Config, a.cfg.RabbitMQ.Prefetch)
		if err != nil {
			return nil, fmt.Errorf("declare delivery queue: %w", err)
		}
		a.queue = q
	default:
		return nil, fmt.Errorf("unknown queue backend %q", a.cfg.Queue.Backend)
	}

	a.closers = append(a.closers, a.queue)

	return a.queue, nil
}

func (a *app) close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close resources")
	}
}
