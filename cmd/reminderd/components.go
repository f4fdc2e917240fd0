package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/medreminder/internal/alert"
	"github.com/aliskhannn/medreminder/internal/api/handlers/dlq"
	"github.com/aliskhannn/medreminder/internal/api/handlers/reminder"
	"github.com/aliskhannn/medreminder/internal/api/router"
	"github.com/aliskhannn/medreminder/internal/api/server"
	"github.com/aliskhannn/medreminder/internal/cache"
	"github.com/aliskhannn/medreminder/internal/fanout"
	"github.com/aliskhannn/medreminder/internal/gateway"
	"github.com/aliskhannn/medreminder/internal/idempotency"
	"github.com/aliskhannn/medreminder/internal/processor"
	"github.com/aliskhannn/medreminder/internal/push"
	connrepo "github.com/aliskhannn/medreminder/internal/repository/connection"
	reminderrepo "github.com/aliskhannn/medreminder/internal/repository/reminder"
	"github.com/aliskhannn/medreminder/internal/scanner"
	remindersvc "github.com/aliskhannn/medreminder/internal/service/reminder"
	"github.com/aliskhannn/medreminder/internal/worker"
	"github.com/aliskhannn/medreminder/pkg/auth"
	"github.com/aliskhannn/medreminder/pkg/email"
	"github.com/aliskhannn/medreminder/pkg/telegram"
)

const shutdownTimeout = 5 * time.Second

// errMemoryBackend is returned by commands that run one pipeline stage on
// its own: the memory queue cannot be shared between processes.
var errMemoryBackend = errors.New("memory queue backend is only supported by the run command")

func (a *app) requireSharedQueue() error {
	if a.cfg.Queue.Backend == "memory" {
		return errMemoryBackend
	}

	return nil
}

func (a *app) reminderService(ctx context.Context) (*remindersvc.Service, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}

	rdb, err := a.redisClient(ctx)
	if err != nil {
		return nil, err
	}

	return remindersvc.NewService(reminderrepo.NewRepository(db), cache.New(rdb, a.cfg.Cache.TTL)), nil
}

// newScanner publishes through the notification topic. The delivery queue is
// its only subscriber.
func (a *app) newScanner() (*scanner.Scanner, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}

	q, err := a.deliveryQueue()
	if err != nil {
		return nil, err
	}

	topic := fanout.NewTopic()
	topic.Subscribe("delivery", q)

	return scanner.New(reminderrepo.NewRepository(db), topic, a.cfg.Scanner.Config, a.cfg.Retry), nil
}

func scanJob(s *scanner.Scanner) worker.Job {
	return func(ctx context.Context) error {
		res, err := s.Scan(ctx, time.Now())
		if err != nil {
			return err
		}

		zlog.Logger.Info().
			Int("due", res.Due).
			Int("published", res.Published).
			Int("publish_failed", res.PublishFailed).
			Int("republished", res.Republished).
			Msg("scan finished")

		return nil
	}
}

// markerStore keeps delivery markers next to the queue: in process memory
// for the memory backend, in Redis otherwise.
func (a *app) markerStore(ctx context.Context) (idempotency.Store, error) {
	if a.cfg.Queue.Backend == "memory" {
		return idempotency.NewMemoryStore(a.cfg.Idempotency.TTL), nil
	}

	rdb, err := a.redisClient(ctx)
	if err != nil {
		return nil, err
	}

	return idempotency.NewRedisStore(rdb, a.cfg.Idempotency.TTL), nil
}

func (a *app) processorPool(ctx context.Context) (*worker.Pool, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}

	markers, err := a.markerStore(ctx)
	if err != nil {
		return nil, err
	}

	q, err := a.deliveryQueue()
	if err != nil {
		return nil, err
	}

	svc, err := a.reminderService(ctx)
	if err != nil {
		return nil, err
	}

	p := processor.New(processor.Deps{
		Queue:     q,
		Reminders: svc,
		Registry:  connrepo.NewRepository(db),
		Pusher:    push.NewClient(a.cfg.Push.DefaultAddr, a.cfg.Gateway.ManagementToken, a.cfg.Push.Timeout),
		Markers:   markers,
		Outcomes:  reminderrepo.NewRepository(db),
	}, a.cfg.Retry, a.cfg.Processor.Concurrency)

	return worker.NewPool(q, p, a.cfg.Processor.PoolConfig), nil
}

func (a *app) alertMonitor() (*alert.Monitor, error) {
	q, err := a.deliveryQueue()
	if err != nil {
		return nil, err
	}

	notifiers := make(map[string]alert.Notifier)
	if a.cfg.Telegram.Token != "" {
		notifiers["telegram"] = telegram.NewClient(a.cfg.Telegram.Token)
	}
	if a.cfg.Email.SMTPHost != "" {
		notifiers["email"] = email.NewClient(
			a.cfg.Email.SMTPHost,
			a.cfg.Email.SMTPPort,
			a.cfg.Email.Username,
			a.cfg.Email.Password,
			a.cfg.Email.From,
			a.cfg.Email.Subject,
		)
	}

	return alert.NewMonitor(q, notifiers, a.cfg.Alert.Config), nil
}

func alertJob(m *alert.Monitor) worker.Job {
	return func(ctx context.Context) error {
		_, err := m.Check(ctx)
		return err
	}
}

func (a *app) apiServer(ctx context.Context) (*http.Server, error) {
	svc, err := a.reminderService(ctx)
	if err != nil {
		return nil, err
	}

	q, err := a.deliveryQueue()
	if err != nil {
		return nil, err
	}

	val := validator.New()
	r := router.New(reminder.NewHandler(svc, val, a.cfg), dlq.NewHandler(q, val))

	return server.New(a.cfg.Server.HTTPPort, r), nil
}

// gatewayServer returns the gateway HTTP server and a cleanup that drops
// every connection this instance owns.
func (a *app) gatewayServer(ctx context.Context) (*http.Server, func(context.Context), error) {
	if a.cfg.Gateway.AdvertiseAddr == "" {
		return nil, nil, errors.New("gateway.advertise_addr is required")
	}

	db, err := a.database()
	if err != nil {
		return nil, nil, err
	}

	conns := connrepo.NewRepository(db)
	addr := a.cfg.Gateway.AdvertiseAddr

	// Rows left by a previous run of this instance point at sockets that
	// no longer exist.
	if n, err := conns.RemoveByGateway(ctx, addr); err != nil {
		return nil, nil, fmt.Errorf("remove stale connections: %w", err)
	} else if n > 0 {
		zlog.Logger.Info().Int64("count", n).Str("gateway", addr).Msg("removed stale connections")
	}

	hub := gateway.NewHub()
	jwt := auth.NewJWTManager(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL)
	h := gateway.NewHandler(hub, conns, jwt, addr)
	srv := server.New(a.cfg.Gateway.HTTPPort, gateway.NewRouter(h, a.cfg.Gateway.ManagementToken))

	cleanup := func(ctx context.Context) {
		closed := hub.CloseAll()
		zlog.Logger.Info().Int("clients", len(closed)).Msg("closed client connections")

		if _, err := conns.RemoveByGateway(ctx, addr); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to remove gateway connections")
		}
	}

	return srv, cleanup, nil
}

func serve(name string, srv *http.Server) {
	go func() {
		zlog.Logger.Info().Str("server", name).Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Str("server", name).Msg("failed to start server")
		}
	}()
}

func shutdown(ctx context.Context, name string, srv *http.Server) {
	zlog.Logger.Info().Str("server", name).Msg("shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Logger.Error().Err(err).Str("server", name).Msg("failed to shutdown server")
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Str("server", name).Msg("timeout exceeded, forcing shutdown")
	}
}
