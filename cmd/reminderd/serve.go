package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/medreminder/internal/worker"
)

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

func runCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every pipeline stage in one process",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			a, err := newApp(*configDir)
			if err != nil {
				return err
			}
			defer a.close()

			s, err := a.newScanner()
			if err != nil {
				return err
			}
			pool, err := a.processorPool(ctx)
			if err != nil {
				return err
			}
			monitor, err := a.alertMonitor()
			if err != nil {
				return err
			}
			api, err := a.apiServer(ctx)
			if err != nil {
				return err
			}
			gw, cleanup, err := a.gatewayServer(ctx)
			if err != nil {
				return err
			}

			sched := worker.NewScheduler(nil)
			if err := sched.Add("scan", a.cfg.Scanner.Cron, a.cfg.Scanner.Timeout, scanJob(s)); err != nil {
				return err
			}
			if err := sched.Add("dlq-alert", a.cfg.Alert.Cron, 0, alertJob(monitor)); err != nil {
				return err
			}

			serve("gateway", gw)
			serve("api", api)

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				pool.Run(ctx)
			}()
			sched.Start()

			<-ctx.Done()
			zlog.Logger.Info().Msg("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			sched.Stop()
			cleanup(shutdownCtx)
			shutdown(shutdownCtx, "gateway", gw)
			shutdown(shutdownCtx, "api", api)
			wg.Wait()

			return nil
		},
	}
}

func scannerCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scanner",
		Short: "Trigger scan cycles on the configured schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			a, err := newApp(*configDir)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.requireSharedQueue(); err != nil {
				return err
			}

			s, err := a.newScanner()
			if err != nil {
				return err
			}

			sched := worker.NewScheduler(nil)
			if err := sched.Add("scan", a.cfg.Scanner.Cron, a.cfg.Scanner.Timeout, scanJob(s)); err != nil {
				return err
			}
			sched.Start()

			<-ctx.Done()
			zlog.Logger.Info().Msg("shutdown signal received")
			sched.Stop()

			return nil
		},
	}
}

func scanOnceCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scan-once",
		Short: "Run a single scan cycle and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configDir)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.requireSharedQueue(); err != nil {
				return err
			}

			s, err := a.newScanner()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if a.cfg.Scanner.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, a.cfg.Scanner.Timeout)
				defer cancel()
			}

			return scanJob(s)(ctx)
		},
	}
}

func processorCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "processor",
		Short: "Consume the delivery queue and push reminders to connected clients",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			a, err := newApp(*configDir)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.requireSharedQueue(); err != nil {
				return err
			}

			pool, err := a.processorPool(ctx)
			if err != nil {
				return err
			}
			monitor, err := a.alertMonitor()
			if err != nil {
				return err
			}

			sched := worker.NewScheduler(nil)
			if err := sched.Add("dlq-alert", a.cfg.Alert.Cron, 0, alertJob(monitor)); err != nil {
				return err
			}
			sched.Start()

			pool.Run(ctx)
			zlog.Logger.Info().Msg("processor stopped")
			sched.Stop()

			return nil
		},
	}
}

func gatewayCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "gateway",
		Short: "Serve WebSocket client connections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			a, err := newApp(*configDir)
			if err != nil {
				return err
			}
			defer a.close()

			gw, cleanup, err := a.gatewayServer(ctx)
			if err != nil {
				return err
			}
			serve("gateway", gw)

			<-ctx.Done()
			zlog.Logger.Info().Msg("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			cleanup(shutdownCtx)
			shutdown(shutdownCtx, "gateway", gw)

			return nil
		},
	}
}

func apiCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Serve the reminder and dead-letter management API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			a, err := newApp(*configDir)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.requireSharedQueue(); err != nil {
				return err
			}

			api, err := a.apiServer(ctx)
			if err != nil {
				return err
			}
			serve("api", api)

			<-ctx.Done()
			zlog.Logger.Info().Msg("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			shutdown(shutdownCtx, "api", api)

			return nil
		},
	}
}
