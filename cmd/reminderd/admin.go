package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/medreminder/internal/migrations"
	"github.com/aliskhannn/medreminder/pkg/auth"
)

func migrateCmd(configDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(*cobra.Command, []string) error {
			a, err := newApp(*configDir)
			if err != nil {
				return err
			}

			return migrations.Up(a.cfg.Database.Master.DSN())
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, err := cmd.Flags().GetInt("steps")
			if err != nil {
				return err
			}

			a, err := newApp(*configDir)
			if err != nil {
				return err
			}

			return migrations.Down(a.cfg.Database.Master.DSN(), steps)
		},
	}
	down.Flags().Int("steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)

	return cmd
}

func dlqCmd(configDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Inspect and redrive the dead-letter queue",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print dead letters as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, err := cmd.Flags().GetInt("limit")
			if err != nil {
				return err
			}

			a, err := newApp(*configDir)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.requireSharedQueue(); err != nil {
				return err
			}

			q, err := a.deliveryQueue()
			if err != nil {
				return err
			}

			letters, err := q.DeadLetters(cmd.Context(), limit)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			return enc.Encode(letters)
		},
	}
	list.Flags().Int("limit", 50, "maximum number of dead letters to print")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print dead-letter queue depth and oldest message age",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configDir)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.requireSharedQueue(); err != nil {
				return err
			}

			q, err := a.deliveryQueue()
			if err != nil {
				return err
			}

			st, err := q.DeadLetterStats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "depth=%d oldest_age=%s\n", st.Depth, st.OldestAge)

			return nil
		},
	}

	redrive := &cobra.Command{
		Use:   "redrive",
		Short: "Move dead letters back to the delivery queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, err := cmd.Flags().GetInt("limit")
			if err != nil {
				return err
			}

			a, err := newApp(*configDir)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.requireSharedQueue(); err != nil {
				return err
			}

			q, err := a.deliveryQueue()
			if err != nil {
				return err
			}

			n, err := q.Redrive(cmd.Context(), limit)
			if err != nil {
				return err
			}
			zlog.Logger.Info().Int("count", n).Msg("dead letters redriven")

			return nil
		},
	}
	redrive.Flags().Int("limit", 0, "maximum number of messages to move, 0 moves all")

	cmd.AddCommand(list, stats, redrive)

	return cmd
}

func tokenCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a gateway client token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}

			a, err := newApp(*configDir)
			if err != nil {
				return err
			}

			token, err := auth.NewJWTManager(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL).GenerateToken(userID)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}
}
