package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	var configDir string

	rootCmd := &cobra.Command{
		Use:   "reminderd",
		Short: "Medication reminder delivery pipeline",
		PersistentPreRun: func(*cobra.Command, []string) {
			zlog.Init()
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "./config", "directory holding config.yaml")

	rootCmd.AddCommand(
		runCmd(&configDir),
		scannerCmd(&configDir),
		scanOnceCmd(&configDir),
		processorCmd(&configDir),
		gatewayCmd(&configDir),
		apiCmd(&configDir),
		migrateCmd(&configDir),
		dlqCmd(&configDir),
		tokenCmd(&configDir),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
