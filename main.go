package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/config"
	"github.com/borgmon/carebell/pkg/logging"
)

var (
	env    *config.Env
	logger *zap.Logger

	rootCmd = &cobra.Command{
		Use:   "carebell",
		Short: "Medication and appointment alarms that keep ringing until you respond",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if env, err = config.Load(); err != nil {
				return err
			}
			if logger, err = logging.New(env.LogLevel, env.LogFormat); err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp()
		},
		SilenceUsage: true,
	}
)

func main() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Start the tray application (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp()
		},
	})

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write medications and appointments as an iCalendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(out, cmd.OutOrStdout())
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the schedule and today's intake",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.OutOrStdout())
		},
	})

	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runApp() error {
	cb, err := NewCareBell(env, logger)
	if err != nil {
		return err
	}
	cb.Run()
	return nil
}
