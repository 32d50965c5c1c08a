package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	fxmodules "ranked-profile/internal/fx"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var (
	logLevel  string
	tiersPath string
)

var rootCmd = &cobra.Command{
	Use:   "rankedprofile",
	Short: "Ranked player profile tool",
	Long:  "Show a ranked player's profile, rating timeline and season record, and look up rating tiers.",

	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&tiersPath, "tiers", "", "YAML tier table (overrides TIER_TABLE_PATH)")

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(tierCmd)
}

// populate builds the dependency graph and fills targets, which must be
// pointers to provided types.
func populate(targets ...any) error {
	// logger and config read the environment, so flags are applied there
	if logLevel != "" {
		if err := os.Setenv("LOG_LEVEL", logLevel); err != nil {
			return err
		}
	}
	if tiersPath != "" {
		if err := os.Setenv("TIER_TABLE_PATH", tiersPath); err != nil {
			return err
		}
	}

	app := fx.New(
		fxmodules.Module,
		fx.NopLogger,
		fx.Populate(targets...),
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	return nil
}
