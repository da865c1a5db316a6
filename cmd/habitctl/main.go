// Package main implements habitctl, the operator CLI for a habitsync database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"habitsync/internal/app"
	"habitsync/internal/config"
	"habitsync/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "habitctl",
	Short:        "Maintenance commands for a habitsync database",
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep <user-id>",
	Short: "Run the daily reset check for one user",
	Args:  cobra.ExactArgs(1),
	RunE:  runSweep,
}

var statsCmd = &cobra.Command{
	Use:   "stats <user-id>",
	Short: "Print a user's stats summary as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Print instance-wide counts as JSON",
	Args:  cobra.NoArgs,
	RunE:  runOverview,
}

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant admin access to a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromote,
}

var promoteRevoke bool

func init() {
	promoteCmd.Flags().BoolVar(&promoteRevoke, "revoke", false, "Remove admin access instead")
	rootCmd.AddCommand(migrateCmd, sweepCmd, statsCmd, overviewCmd, promoteCmd)
}

// openApp loads configuration from the environment and opens the database.
// Opening applies migrations.
func openApp(ctx context.Context) (*app.App, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg.Log)
	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	a, log, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	log.Info("migrations applied")
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	a, _, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	res, err := a.Scheduler.CheckAndReset(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, res)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, _, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	summary, err := a.Stats.Summary(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, summary)
}

func runOverview(cmd *cobra.Command, _ []string) error {
	a, _, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	o, err := a.Stats.Overview(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, o)
}

func runPromote(cmd *cobra.Command, args []string) error {
	a, _, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.Users.SetAdmin(cmd.Context(), args[0], !promoteRevoke); err != nil {
		return err
	}
	verb := "promoted"
	if promoteRevoke {
		verb = "revoked"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, args[0])
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
