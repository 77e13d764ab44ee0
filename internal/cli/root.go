// Package cli implements the learnloop command-line client.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"learnloop/internal/app"
	"learnloop/internal/config"
)

const (
	formatJSON = "json"
	formatText = "text"
)

var (
	dbPath     string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "learnloop",
	Short:         "Study assistant over your own documents",
	Long:          "Ingest documents, search and question them, and practice their concepts with generated quizzes.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if formatFlag != formatJSON && formatFlag != formatText {
			return fmt.Errorf("invalid format %q: must be json or text", formatFlag)
		}
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $DB_PATH or ./data/learnloop.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", formatText, "Output format: json or text")
}

// Execute runs the root command until it finishes or the process is interrupted, and
// reports a failure on stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := RootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

// openApp loads the configuration and wires the application. Logs go to stderr so
// command output stays parseable.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	slog.SetDefault(app.NewLogger(cfg, cmd.ErrOrStderr()))
	return app.New(cmd.Context(), cfg)
}
