package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Command group IDs
const (
	groupDatabase = "database"
	groupUtility  = "utility"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "sqlh",
		Short: "SQL helper diagnostics",
		Long: `sqlh - SQL helper diagnostics

Opens the connection pools configured through DATABASE_URL and
DATABASE_<CODE>_URL, and computes pagination for LIMIT/OFFSET queries.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddGroup(
		&cobra.Group{ID: groupDatabase, Title: "Database:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	databasesCmd := newDatabasesCmd()
	databasesCmd.GroupID = groupDatabase
	pagesCmd := newPagesCmd()
	pagesCmd.GroupID = groupUtility
	versionCmd := newVersionCmd()
	versionCmd.GroupID = groupUtility

	cmd.AddCommand(databasesCmd, pagesCmd, versionCmd)
	return cmd
}

// Console logger writing to the command's error stream.
func newLogger(out io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
