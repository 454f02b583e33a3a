package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sqlh/sqlh/databases"
)

type databasesOptions struct {
	defaultMaxConns   int
	secondaryMaxConns int
}

func newDatabasesCmd() *cobra.Command {
	var opts databasesOptions

	cmd := &cobra.Command{
		Use:   "databases",
		Short: "Open the configured databases and report their status",
		Long: `Open every database configured through the environment and report its status.

The default database comes from DATABASE_URL. Secondary databases come from
DATABASE_<CODE>_URL and are listed under the lowercase code. Failing to open
the default database is an error; secondary databases that fail are reported
as unavailable.`,
		Example: `  DATABASE_URL=postgres://localhost/app \
  DATABASE_GTRA_URL=mysql://tw@localhost/gtra \
  sqlh databases`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := databases.LoadConfig()
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr())
			return runDatabases(cmd.Context(), cmd.OutOrStdout(), &logger, cfg, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.defaultMaxConns, "default-max-conns", databases.DefaultMaxConns, "maximum open connections of the default pool")
	f.IntVar(&opts.secondaryMaxConns, "secondary-max-conns", databases.SecondaryMaxConns, "maximum open connections of each secondary pool")

	return cmd
}

func runDatabases(ctx context.Context, out io.Writer, logger *zerolog.Logger, cfg databases.Config, opts databasesOptions) error {
	if cfg.IsEmpty() {
		fmt.Fprintln(out, "No databases configured. Set DATABASE_URL or DATABASE_<CODE>_URL.")
		return nil
	}

	dbs, err := databases.Init(ctx, cfg, databases.Options{
		DefaultMaxConns:   opts.defaultMaxConns,
		SecondaryMaxConns: opts.secondaryMaxConns,
		Logger:            logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := dbs.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close databases")
		}
	}()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tKIND\tSTATUS")

	if dbs.Default != nil {
		fmt.Fprintf(w, "%s\t%s\t%s\n", dbs.Default.Code, dbs.Default.Kind, "ok")
	}

	codes := make([]string, 0, len(cfg.Secondary))
	for code := range cfg.Secondary {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	for _, code := range codes {
		pool, ok := dbs.ByCode(code)
		if ok {
			fmt.Fprintf(w, "%s\t%s\t%s\n", pool.Code, pool.Kind, "ok")
			continue
		}

		kind := "-"
		if parsed, err := databases.ParseKind(cfg.Secondary[code]); err == nil {
			kind = string(parsed)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", code, kind, "unavailable")
	}

	return w.Flush()
}
