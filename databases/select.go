package databases

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sqlh/sqlh"
)

func reify(pool *Pool, bui *sqlh.Builder) (string, []any, error) {
	if pool == nil {
		return ``, nil, fmt.Errorf("%w: nil pool", sqlh.ErrInvalidInput)
	}
	if bui.Dialect != pool.Dialect {
		return ``, nil, fmt.Errorf(
			"%w: query built for %v, pool %q is %v",
			sqlh.ErrInvalidInput, bui.Dialect, pool.Code, pool.Dialect,
		)
	}
	return pool.Dialect.TryReify(bui.Query)
}

/*
Runs the query and scans every row into `T`. See `sqlh.ScanRows` for the
column mapping. The result is typically fed to `sqlh.ExtractFromOrdered`.
*/
func Select[T any](ctx context.Context, pool *Pool, bui *sqlh.Builder) ([]T, error) {
	text, args, err := reify(pool, bui)
	if err != nil {
		return nil, err
	}

	rows, err := pool.DB.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query database %q: %w", pool.Code, err)
	}
	return sqlh.ScanRows[T](rows)
}

// Counts the rows the query would return, for `sqlh.Pagination.NbItems`.
func Count(ctx context.Context, pool *Pool, bui *sqlh.Builder) (int, error) {
	query := sqlh.Query{
		Text: append([]byte(nil), bui.Query.Text...),
		Args: bui.Query.Args,
	}
	query.WrapSelect(`count(*)`)

	text, args, err := reify(pool, &sqlh.Builder{Dialect: bui.Dialect, Query: query})
	if err != nil {
		return 0, err
	}

	var out int
	if err := pool.DB.QueryRowContext(ctx, text, args...).Scan(&out); err != nil {
		return 0, fmt.Errorf("failed to count rows in database %q: %w", pool.Code, err)
	}
	return out, nil
}

// Runs a statement that returns no rows.
func Exec(ctx context.Context, pool *Pool, bui *sqlh.Builder) (sql.Result, error) {
	text, args, err := reify(pool, bui)
	if err != nil {
		return nil, err
	}

	res, err := pool.DB.ExecContext(ctx, text, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement on database %q: %w", pool.Code, err)
	}
	return res, nil
}
