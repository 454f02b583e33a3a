/*
Package databases opens the connection pools configured through the
environment: one optional default database plus any number of secondary
databases identified by a short code.

	cfg, err := databases.LoadConfig()
	dbs, err := databases.Init(ctx, cfg, databases.Options{Logger: &logger})
	defer dbs.Close()

	pool, ok := dbs.ByCode(`gtra`)
	users, err := databases.Select[User](ctx, pool, pool.Builder(`select * from users`))

Postgres pools use pgx, MySQL pools use go-sql-driver/mysql and sqlite pools use
the pure-Go modernc driver. Every pool is exposed as a `*sql.DB`, with the
matching `sqlh.Dialect` for building queries.
*/
package databases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sqlh/sqlh"
)

// Code of the default pool.
const DefaultCode = `default`

// Pool sizes used when `Options` leaves them at zero.
const (
	DefaultMaxConns   = 10
	SecondaryMaxConns = 5
)

type Options struct {
	// Maximum open connections of the default pool.
	DefaultMaxConns int

	// Maximum open connections of each secondary pool.
	SecondaryMaxConns int

	// Receives pool lifecycle events. Nil disables logging.
	Logger *zerolog.Logger
}

func (self Options) defaultMaxConns() int {
	if self.DefaultMaxConns > 0 {
		return self.DefaultMaxConns
	}
	return DefaultMaxConns
}

func (self Options) secondaryMaxConns() int {
	if self.SecondaryMaxConns > 0 {
		return self.SecondaryMaxConns
	}
	return SecondaryMaxConns
}

func (self Options) logger() *zerolog.Logger {
	if self.Logger != nil {
		return self.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// Open database handle together with its identity.
type Pool struct {
	Code    string
	Kind    Kind
	Dialect sqlh.Dialect
	DB      *sql.DB
}

// Creates a query builder for this pool's dialect.
func (self *Pool) Builder(sql string) *sqlh.Builder {
	return sqlh.NewBuilder(self.Dialect, sql)
}

/*
Opens a pool and verifies it with a ping. The engine is detected from the URL.
A non-positive `maxConns` leaves the driver default.
*/
func Open(ctx context.Context, code, url string, maxConns int) (*Pool, error) {
	kind, err := ParseKind(url)
	if err != nil {
		return nil, err
	}

	db, err := openDB(kind, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database %q: %w", kind, code, err)
	}

	if kind == Sqlite && isSqliteMemory(url) {
		maxConns = 1
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database %q: %w", kind, code, err)
	}

	return &Pool{Code: code, Kind: kind, Dialect: kind.Dialect(), DB: db}, nil
}

/*
Set of pools created by `Init`. `Default` is nil when no default database is
configured. Secondary pools that failed to open are absent.
*/
type Databases struct {
	Default   *Pool
	secondary map[string]*Pool
}

/*
Opens every configured pool concurrently. Failure to open the default pool
fails the whole call, and any pools opened in the meantime are closed.
Failures of secondary pools are logged and the pools are left out.
*/
func Init(ctx context.Context, cfg Config, opts Options) (*Databases, error) {
	log := opts.logger()
	out := &Databases{secondary: make(map[string]*Pool, len(cfg.Secondary))}

	var mu sync.Mutex
	group, ctx := errgroup.WithContext(ctx)

	if cfg.DefaultURL != `` {
		group.Go(func() error {
			pool, err := Open(ctx, DefaultCode, cfg.DefaultURL, opts.defaultMaxConns())
			if err != nil {
				return fmt.Errorf("failed to initialize default database: %w", err)
			}

			log.Info().Str("code", pool.Code).Str("kind", string(pool.Kind)).Msg("Database pool opened")

			mu.Lock()
			out.Default = pool
			mu.Unlock()
			return nil
		})
	} else {
		log.Debug().Msg("No default database configured")
	}

	for code, url := range cfg.Secondary {
		code = strings.ToLower(code)

		group.Go(func() error {
			pool, err := Open(ctx, code, url, opts.secondaryMaxConns())
			if err != nil {
				log.Warn().Err(err).Str("code", code).Msg("Skipping secondary database")
				return nil
			}

			log.Info().Str("code", code).Str("kind", string(pool.Kind)).Msg("Database pool opened")

			mu.Lock()
			out.secondary[code] = pool
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		if closeErr := out.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close pools after initialization error")
		}
		return nil, err
	}

	return out, nil
}

// Returns the secondary pool with the given code. Case-insensitive.
func (self *Databases) ByCode(code string) (*Pool, bool) {
	if self == nil {
		return nil, false
	}
	pool, ok := self.secondary[strings.ToLower(code)]
	return pool, ok
}

// Sorted codes of the open secondary pools.
func (self *Databases) Codes() []string {
	if self == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(self.secondary))
}

// Returns the number of open pools, default included.
func (self *Databases) Len() int {
	if self == nil {
		return 0
	}
	count := len(self.secondary)
	if self.Default != nil {
		count++
	}
	return count
}

// Closes every pool. Safe to call on nil.
func (self *Databases) Close() error {
	if self == nil {
		return nil
	}

	var errs []error
	if self.Default != nil {
		errs = append(errs, self.Default.DB.Close())
	}
	for _, code := range self.Codes() {
		errs = append(errs, self.secondary[code].DB.Close())
	}
	return errors.Join(errs...)
}
