package databases

import (
	"fmt"
	"strings"

	"github.com/sqlh/sqlh"
)

// Database engine, derived from the scheme of a connection URL.
type Kind string

const (
	Postgres Kind = `postgres`
	Sqlite   Kind = `sqlite`
	MySQL    Kind = `mysql`
)

/*
Detects the engine from a connection URL:

	postgres://, postgresql://, pg://  -> Postgres
	sqlite:, sqlite3:, file:           -> Sqlite
	mysql://, mariadb://               -> MySQL
*/
func ParseKind(url string) (Kind, error) {
	scheme, _, ok := strings.Cut(url, `:`)
	if ok {
		switch strings.ToLower(scheme) {
		case `postgres`, `postgresql`, `pg`:
			return Postgres, nil
		case `sqlite`, `sqlite3`, `file`:
			return Sqlite, nil
		case `mysql`, `mariadb`:
			return MySQL, nil
		}
	}
	return ``, fmt.Errorf("%w: unknown database type in %q", sqlh.ErrUnsupportedDatabase, redact(url))
}

// Dialect used to build queries for this engine.
func (self Kind) Dialect() sqlh.Dialect {
	switch self {
	case MySQL:
		return sqlh.MySQL
	case Sqlite:
		return sqlh.Sqlite
	default:
		return sqlh.Postgres
	}
}

// Strips credentials so that URLs can appear in errors and logs.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, `://`)
	if !ok {
		return url
	}
	authority, path, _ := strings.Cut(rest, `/`)
	at := strings.LastIndex(authority, `@`)
	if at < 0 {
		return url
	}

	out := scheme + `://***@` + authority[at+1:]
	if len(rest) > len(authority) {
		out += `/` + path
	}
	return out
}
