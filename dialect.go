package sqlh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mitranim/sqlp"
)

/*
Target database flavor. Queries are always built with Postgres-style ordinal
placeholders; a dialect decides how they're rendered for the driver, how
identifiers are quoted and which operator performs case-insensitive matching.
The zero value is `Postgres`.
*/
type Dialect byte

const (
	Postgres Dialect = iota
	MySQL
	Sqlite
)

// Implement `fmt.Stringer`.
func (self Dialect) String() string {
	switch self {
	case Postgres:
		return `postgres`
	case MySQL:
		return `mysql`
	case Sqlite:
		return `sqlite`
	default:
		return `dialect(` + strconv.Itoa(int(self)) + `)`
	}
}

// Parses a dialect name. Case-insensitive. Accepts a few common aliases.
func ParseDialect(str string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case `postgres`, `postgresql`, `pg`:
		return Postgres, nil
	case `mysql`, `mariadb`:
		return MySQL, nil
	case `sqlite`, `sqlite3`:
		return Sqlite, nil
	default:
		return 0, ErrUnsupportedDatabase.while(`parsing dialect`).because(
			fmt.Errorf(`unknown dialect %q`, str),
		)
	}
}

// Case-insensitive "like" operator for this dialect.
func (self Dialect) Like() string {
	if self == Postgres {
		return `ILIKE`
	}
	return `LIKE`
}

// Quotes a single identifier.
func (self Dialect) QuoteIdent(name string) string {
	switch self {
	case MySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	case Sqlite:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	default:
		return pq.QuoteIdentifier(name)
	}
}

/*
Appends a quoted identifier path. In Postgres, the head of a multi-segment path
is parenthesized so that it's treated as a composite value rather than a table
name:

	("one")."two"

Other dialects join segments with dots:

	`one`.`two`
*/
func (self Dialect) appendPath(buf *[]byte, path []string) {
	composite := self == Postgres && len(path) > 1

	for i, name := range path {
		if i > 0 {
			appendStr(buf, `.`)
		}
		if i == 0 && composite {
			appendEnclosed(buf, `(`, self.QuoteIdent(name), `)`)
		} else {
			appendStr(buf, self.QuoteIdent(name))
		}
	}
}

/*
Converts a query into text and arguments suitable for the database driver.

	Postgres: text unchanged, `$1 $2 $1`
	Sqlite:   numbered placeholders, `?1 ?2 ?1`
	MySQL:    positional placeholders, `? ? ?`

MySQL placeholders are positional, so the arguments are reordered and
duplicated to match each occurrence.
*/
func (self Dialect) Reify(query Query) (string, []any) {
	if self == Postgres {
		return string(query.Text), query.Args
	}

	tokenizer := sqlp.Tokenizer{Source: bytesToMutableString(query.Text)}
	text := make([]byte, 0, len(query.Text))
	var args []any
	if self != MySQL {
		args = query.Args
	}

	for {
		node := tokenizer.Next()
		if node == nil {
			break
		}

		ord, ok := node.(sqlp.NodeOrdinalParam)
		if !ok {
			node.Append(&text)
			continue
		}

		index := ord.Index()
		if index < 0 || index >= len(query.Args) {
			panic(ErrOrdinalOutOfBounds.while(`reifying query for ` + self.String()).because(
				fmt.Errorf(`ordinal parameter %v exceeds argument count %v`, ord, len(query.Args)),
			))
		}

		if self == MySQL {
			appendStr(&text, `?`)
			args = append(args, query.Args[index])
		} else {
			appendStr(&text, `?`+strconv.Itoa(index+1))
		}
	}

	return string(text), args
}

// Same as `.Reify` but returns an error instead of panicking.
func (self Dialect) TryReify(query Query) (text string, args []any, err error) {
	defer rec(&err)
	text, args = self.Reify(query)
	return
}
