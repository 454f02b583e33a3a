package sqlh

import (
	"reflect"

	"github.com/mitranim/refut"
)

/*
Takes a struct and generates a list of column names suitable for a `select`
clause, using Postgres quoting. Also accepts struct pointers, struct slices and
struct slice pointers; nil values are fine as long as they carry a struct
type. Any other input causes a panic.

Nested non-scannable structs tagged with `db` are expanded into their fields
and aliased with dotted paths:

	type Team struct {
		Id    int64 `db:"id"`
		Owner User  `db:"owner"`
	}

	Cols(Team{}) == `"id", ("owner")."id" as "owner.id"`

See `Dialect.Cols` for other dialects.
*/
func Cols(dest any) string { return Postgres.Cols(dest) }

// Same as `Cols` but quotes identifiers for this dialect.
func (self Dialect) Cols(dest any) string {
	rtype := structRtypeOf(dest, `generating struct columns for select clause`)
	var buf []byte
	appendColsFor(&buf, self, structRtypeColPaths(rtype, nil))
	return bytesToMutableString(buf)
}

func structRtypeColPaths(rtype reflect.Type, prefix []string) [][]string {
	var out [][]string

	err := refut.TraverseStructRtype(rtype, func(sfield reflect.StructField, _ []int) error {
		colName := sfieldColumnName(sfield)
		if colName == "" {
			return nil
		}

		path := append(append([]string(nil), prefix...), colName)
		fieldRtype := refut.RtypeDeref(sfield.Type)

		if fieldRtype.Kind() == reflect.Struct && !isScannableRtype(fieldRtype) {
			out = append(out, structRtypeColPaths(fieldRtype, path)...)
			return nil
		}

		out = append(out, path)
		return nil
	})
	try(err)

	return out
}

func appendColsFor(buf *[]byte, dialect Dialect, paths [][]string) {
	for i, path := range paths {
		if i > 0 {
			appendStr(buf, `, `)
		}

		dialect.appendPath(buf, path)
		if len(path) > 1 {
			appendStr(buf, ` as `)
			appendStr(buf, dialect.QuoteIdent(joinPath(path)))
		}
	}
}

func joinPath(path []string) string {
	var buf []byte
	for i, name := range path {
		if i > 0 {
			appendStr(&buf, `.`)
		}
		appendStr(&buf, name)
	}
	return string(buf)
}
