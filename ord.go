package sqlh

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mitranim/refut"
)

var ordReg = regexp.MustCompile(
	`^\s*((?:\w+\.)*\w+)(?i)(?:\s+(asc|desc))?(?:\s+nulls\s+(first|last))?\s*$`,
)

/*
Short for "orderings". Structured representation of an SQL ordering such as:

	order by "some_col" asc, ("nested")."other_col" desc

The sequence may include arbitrary SQL expressions as `IQuery` instances, but
when decoding external input, every element is an `Ord`.

`.Type` is used for parsing external input. It must be a struct type. Every
field path in the input is looked up by `json` names and converted to `db`
names. Identifiers without the corresponding pair of `json` and `db` tags cause
a parse error.

	ords := OrdsFor(SomeStruct{})
	err := ords.UnmarshalJSON([]byte(`["one asc", "two.three desc"]`))

The result is equivalent to:

	OrdsFrom(OrdAsc(`one`), OrdDesc(`two`, `three`))
*/
type Ords struct {
	Items []IQuery
	Type  reflect.Type
}

// Shortcut for creating `Ords` without a type.
func OrdsFrom(items ...IQuery) Ords { return Ords{Items: items} }

// Shortcut for empty `Ords` intended for parsing. The input is only a type
// carrier.
func OrdsFor(val any) Ords { return Ords{Type: reflect.TypeOf(val)} }

// Implement decoding from a JSON array of strings.
func (self *Ords) UnmarshalJSON(input []byte) error {
	var vals []string
	err := json.Unmarshal(input, &vals)
	if err != nil {
		return ErrInvalidInput.while(`decoding orderings`).because(err)
	}
	return self.ParseSlice(vals)
}

/*
Parses string slices, which may come from URL queries, form-encoded data, and
so on. Each string has the form "<ident> [asc|desc] [nulls first|last]" where
"<ident>" is a dot-separated path of json field names.
*/
func (self *Ords) ParseSlice(vals []string) error {
	self.Items = make([]IQuery, 0, len(vals))

	for _, val := range vals {
		ord, err := self.parseOrd(val)
		if err != nil {
			return err
		}
		self.Items = append(self.Items, ord)
	}
	return nil
}

func (self Ords) parseOrd(str string) (Ord, error) {
	match := ordReg.FindStringSubmatch(str)
	if match == nil {
		return Ord{}, ErrInvalidInput.while(`parsing ordering`).because(fmt.Errorf(
			`%q is not a valid ordering string; expected format: "<ident> asc|desc [nulls first|last]"`, str,
		))
	}

	path, err := dbPathByJsonPath(self.Type, strings.Split(match[1], `.`))
	if err != nil {
		return Ord{}, err
	}

	return Ord{
		Path:      path,
		Desc:      strings.EqualFold(match[2], `desc`),
		NullsLast: strings.EqualFold(match[3], `last`),
	}, nil
}

// Implement `IQuery` using Postgres quoting. Empty orderings append nothing.
func (self Ords) QueryAppend(out *Query) { self.AppendDialect(Postgres, out) }

// Appends an `order by` clause quoted for the given dialect. Non-`Ord` items
// are appended as-is.
func (self Ords) AppendDialect(dialect Dialect, out *Query) {
	first := true

	for _, val := range self.Items {
		if val == nil {
			continue
		}

		if first {
			out.Append(`order by`)
			first = false
		} else {
			appendStr(&out.Text, `,`)
		}

		ord, ok := val.(Ord)
		if ok {
			appendSpaceIfNeeded(&out.Text)
			ord.appendDialect(dialect, &out.Text)
		} else {
			val.QueryAppend(out)
		}
	}
}

// Returns true if there are no non-nil items.
func (self Ords) IsEmpty() bool { return self.Len() == 0 }

// Returns the amount of non-nil items.
func (self Ords) Len() (count int) {
	for _, val := range self.Items {
		if val != nil {
			count++
		}
	}
	return
}

// Convenience method for appending.
func (self *Ords) Append(items ...IQuery) {
	self.Items = append(self.Items, items...)
}

// If empty, replaces items with the provided fallback. Otherwise does nothing.
func (self *Ords) Or(items ...IQuery) {
	if self.IsEmpty() {
		self.Items = items
	}
}

func OrdAsc(path ...string) Ord    { return Ord{Path: path} }
func OrdDesc(path ...string) Ord   { return Ord{Path: path, Desc: true} }
func OrdAscNl(path ...string) Ord  { return Ord{Path: path, NullsLast: true} }
func OrdDescNl(path ...string) Ord { return Ord{Path: path, Desc: true, NullsLast: true} }

/*
Short for "ordering". Describes an SQL ordering like:

	"some_col" asc

	("nested")."other_col" desc nulls last

Identifiers are quoted when encoding. The zero value of `Desc` means ascending,
which is the SQL default.
*/
type Ord struct {
	Path      []string
	Desc      bool
	NullsLast bool
}

// Returns the Postgres representation.
func (self Ord) String() string {
	var buf []byte
	self.appendDialect(Postgres, &buf)
	return bytesToMutableString(buf)
}

// Implement `IQuery`, allowing this to be placed in `Ords`.
func (self Ord) QueryAppend(out *Query) {
	appendSpaceIfNeeded(&out.Text)
	self.appendDialect(Postgres, &out.Text)
}

// MySQL has no "nulls last"; it's emulated by sorting on `is null` first.
func (self Ord) appendDialect(dialect Dialect, buf *[]byte) {
	if self.NullsLast && dialect == MySQL {
		dialect.appendPath(buf, self.Path)
		appendStr(buf, ` is null, `)
	}

	dialect.appendPath(buf, self.Path)
	if self.Desc {
		appendStr(buf, ` desc`)
	} else {
		appendStr(buf, ` asc`)
	}

	if self.NullsLast && dialect != MySQL {
		appendStr(buf, ` nulls last`)
	}
}

/*
Walks a struct type by json field names, collecting the db names. Descends into
nested struct fields. Fails when a segment has no json/db pair.
*/
func dbPathByJsonPath(rtype reflect.Type, jsonPath []string) ([]string, error) {
	if rtype == nil {
		return nil, ErrInvalidInput.while(`resolving ordering path`).because(
			errors.New(`missing struct type for ordering`),
		)
	}

	out := make([]string, 0, len(jsonPath))

	for i, name := range jsonPath {
		rtype = refut.RtypeDeref(rtype)
		if rtype.Kind() != reflect.Struct {
			return nil, ErrUnknownField.while(`resolving ordering path`).because(fmt.Errorf(
				`%q: %v is not a struct`, strings.Join(jsonPath[:i+1], `.`), rtype,
			))
		}

		sfield, ok := structFieldByJsonName(rtype, name)
		if !ok {
			return nil, ErrUnknownField.while(`resolving ordering path`).because(fmt.Errorf(
				`no field with json name %q and a db name in %v`, strings.Join(jsonPath[:i+1], `.`), rtype,
			))
		}

		out = append(out, sfieldColumnName(sfield))
		rtype = sfield.Type
	}

	return out, nil
}

func structFieldByJsonName(rtype reflect.Type, name string) (out reflect.StructField, found bool) {
	errFound := errors.New(`found`)

	err := refut.TraverseStructRtype(rtype, func(sfield reflect.StructField, _ []int) error {
		if sfieldJsonName(sfield) == name && sfieldColumnName(sfield) != "" {
			out = sfield
			found = true
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		panic(err)
	}
	return
}
