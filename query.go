package sqlh

import (
	"fmt"

	"github.com/mitranim/sqlp"
)

/*
If true (default), unused query arguments cause panics in `Query.Append` and
`Query.AppendNamed`. Turning this off can be convenient in development, when
changing queries rapidly.
*/
var CheckUnused = true

/*
Interface that allows compatibility between different query variants.
Sub-query interpolation, supported by `Query.Append` and `Query.AppendNamed`,
detects instances of this interface rather than the concrete type `Query`.
Implemented by `Query`, `Ords` and `Ord`.
*/
type IQuery interface{ QueryAppend(*Query) }

/*
Parametrized SQL fragment: text plus arguments. The text always uses
Postgres-style ordinal placeholders `$1`, `$2`, ..., regardless of the target
database. `Dialect.Reify` converts it to the placeholder style of the actual
database.

Ordinal placeholders are renumerated when appending code. See `.Append`.
*/
type Query struct {
	Text []byte
	Args []any
}

// Implement `fmt.Stringer`.
func (self Query) String() string {
	return bytesToMutableString(self.Text)
}

// Implement `IQuery`.
func (self Query) QueryAppend(out *Query) {
	out.Append(bytesToMutableString(self.Text), self.Args...)
}

/*
Appends code and arguments. Renumerates ordinal parameters, offsetting them by
the previous argument count. The count in the code always starts from `$1`.

Composable: any `IQuery` found in the arguments is interpolated in place of its
parameter, combining the arguments and renumerating as appropriate.

For example, this:

	var query Query
	query.Append(`where true`)
	query.Append(`and one = $1`, 10)
	query.Append(`and two = $1`, 20) // Note the $1.

Is equivalent to:

	text := `where true and one = $1 and two = $2`
	args := []any{10, 20}

Panics when: the code is malformed; the code has named parameters; a parameter
doesn't have a corresponding argument; an argument doesn't have a corresponding
parameter. Use `.TryAppend` to get an error instead.
*/
func (self *Query) Append(src string, args ...any) {
	if len(args) > bitsetSize {
		panic(ErrTooManyArguments.while(`appending to query`).because(
			fmt.Errorf(`expected no more than %v args, got %v`, bitsetSize, len(args)),
		))
	}

	tokenizer := sqlp.Tokenizer{Source: src}
	startOffset := len(self.Args)
	appendNonQueries(&self.Args, args)
	appendSpaceIfNeeded(&self.Text)

	var used bitset

	for {
		node := tokenizer.Next()
		if node == nil {
			break
		}

		switch node := node.(type) {
		case sqlp.NodeOrdinalParam:
			index := node.Index()
			if index < 0 || index >= len(args) {
				panic(ErrOrdinalOutOfBounds.while(`appending to query`).because(
					fmt.Errorf(`ordinal parameter %v exceeds argument count %v`, node, len(args)),
				))
			}

			used.set(index)
			query, ok := args[index].(IQuery)
			if ok {
				query.QueryAppend(self)
			} else {
				ord := sqlp.NodeOrdinalParam(int(node) + startOffset - queryArgsBefore(args, index))
				ord.Append(&self.Text)
			}

		case sqlp.NodeNamedParam:
			panic(ErrUnexpectedParameter.while(`appending to query`).because(
				fmt.Errorf(`expected only ordinal params, got named param %q`, node),
			))

		default:
			node.Append(&self.Text)
		}
	}

	if CheckUnused {
		for i, arg := range args {
			if !used.has(i) {
				panic(ErrUnusedArgument.while(`appending to query`).because(
					fmt.Errorf(`unused argument %#v at index %v`, arg, i),
				))
			}
		}
	}
}

// Same as `.Append` but returns an error instead of panicking. On error, the
// query may be partially modified.
func (self *Query) TryAppend(src string, args ...any) (err error) {
	defer rec(&err)
	self.Append(src, args...)
	return
}

/*
Appends code and named arguments. The code must have named parameters in the
form ":identifier". The keys in the arguments map must have the form
"identifier", without a leading ":". Named parameters are converted to
ordinals; repeated names share one argument.

	var query Query
	query.AppendNamed(
		`select col where col = :value`,
		map[string]any{"value": 10},
	)

Is equivalent to:

	text := `select col where col = $1`
	args := []any{10}
*/
func (self *Query) AppendNamed(src string, args map[string]any) {
	tokenizer := sqlp.Tokenizer{Source: src}
	namedToOrd := make(map[sqlp.NodeNamedParam]sqlp.NodeOrdinalParam, len(args))
	appendSpaceIfNeeded(&self.Text)

	for {
		node := tokenizer.Next()
		if node == nil {
			break
		}

		switch node := node.(type) {
		case sqlp.NodeOrdinalParam:
			panic(ErrUnexpectedParameter.while(`appending to query`).because(
				fmt.Errorf(`expected only named params, got ordinal param %q`, node),
			))

		case sqlp.NodeNamedParam:
			arg, found := args[string(node)]
			if !found {
				panic(ErrMissingArgument.while(`appending to query`).because(
					fmt.Errorf(`missing named argument %q`, node),
				))
			}

			query, ok := arg.(IQuery)
			if ok {
				// Value doesn't matter. Marks the argument as used.
				namedToOrd[node] = 0
				query.QueryAppend(self)
				continue
			}

			ord, ok := namedToOrd[node]
			if !ok {
				self.Args = append(self.Args, arg)
				ord = sqlp.NodeOrdinalParam(len(self.Args))
				namedToOrd[node] = ord
			}
			ord.Append(&self.Text)

		default:
			node.Append(&self.Text)
		}
	}

	if CheckUnused {
		for key := range args {
			_, ok := namedToOrd[sqlp.NodeNamedParam(key)]
			if !ok {
				panic(ErrUnusedArgument.while(`appending to query`).because(
					fmt.Errorf(`unused named argument %q`, key),
				))
			}
		}
	}
}

/*
Inverse of `IQuery.QueryAppend`. Appends the other query to this one,
combining the arguments and renumerating the ordinal parameters. Nil is a nop.
*/
func (self *Query) AppendQuery(query IQuery) {
	if query != nil {
		query.QueryAppend(self)
	}
}

// Appends an argument and its ordinal parameter without any spacing.
func (self *Query) appendArg(val any) {
	self.Args = append(self.Args, val)
	sqlp.NodeOrdinalParam(len(self.Args)).Append(&self.Text)
}

// "Zeroes" the query, keeping any already-allocated capacity.
func (self *Query) Clear() {
	self.Text = self.Text[:0]
	self.Args = self.Args[:0]
}

/*
Wraps the query to select only the specified expressions:

	var query Query
	query.Append(`select * from some_table`)
	query.WrapSelect(`one, two`)

	text := `with _ as (select * from some_table) select one, two from _`
*/
func (self *Query) WrapSelect(exprs string) {
	const (
		s0 = `with _ as (`
		s1 = `) select `
		s2 = ` from _`
	)

	buf := make([]byte, 0, len(s0)+len(self.Text)+len(s1)+len(exprs)+len(s2))
	appendStr(&buf, s0)
	buf = append(buf, self.Text...)
	appendStr(&buf, s1)
	appendStr(&buf, exprs)
	appendStr(&buf, s2)

	self.Text = buf
}

// Wraps the query to select the columns derived by `Cols(dest)`. See
// `.WrapSelect`.
func (self *Query) WrapSelectCols(dest any) {
	self.WrapSelect(Cols(dest))
}
