package sqlh

/*
Scans a struct, accumulating fields tagged with `db` into a map suitable for
`Query.AppendNamed`. The input must be a struct or a struct pointer. A nil
pointer is fine and produces an empty non-nil map. Panics on other inputs.
Embedded structs are treated as part of enclosing structs.
*/
func StructMap(input any) map[string]any {
	dict := map[string]any{}
	traverseStructDbFields(input, func(name string, value any) {
		dict[name] = value
	})
	return dict
}

/*
Scans a struct, converting fields tagged with `db` into a sequence of
`NamedArgs`, in field order. Same input rules as `StructMap`.
*/
func StructNamedArgs(input any) NamedArgs {
	var args NamedArgs
	traverseStructDbFields(input, func(name string, value any) {
		args = append(args, Named(name, value))
	})
	return args
}

// Sequence of named SQL arguments. Usually obtained from `StructNamedArgs`.
type NamedArgs []NamedArg

/*
Returns a query suitable for a column list:

	"one", "two"
*/
func (self NamedArgs) Names() Query {
	var query Query
	self.appendNames(&query)
	return query
}

func (self NamedArgs) appendNames(query *Query) {
	for i, arg := range self {
		if i > 0 {
			appendStr(&query.Text, `, `)
		}
		appendStr(&query.Text, Postgres.QuoteIdent(arg.Name))
	}
}

/*
Returns a query suitable for a `values ()` clause:

	$1, $2
*/
func (self NamedArgs) Values() Query {
	query := Query{Args: make([]any, 0, len(self))}
	self.appendValues(&query)
	return query
}

func (self NamedArgs) appendValues(query *Query) {
	for i, arg := range self {
		if i > 0 {
			appendStr(&query.Text, `, `)
		}
		query.appendArg(arg.Value)
	}
}

/*
Returns a query suitable for an `insert` clause:

	("one", "two") values ($1, $2)

When empty, returns `default values`.
*/
func (self NamedArgs) NamesAndValues() Query {
	if len(self) == 0 {
		return Query{Text: []byte(`default values`)}
	}

	query := Query{Args: make([]any, 0, len(self))}
	appendStr(&query.Text, `(`)
	self.appendNames(&query)
	appendStr(&query.Text, `) values (`)
	self.appendValues(&query)
	appendStr(&query.Text, `)`)
	return query
}

/*
Returns a query suitable for a `where` clause. Nil-equivalent values become
`is null`:

	"one" = $1 and "two" is null

When empty, returns `true`.
*/
func (self NamedArgs) Conditions() Query {
	if len(self) == 0 {
		return Query{Text: []byte(`true`)}
	}

	var query Query
	for i, arg := range self {
		if i > 0 {
			query.Append(`and`)
		}

		arg.queryAppendName(Postgres, &query)
		val, ok := arg.Norm()
		if ok {
			query.Append(`= $1`, val)
		} else {
			query.Append(`is null`)
		}
	}
	return query
}

// Returns a subset of args whose values are not nil-equivalent.
func (self NamedArgs) Present() NamedArgs {
	var out NamedArgs
	for _, arg := range self {
		if !arg.IsNil() {
			out = append(out, arg)
		}
	}
	return out
}

// Convenience function for creating a named arg without struct field labels.
func Named(name string, value any) NamedArg {
	return NamedArg{Name: name, Value: value}
}

// Same as `sql.NamedArg`, with additional methods. See `NamedArgs`.
type NamedArg struct {
	Name  string
	Value any
}

/*
Normalizes the inner value: dereferences pointers and encodes
`driver.Valuer`s. The boolean is false when the value would be `null` in SQL.
*/
func (self NamedArg) Norm() (any, bool) { return norm(self.Value) }

/*
Returns true if the value would be equivalent to `null` in SQL. This is NOT the
same as comparing the value to `nil`:

	NamedArg{Value: (*string)(nil)}.Value == nil // false
	NamedArg{Value: (*string)(nil)}.IsNil()      // true
*/
func (self NamedArg) IsNil() bool {
	_, ok := self.Norm()
	return !ok
}

func (self NamedArg) queryAppendName(dialect Dialect, query *Query) {
	appendSpaceIfNeeded(&query.Text)
	appendStr(&query.Text, dialect.QuoteIdent(self.Name))
}
