package sqlh

import (
	"reflect"

	"github.com/lib/pq"
)

/*
Incremental builder of a parametrized statement for a specific dialect. Most
methods take an optional value and append nothing when the value is absent:
nil, a nil pointer, or a `driver.Valuer` such as `sql.NullString` that encodes
to nil. This allows building filters from optional request fields without
branching:

	var bui Builder
	bui.Dialect = MySQL
	bui.Push(`select * from users where true`).
		PushValue(`and team_id =`, req.TeamId).
		LikeStartsWith(`and name`, req.Name).
		SetPagination(`order by id`, pagination)

	text, args := bui.Build()

Methods panic on malformed SQL, like `Query.Append`. Use `.Catch` to convert
such panics into errors.
*/
type Builder struct {
	Dialect Dialect
	Query   Query
}

// Shortcut for a builder with the given dialect and initial SQL text.
func NewBuilder(dialect Dialect, sql string) *Builder {
	bui := &Builder{Dialect: dialect}
	if sql != "" {
		bui.Push(sql)
	}
	return bui
}

// Appends raw SQL without arguments, space-separated from previous text.
func (self *Builder) Push(sql string) *Builder {
	self.Query.Append(sql)
	return self
}

// Appends SQL with ordinal parameters starting at `$1`. See `Query.Append`.
func (self *Builder) Append(sql string, args ...any) *Builder {
	self.Query.Append(sql, args...)
	return self
}

// Appends a sub-query or `Ords`. Nil is a nop.
func (self *Builder) AppendQuery(query IQuery) *Builder {
	self.Query.AppendQuery(query)
	return self
}

/*
Appends the SQL immediately followed by a parameter for the value. Nop when the
value is absent.

	bui.PushValue(`and field =`, 10)  // and field = $1
*/
func (self *Builder) PushValue(sql string, val any) *Builder {
	val, ok := norm(val)
	if ok {
		self.Query.Append(sql+` $1`, val)
	}
	return self
}

// Appends a parameter for the value. Nop when the value is absent.
func (self *Builder) Bind(val any) *Builder {
	val, ok := norm(val)
	if ok {
		self.Query.Append(`$1`, val)
	}
	return self
}

// Prefix match:
//
//	bui.LikeStartsWith(`and name`, `hank`) // and name ILIKE CONCAT($1::text,'%')
func (self *Builder) LikeStartsWith(sql string, val any) *Builder {
	val, ok := norm(val)
	if ok {
		self.Query.Append(sql+` `+self.Dialect.Like()+` CONCAT(`+self.textParam()+`,'%')`, val)
	}
	return self
}

// Substring match:
//
//	bui.LikeWithin(`and name`, `hank`) // and name ILIKE CONCAT('%',$1::text,'%')
func (self *Builder) LikeWithin(sql string, val any) *Builder {
	val, ok := norm(val)
	if ok {
		self.Query.Append(sql+` `+self.Dialect.Like()+` CONCAT('%',`+self.textParam()+`,'%')`, val)
	}
	return self
}

/*
Appends the SQL followed by a parenthesized list of parameters. Absent
elements are skipped. Nop when nothing remains. The list may be arbitrarily
long.

	bui.InValues(`and code IN`, []any{"a", "b"})     // and code IN ($1,$2)
	bui.InValues(`and code NOT IN`, []any{"a", "b"}) // and code NOT IN ($1,$2)
*/
func (self *Builder) InValues(sql string, vals []any) *Builder {
	args := make([]any, 0, len(vals))
	for _, val := range vals {
		val, ok := norm(val)
		if ok {
			args = append(args, val)
		}
	}
	if len(args) == 0 {
		return self
	}

	// A single `Query.Append` accepts a limited number of arguments.
	self.Query.Append(sql + ` (`)
	for i, val := range args {
		if i > 0 {
			appendStr(&self.Query.Text, `,`)
		}
		self.Query.appendArg(val)
	}
	appendStr(&self.Query.Text, `)`)
	return self
}

// Shortcut for `.InValues` with strings.
func (self *Builder) InStr(sql string, vals []string) *Builder {
	return self.InValues(sql, anySlice(vals))
}

// Shortcut for `.InValues` with ints.
func (self *Builder) InInt(sql string, vals []int) *Builder {
	return self.InValues(sql, anySlice(vals))
}

/*
Matches against a list with a single array parameter in Postgres, avoiding
one parameter per element:

	bui.AnyOf(`and code`, []string{"a", "b"}) // and code = ANY($1)

Other dialects don't have array parameters and fall back to `.InValues` with
"IN". Nop when the list is empty. `vals` must be a slice.
*/
func (self *Builder) AnyOf(sql string, vals any) *Builder {
	rval := reflect.ValueOf(vals)
	if !rval.IsValid() || rval.Kind() != reflect.Slice || rval.Len() == 0 {
		return self
	}

	if self.Dialect == Postgres {
		self.Query.Append(sql+` = ANY($1)`, pq.Array(vals))
		return self
	}

	list := make([]any, rval.Len())
	for i := range list {
		list[i] = rval.Index(i).Interface()
	}
	return self.InValues(sql+` IN`, list)
}

/*
Appends an equality condition for every `db`-tagged field of the struct whose
value is present. Absent fields are skipped rather than compared to null:

	bui.Filter(struct {
		TeamId *int    `db:"team_id"`
		Code   *string `db:"code"`
	}{TeamId: &id})

	// and "team_id" = $1
*/
func (self *Builder) Filter(val any) *Builder {
	for _, arg := range StructNamedArgs(val) {
		val, ok := arg.Norm()
		if ok {
			self.Query.Append(`and `+self.Dialect.QuoteIdent(arg.Name)+` = $1`, val)
		}
	}
	return self
}

// Appends the select list for a struct type. See `Dialect.Cols`.
func (self *Builder) PushCols(dest any) *Builder {
	self.Query.Append(self.Dialect.Cols(dest))
	return self
}

// Appends an `order by` clause quoted for the builder's dialect. Empty
// orderings append nothing.
func (self *Builder) OrderBy(ords Ords) *Builder {
	ords.AppendDialect(self.Dialect, &self.Query)
	return self
}

/*
Appends the SQL, typically an `order by` clause, then `LIMIT` and `OFFSET`
parameters for the pagination's current page:

	bui.SetPagination(`ORDER BY s.position`, pagination)
	// ORDER BY s.position LIMIT $1 OFFSET $2
*/
func (self *Builder) SetPagination(sql string, pagination Pagination) *Builder {
	if sql != "" {
		self.Query.Append(sql)
	}
	self.Query.Append(`LIMIT $1 OFFSET $2`, pagination.Limit, pagination.Offset())
	return self
}

// Returns text and arguments rendered for the builder's dialect.
func (self *Builder) Build() (string, []any) {
	return self.Dialect.Reify(self.Query)
}

// Returns text rendered for the builder's dialect.
func (self *Builder) String() string {
	text, _ := self.Build()
	return text
}

/*
Runs the function, converting panics with errors into returned errors. Useful
for apps that insist on errors-as-values:

	err := bui.Catch(func(bui *Builder) {
		bui.Push(`select`).PushValue(`and id =`, id)
	})
*/
func (self *Builder) Catch(fun func(*Builder)) (err error) {
	defer rec(&err)
	if fun != nil {
		fun(self)
	}
	return
}

// Postgres can't infer the type of a parameter passed to `CONCAT`.
func (self *Builder) textParam() string {
	if self.Dialect == Postgres {
		return `$1::text`
	}
	return `$1`
}

func anySlice[A any](vals []A) []any {
	out := make([]any, len(vals))
	for i, val := range vals {
		out[i] = val
	}
	return out
}
