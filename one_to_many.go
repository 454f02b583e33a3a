package sqlh

/*
Result of projecting a row into a child value. Either present, or missing when
the row has no child, typically because an outer join produced all-null child
columns. A missing outcome is not an error: the row contributes no child, but
its key still gets a group.
*/
type Outcome[B any] struct {
	val B
	ok  bool
}

// Creates a present outcome.
func Present[B any](val B) Outcome[B] { return Outcome[B]{val: val, ok: true} }

// Creates a missing outcome.
func Missing[B any]() Outcome[B] { return Outcome[B]{} }

/*
Converts a conventional `(value, error)` pair into an outcome. Any non-nil
error means "missing", which allows reusing conversion functions such as:

	func userFromRow(row TeamUser) (User, error)

as child extractors:

	func(row TeamUser) Outcome[User] { return OutcomeOf(userFromRow(row)) }
*/
func OutcomeOf[B any](val B, err error) Outcome[B] {
	if err != nil {
		return Missing[B]()
	}
	return Present(val)
}

// Nil pointer is missing, otherwise present with the pointed-to value.
func OutcomeFromPtr[B any](val *B) Outcome[B] {
	if val == nil {
		return Missing[B]()
	}
	return Present(*val)
}

func (self Outcome[B]) Get() (B, bool)  { return self.val, self.ok }
func (self Outcome[B]) IsPresent() bool { return self.ok }

// One parent key with the children accumulated from its rows, in row order.
type Group[A comparable, B any] struct {
	One  A
	Many []B
}

// Sequence of groups produced by `Extract` or `ExtractFromOrdered`.
type Groups[A comparable, B any] []Group[A, B]

func (self Groups[A, B]) Len() int { return len(self) }

// Returns the keys in group order.
func (self Groups[A, B]) Keys() []A {
	out := make([]A, 0, len(self))
	for _, val := range self {
		out = append(out, val.One)
	}
	return out
}

/*
Returns the groups as a map. If a key occurs more than once, which only happens
with `ExtractFromOrdered` on non-contiguous input, the children are
concatenated in group order.
*/
func (self Groups[A, B]) Map() map[A][]B {
	out := make(map[A][]B, len(self))
	for _, val := range self {
		prev, ok := out[val.One]
		if !ok {
			prev = make([]B, 0, len(val.Many))
		}
		out[val.One] = append(prev, val.Many...)
	}
	return out
}

/*
Groups flat joined rows by parent key. Each row is projected exactly once by
`one` into a key and by `many` into a child outcome.

Every key observed in the input appears exactly once in the output, even when
none of its rows had a present child; such groups have an empty, non-nil
`Many`. Children keep the relative order of their rows. Rows with the same key
don't need to be contiguous.

The output currently follows the order in which keys first appear, but callers
should treat it as unordered; use `ExtractFromOrdered` when order matters.

Pure function: rows are only read. Panics in extractors propagate.
*/
func Extract[Row any, A comparable, B any](
	rows []Row,
	one func(Row) A,
	many func(Row) Outcome[B],
) Groups[A, B] {
	out := make(Groups[A, B], 0)
	index := make(map[A]int)

	for _, row := range rows {
		key := one(row)
		child := many(row)

		ind, ok := index[key]
		if !ok {
			ind = len(out)
			index[key] = ind
			out = append(out, Group[A, B]{One: key, Many: []B{}})
		}

		val, ok := child.Get()
		if ok {
			out[ind].Many = append(out[ind].Many, val)
		}
	}

	return out
}

/*
Groups rows which are already grouped by key, such as rows from a query with
`order by <parent key>`. Returns one group per run of equal keys, in the order
the runs appear. Single pass; keeps only one group in flight.

The caller must ensure that rows with the same key are contiguous. This is not
verified: when violated, a key appears once per run.

A row with a missing child still opens a group for its key when the key
differs from the current group; when the key is the same, the group's children
are left as they are.
*/
func ExtractFromOrdered[Row any, A comparable, B any](
	rows []Row,
	one func(Row) A,
	many func(Row) Outcome[B],
) Groups[A, B] {
	out := make(Groups[A, B], 0)
	if len(rows) == 0 {
		return out
	}

	var current Group[A, B]

	for ind, row := range rows {
		key := one(row)
		child := many(row)

		if ind == 0 {
			current = Group[A, B]{One: key, Many: []B{}}
		} else if current.One != key {
			out = append(out, current)
			current = Group[A, B]{One: key, Many: []B{}}
		}

		val, ok := child.Get()
		if ok {
			current.Many = append(current.Many, val)
		}
	}

	return append(out, current)
}

/*
Applies a combinator to every group, in group order. Typically rebuilds the
parent entity with its children embedded:

	teams := Combine(groups, func(team Team, users []User) TeamWithUsers {
		return TeamWithUsers{Team: team, Users: users}
	})
*/
func Combine[A comparable, B, C any](groups Groups[A, B], fun func(A, []B) C) []C {
	out := make([]C, 0, len(groups))
	for _, val := range groups {
		out = append(out, fun(val.One, val.Many))
	}
	return out
}

// Parent key associated with children from two independent groupings.
type Triple[A comparable, B, C any] struct {
	One   A
	Left  []B
	Right []C
}

/*
Left-merges two groupings that share a key type, typically produced by two
separate joined queries. Returns one triple per group in `left`, in order.
`Right` holds the children of the matching group in `right`, or is empty when
there's none. Keys present only in `right` are dropped.

Each right group is consumed by the first left group with its key; a repeated
left key gets empty `Right`. Repeated right keys are concatenated.
*/
func MergeOneToManies[A comparable, B, C any](left Groups[A, B], right Groups[A, C]) []Triple[A, B, C] {
	index := right.Map()
	out := make([]Triple[A, B, C], 0, len(left))

	for _, val := range left {
		many, ok := index[val.One]
		if ok {
			delete(index, val.One)
		} else {
			many = []C{}
		}

		out = append(out, Triple[A, B, C]{One: val.One, Left: val.Many, Right: many})
	}

	return out
}
