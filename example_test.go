package sqlh_test

import (
	"fmt"

	s "github.com/sqlh/sqlh"
)

func ExampleCols() {
	type Internal struct {
		Id   string `db:"id"`
		Name string `db:"name"`
	}

	type External struct {
		Id       string   `db:"id"`
		Name     string   `db:"name"`
		Internal Internal `db:"internal"`
	}

	fmt.Println(s.Cols(External{}))

	/**
	Formatted here for readability:

	"id",
	"name",
	("internal")."id"   as "internal.id",
	("internal")."name" as "internal.name"
	*/
}

// Package-level docs use the same composition.
func Example_composition() {
	var inner s.Query
	inner.Append(`col0 = $1`, 10)

	var outer s.Query
	outer.Append(`select * from some_table where $1 or col1 = $2`, inner, 20)

	fmt.Println(outer.String(), outer.Args)
	// Output:
	// select * from some_table where col0 = $2 or col1 = $1 [20 10]
}

func ExampleBuilder() {
	var name *string
	teamId := 3

	bui := s.NewBuilder(s.MySQL, `select * from users where true`)
	bui.PushValue(`and team_id =`, &teamId).
		LikeStartsWith(`and name`, name).
		InStr(`and role IN`, []string{`admin`, `owner`}).
		SetPagination(`order by id`, s.NewPagination(2, 45, 20))

	text, args := bui.Build()
	fmt.Println(text)
	fmt.Println(args)

	// Output:
	// select * from users where true and team_id = ? and role IN (?,?) order by id LIMIT ? OFFSET ?
	// [3 admin owner 20 20]
}

func ExampleDialect_Reify() {
	var query s.Query
	query.Append(`select * from t where a = $1 or b = $1`, 10)

	fmt.Println(s.Postgres.Reify(query))
	fmt.Println(s.Sqlite.Reify(query))
	fmt.Println(s.MySQL.Reify(query))

	// Output:
	// select * from t where a = $1 or b = $1 [10]
	// select * from t where a = ?1 or b = ?1 [10]
	// select * from t where a = ? or b = ? [10 10]
}

func ExampleExtract() {
	type Row struct {
		Team string
		User *string
	}

	ann, bob := `ann`, `bob`
	rows := []Row{
		{`red`, &ann},
		{`blue`, nil},
		{`red`, &bob},
	}

	groups := s.Extract(
		rows,
		func(row Row) string { return row.Team },
		func(row Row) s.Outcome[string] { return s.OutcomeFromPtr(row.User) },
	)

	for _, group := range groups {
		fmt.Println(group.One, group.Many)
	}

	// Output:
	// red [ann bob]
	// blue []
}

func ExampleMergeOneToManies() {
	users := s.Groups[string, string]{
		{One: `red`, Many: []string{`ann`}},
		{One: `blue`, Many: []string{}},
	}
	projects := s.Groups[string, int]{
		{One: `red`, Many: []int{1, 2}},
		{One: `green`, Many: []int{3}},
	}

	for _, val := range s.MergeOneToManies(users, projects) {
		fmt.Println(val.One, val.Left, val.Right)
	}

	// Output:
	// red [ann] [1 2]
	// blue [] []
}

func ExampleOrds_UnmarshalJSON() {
	type User struct {
		Name string `json:"name" db:"name"`
		Age  *int   `json:"age"  db:"age"`
	}

	ords := s.OrdsFor(User{})
	err := ords.UnmarshalJSON([]byte(`["age desc nulls last", "name"]`))
	if err != nil {
		panic(err)
	}

	var query s.Query
	query.Append(`select * from users $1`, ords)
	fmt.Println(query)

	// Output:
	// select * from users order by "age" desc nulls last, "name" asc
}
