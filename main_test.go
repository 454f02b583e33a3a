package sqlh

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

type (
	B  = testing.B
	T  = testing.T
	TB = testing.TB
)

type Dict = map[string]any

type Internal struct {
	Id   string `json:"internalId"   db:"id"`
	Name string `json:"internalName" db:"name"`
}

type External struct {
	Id       string   `json:"externalId"       db:"id"`
	Name     string   `json:"externalName"     db:"name"`
	Internal Internal `json:"externalInternal" db:"internal"`
}

// nolint:govet
type Embed struct {
	Id        string `json:"embedId"      db:"embed_id"`
	Name      string `json:"embedName"    db:"embed_name"`
	Untagged0 string ``
	Untagged1 string `db:"-"`
}

type Outer struct {
	Embed
	Id       string     `json:"outerId"   db:"outer_id"`
	Name     *string    `json:"outerName" db:"outer_name"`
	At       *time.Time `json:"at"        db:"at"`
	OnlyJson string     `json:"onlyJson"`
}

func eq(t TB, expected any, actual any) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected:\n%#v\nactual:\n%#v", expected, actual)
	}
}

func noErr(t TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
}

func errIs(t TB, target error, err error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error %q, got %#v", target, err)
	}
}

func panics(t TB, target error, fun func()) {
	t.Helper()
	errIs(t, target, catch(fun))
}

func catch(fun func()) (err error) {
	defer rec(&err)
	fun()
	return
}

func strPtr(val string) *string { return &val }
func intPtr(val int) *int       { return &val }

func queryFrom(src string, args []any) Query {
	var query Query
	query.Append(src, args...)
	return query
}
