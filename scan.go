package sqlh

import (
	"database/sql"
	"fmt"
	"reflect"
	"sync"

	"github.com/mitranim/refut"
)

/*
Scans all rows into structs of type `T`, matching result columns to fields by
their `db` tags. Nested non-scannable structs are matched by dotted aliases,
as generated by `Cols`. Columns without a matching field cause
`ErrUnknownField`. Always closes the rows.

If every column of a nested struct is null, the struct is considered null: a
pointer field is left nil, and a non-pointer field causes `ErrInvalidInput`.
This is what makes outer joins work:

	type TeamUser struct {
		TeamId int64 `db:"team_id"`
		User   *User `db:"user"`
	}

	// select t.id as team_id, u.id as "user.id", u.name as "user.name"
	// from teams t left join users u on u.team_id = t.id

Teams without users get `User == nil`, which `OutcomeFromPtr` reports as
missing. Intended as the row source for `Extract` and `ExtractFromOrdered`.

A null column in a present struct is stored as the zero value of a pointer,
slice, map or interface field, and passed to `sql.Scanner` fields as nil. Any
other field causes `ErrInvalidInput`.
*/
func ScanRows[T any](rows *sql.Rows) (_ []T, err error) {
	defer func() {
		closeErr := rows.Close()
		if err == nil {
			err = closeErr
		}
	}()

	var zero T
	rtype := reflect.TypeOf(zero)
	if rtype == nil || rtype.Kind() != reflect.Struct {
		return nil, ErrInvalidInput.while(`scanning rows`).because(
			fmt.Errorf(`expected struct type, got %v`, rtype),
		)
	}

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	plan := scanPlanCache.get(rtype)
	fields := make([]scanField, len(cols))
	for i, col := range cols {
		field, ok := plan.fields[col]
		if !ok {
			return nil, ErrUnknownField.while(`scanning rows`).because(
				fmt.Errorf(`no field for column %q in %v`, col, rtype),
			)
		}
		fields[i] = field
	}

	// Scanning into pointers to the field types lets nulls be told apart.
	holders := make([]reflect.Value, len(cols))
	dest := make([]any, len(cols))
	for i, field := range fields {
		holders[i] = reflect.New(reflect.PtrTo(field.rtype))
		dest[i] = holders[i].Interface()
	}

	var out []T

	for rows.Next() {
		err = rows.Scan(dest...)
		if err != nil {
			return nil, err
		}

		var val T
		err = plan.assign(reflect.ValueOf(&val).Elem(), cols, fields, holders)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}

	return out, rows.Err()
}

var scanPlanCache = &typeCache[scanPlan]{Func: makeScanPlan}

// Susceptible to "thundering herd", but values are deterministic.
type typeCache[Val any] struct {
	sync.Map
	Func func(reflect.Type) Val
}

func (self *typeCache[Val]) get(key reflect.Type) Val {
	iface, ok := self.Load(key)
	if ok {
		return iface.(Val)
	}

	val := self.Func(key)
	self.Store(key, val)
	return val
}

type scanField struct {
	index  []int
	rtype  reflect.Type
	nested []string // Dotted paths of enclosing nested structs, outermost first.
}

type scanPlan struct {
	fields map[string]scanField
	nested map[string]bool // True when the nested struct field is a pointer.
}

func makeScanPlan(rtype reflect.Type) scanPlan {
	out := scanPlan{fields: map[string]scanField{}, nested: map[string]bool{}}
	out.add(rtype, ``, nil, nil)
	return out
}

func (self scanPlan) add(rtype reflect.Type, prefix string, base []int, nested []string) {
	err := refut.TraverseStructRtype(rtype, func(sfield reflect.StructField, index []int) error {
		colName := sfieldColumnName(sfield)
		if colName == "" {
			return nil
		}

		path := append(append([]int(nil), base...), index...)
		fieldRtype := refut.RtypeDeref(sfield.Type)

		if fieldRtype.Kind() == reflect.Struct && !isScannableRtype(fieldRtype) {
			name := prefix + colName
			self.nested[name] = sfield.Type.Kind() == reflect.Ptr
			self.add(fieldRtype, name+`.`, path, append(append([]string(nil), nested...), name))
			return nil
		}

		self.fields[prefix+colName] = scanField{index: path, rtype: sfield.Type, nested: nested}
		return nil
	})
	try(err)
}

/*
Copies scanned values into the struct. Pointers along a field path are
allocated only for non-null values, so nested structs whose columns are all
null are never allocated.
*/
func (self scanPlan) assign(rval reflect.Value, cols []string, fields []scanField, holders []reflect.Value) error {
	var present map[string]bool
	if len(self.nested) > 0 {
		present = make(map[string]bool, len(self.nested))
		for i, field := range fields {
			if !holders[i].Elem().IsNil() {
				for _, name := range field.nested {
					present[name] = true
				}
			}
		}
	}

outer:
	for i, field := range fields {
		val := holders[i].Elem()
		if !val.IsNil() {
			fieldByIndexAlloc(rval, field.index).Set(val.Elem())
			continue
		}

		for _, name := range field.nested {
			if present[name] {
				continue
			}
			if self.nested[name] {
				continue outer
			}
			return ErrInvalidInput.while(`scanning rows`).because(fmt.Errorf(
				`every column of nested struct %q is null, but the field is not a pointer`, name,
			))
		}

		if isNilableRtype(field.rtype) {
			continue
		}

		if reflect.PtrTo(field.rtype).Implements(sqlScannerRtype) {
			scanner := fieldByIndexAlloc(rval, field.index).Addr().Interface().(sql.Scanner)
			if err := scanner.Scan(nil); err != nil {
				return err
			}
			continue
		}

		return ErrInvalidInput.while(`scanning rows`).because(fmt.Errorf(
			`column %q is null, but field type %v is not nilable`, cols[i], field.rtype,
		))
	}
	return nil
}

func isNilableRtype(rtype reflect.Type) bool {
	switch rtype.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	default:
		return false
	}
}

// Like `reflect.Value.FieldByIndex`, but allocates nil struct pointers.
func fieldByIndexAlloc(rval reflect.Value, index []int) reflect.Value {
	for _, ind := range index {
		for rval.Kind() == reflect.Ptr {
			if rval.IsNil() {
				rval.Set(reflect.New(rval.Type().Elem()))
			}
			rval = rval.Elem()
		}
		rval = rval.Field(ind)
	}
	return rval
}
