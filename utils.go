package sqlh

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"time"
	"unsafe"

	"github.com/mitranim/refut"
)

const bitsetSize = 64

// Tracks used argument indexes during a single append.
type bitset uint64

func (self bitset) has(index int) bool { return self&(1<<uint(index)) != 0 }
func (self *bitset) set(index int)     { *self |= (1 << uint(index)) }

/*
Allocation-free conversion. Reinterprets a byte slice as a string. Borrowed from
the standard library. Reasonably safe. Should not be used when the underlying
byte array is volatile.
*/
func bytesToMutableString(bytes []byte) string {
	return *(*string)(unsafe.Pointer(&bytes))
}

func appendStr(buf *[]byte, str string) {
	*buf = append(*buf, str...)
}

func appendEnclosed(buf *[]byte, prefix, infix, suffix string) {
	*buf = append(*buf, prefix...)
	*buf = append(*buf, infix...)
	*buf = append(*buf, suffix...)
}

func appendSpaceIfNeeded(buf *[]byte) {
	if buf != nil && len(*buf) > 0 && !isWhitespaceChar(rune((*buf)[len(*buf)-1])) {
		*buf = append(*buf, ' ')
	}
}

func isWhitespaceChar(char rune) bool {
	switch char {
	case ' ', '\n', '\r', '\t', '\v':
		return true
	default:
		return false
	}
}

func isQuery(val any) bool {
	_, ok := val.(IQuery)
	return ok
}

// Sub-queries are interpolated in place, so only plain values become args.
func appendNonQueries(buf *[]any, args []any) {
	for _, arg := range args {
		if !isQuery(arg) {
			*buf = append(*buf, arg)
		}
	}
}

func queryArgsBefore(args []any, index int) (count int) {
	for i := 0; i < index && i < len(args); i++ {
		if isQuery(args[i]) {
			count++
		}
	}
	return
}

func try(err error) {
	if err != nil {
		panic(err)
	}
}

// Must be deferred. Non-error panics are converted to `ErrInternal`.
func rec(ptr *error) {
	val := recover()
	if val == nil {
		return
	}

	err, _ := val.(error)
	if err != nil {
		*ptr = err
		return
	}

	*ptr = ErrInternal.while(`recovering from panic`).because(fmt.Errorf(`%v`, val))
}

/*
Normalizes a value for binding. Nil interfaces, nil pointers and valuers that
encode to nil are reported as absent. Non-nil pointers are dereferenced.
*/
func norm(val any) (any, bool) {
	if refut.IsNil(val) {
		return nil, false
	}

	valuer, _ := val.(driver.Valuer)
	if valuer != nil {
		out, err := valuer.Value()
		try(err)
		if out == nil {
			return nil, false
		}
		return out, true
	}

	rval := reflect.ValueOf(val)
	for rval.Kind() == reflect.Ptr {
		if rval.IsNil() {
			return nil, false
		}
		rval = rval.Elem()
	}
	return rval.Interface(), true
}

func sfieldColumnName(sfield reflect.StructField) string {
	return refut.TagIdent(sfield.Tag.Get("db"))
}

func sfieldJsonName(sfield reflect.StructField) string {
	return refut.TagIdent(sfield.Tag.Get("json"))
}

var timeRtype = reflect.TypeOf(time.Time{})
var sqlScannerRtype = reflect.TypeOf((*sql.Scanner)(nil)).Elem()

func isScannableRtype(rtype reflect.Type) bool {
	return rtype != nil &&
		(rtype == timeRtype || reflect.PtrTo(rtype).Implements(sqlScannerRtype))
}

func structRtypeOf(val any, while string) reflect.Type {
	rtype := reflect.TypeOf(val)
	if rtype != nil {
		rtype = refut.RtypeDeref(rtype)
	}
	if rtype != nil && rtype.Kind() == reflect.Slice {
		rtype = refut.RtypeDeref(rtype.Elem())
	}

	if rtype == nil || rtype.Kind() != reflect.Struct {
		panic(ErrInvalidInput.while(while).because(fmt.Errorf(`expected struct, got %v`, rtype)))
	}
	return rtype
}

func traverseStructDbFields(input any, fun func(string, any)) {
	rval := reflect.ValueOf(input)
	structRtypeOf(input, `traversing struct for DB fields`)

	if refut.IsRvalNil(rval) {
		return
	}

	err := refut.TraverseStructRval(rval, func(rval reflect.Value, sfield reflect.StructField, _ []int) error {
		colName := sfieldColumnName(sfield)
		if colName == "" {
			return nil
		}
		fun(colName, rval.Interface())
		return nil
	})
	try(err)
}
