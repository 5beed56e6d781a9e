// Package values implements the comparability rules shared by filters, groups and capping.
//
// Two values are equal when each is both <= and >= the other. Numbers of any Go numeric kind
// compare numerically, strings lexically, times chronologically, and slices element-wise.
package values

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

// kind ranks used to order values of different types against each other
const (
	rankNil = iota
	rankBool
	rankNumber
	rankString
	rankTime
	rankSlice
	rankOther
)

// Compare returns -1, 0 or +1 as a sorts before, equal to, or after b.
func Compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}

	switch ra {
	case rankNil:
		return 0
	case rankBool:
		return cmpBool(reflect.ValueOf(a).Bool(), reflect.ValueOf(b).Bool())
	case rankNumber:
		fa, _ := ToFloat(a)
		fb, _ := ToFloat(b)
		return cmpFloat(fa, fb)
	case rankString:
		return strings.Compare(reflect.ValueOf(a).String(), reflect.ValueOf(b).String())
	case rankTime:
		ta, tb := a.(time.Time), b.(time.Time)
		return ta.Compare(tb)
	case rankSlice:
		return compareSlices(reflect.ValueOf(a), reflect.ValueOf(b))
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

// Equal reports whether a <= b and a >= b.
func Equal(a, b any) bool {
	return Compare(a, b) == 0
}

// Less reports whether a sorts strictly before b.
func Less(a, b any) bool {
	return Compare(a, b) < 0
}

// ToFloat converts any Go numeric value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case time.Time:
		return float64(n.UnixMilli()), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return math.NaN(), false
}

// Pair extracts the two components of a 2-vector (slice or array of length 2).
func Pair(v any) (x, y any, ok bool) {
	p, ok := Path(v)
	if !ok || len(p) != 2 {
		return nil, nil, false
	}
	return p[0], p[1], true
}

// Path returns the elements of a slice or array value.
func Path(v any) ([]any, bool) {
	if p, ok := v.([]any); ok {
		return p, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		// []byte is a scalar string-like key, not a path
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Key returns a canonical string for v such that Equal values share a key.
func Key(v any) string {
	switch rank(v) {
	case rankNil:
		return "n:"
	case rankBool:
		return fmt.Sprintf("b:%t", reflect.ValueOf(v).Bool())
	case rankNumber:
		f, _ := ToFloat(v)
		return fmt.Sprintf("f:%v", f)
	case rankString:
		return "s:" + reflect.ValueOf(v).String()
	case rankTime:
		return "t:" + v.(time.Time).UTC().Format(time.RFC3339Nano)
	case rankSlice:
		p, _ := Path(v)
		parts := make([]string, len(p))
		for i, e := range p {
			parts[i] = Key(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return "o:" + fmt.Sprint(v)
	}
}

func rank(v any) int {
	if v == nil {
		return rankNil
	}
	if _, ok := v.(time.Time); ok {
		return rankTime
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rankBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return rankNumber
	case reflect.String:
		return rankString
	case reflect.Slice, reflect.Array:
		if _, ok := Path(v); ok {
			return rankSlice
		}
	}
	return rankOther
}

func compareSlices(a, b reflect.Value) int {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	for i := 0; i < n; i++ {
		if c := Compare(a.Index(i).Interface(), b.Index(i).Interface()); c != 0 {
			return c
		}
	}
	return cmpInt(a.Len(), b.Len())
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// cmpFloat orders NaN before every other number and equal only to itself.
func cmpFloat(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN || bNaN:
		return cmpBool(!aNaN, !bNaN)
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
