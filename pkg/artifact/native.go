// Package artifact converts pipeline results into plain values that
// templating, JSON encoding and charting can consume without knowing the
// pipeline's types.
//
// The native forms are nil, bool, int64, float64, string, []any and
// *OrderedMap. ToNative maps everything else onto them and is a no-op on a
// value that is already native.
package artifact

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Nativer is implemented by types that choose their own native form, for
// example to keep a key order that a Go map cannot.
type Nativer interface {
	Native() any
}

const maxDepth = 64

// ToNative recursively converts v to native values. It never panics: a leaf it
// cannot convert is rendered with fmt.Sprint.
func ToNative(v any) any {
	return toNative(v, 0)
}

func toNative(v any, depth int) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprint(v)
		}
	}()
	if depth > maxDepth {
		return fmt.Sprint(v)
	}

	switch x := v.(type) {
	case nil:
		return nil
	case *OrderedMap:
		if x == nil {
			return nil
		}
		m := NewOrderedMap()
		for _, k := range x.keys {
			m.Set(k, toNative(x.values[k], depth+1))
		}
		return m
	case Nativer:
		if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		return toNative(x.Native(), depth+1)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case time.Duration:
		return x.Seconds()
	case error:
		return x.Error()
	case []byte:
		return string(x)
	case fmt.Stringer:
		if rv := reflect.ValueOf(x); rv.Kind() != reflect.Struct && rv.Kind() != reflect.Pointer {
			return x.String()
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return float64(u)
		}
		return int64(u)
	case reflect.Float32:
		f, _ := strconv.ParseFloat(strconv.FormatFloat(rv.Float(), 'g', -1, 32), 64)
		return nativeFloat(f)
	case reflect.Float64:
		return nativeFloat(rv.Float())
	case reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(v)
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = toNative(rv.Index(i).Interface(), depth+1)
		}
		return out
	case reflect.Map:
		return mapToNative(rv, depth)
	case reflect.Struct:
		return structToNative(rv, depth)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return toNative(rv.Elem().Interface(), depth+1)
	}
	return fmt.Sprint(v)
}

// nativeFloat keeps finite floats and spells out NaN and infinities, which
// JSON cannot represent as numbers.
func nativeFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return f
}

// mapToNative sorts keys by their string form so output is stable.
func mapToNative(rv reflect.Value, depth int) *OrderedMap {
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, entry{key: keyString(iter.Key()), val: iter.Value()})
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].key < entries[b].key })
	m := NewOrderedMap()
	for _, e := range entries {
		m.Set(e.key, toNative(e.val.Interface(), depth+1))
	}
	return m
}

func keyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(toNative(k.Interface(), maxDepth))
}

// structToNative keeps exported fields in declaration order, named by their
// json tag when present. Fields tagged "-" are skipped.
func structToNative(rv reflect.Value, depth int) *OrderedMap {
	m := NewOrderedMap()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		m.Set(name, toNative(rv.Field(i).Interface(), depth+1))
	}
	return m
}
