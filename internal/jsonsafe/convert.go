// Package jsonsafe converts arbitrary Go values into plain JSON-compatible
// values: bool, int64, uint64, float64, string, []any, map[string]any and nil.
package jsonsafe

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

var textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

// Convert walks v and returns an equivalent value built only from plain JSON
// types. Structure is preserved: maps stay maps and slices or arrays of any
// depth become nested slices. Byte slices are numbers too, never strings.
// Non-finite floats become nil, as do values that have no JSON form such as
// channels and functions. Struct fields follow their json tags.
func Convert(v any) any {
	if v == nil {
		return nil
	}
	return convert(reflect.ValueOf(v))
}

func convert(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}

	if v.Kind() != reflect.Pointer && v.Kind() != reflect.Interface && v.CanInterface() && v.Type().Implements(textMarshalerType) {
		if text, err := v.Interface().(encoding.TextMarshaler).MarshalText(); err == nil {
			return string(text)
		}
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return convert(v.Elem())
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return finite(v.Float())
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		return []any{finite(real(c)), finite(imag(c))}
	case reflect.String:
		return v.String()
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		return convertList(v)
	case reflect.Array:
		return convertList(v)
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = convert(iter.Value())
		}
		return out
	case reflect.Struct:
		return convertStruct(v)
	}

	return nil
}

func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func convertList(v reflect.Value) []any {
	out := make([]any, v.Len())
	for i := range out {
		out[i] = convert(v.Index(i))
	}
	return out
}

func mapKey(k reflect.Value) string {
	for k.Kind() == reflect.Interface || k.Kind() == reflect.Pointer {
		if k.IsNil() {
			return "null"
		}
		k = k.Elem()
	}

	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(k.Bool())
	}
	if k.CanInterface() {
		return fmt.Sprint(k.Interface())
	}
	return k.Type().String()
}

func convertStruct(v reflect.Value) map[string]any {
	t := v.Type()
	out := make(map[string]any, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		name, omitEmpty, skip := parseTag(field)
		if skip {
			continue
		}

		fv := v.Field(i)
		if field.Anonymous && name == "" && isStruct(field.Type) {
			if embedded, ok := convert(fv).(map[string]any); ok {
				for k, val := range embedded {
					if _, exists := out[k]; !exists {
						out[k] = val
					}
				}
			}
			continue
		}
		if !field.IsExported() {
			continue
		}
		if omitEmpty && fv.IsZero() {
			continue
		}
		if omitEmpty && (fv.Kind() == reflect.Map || fv.Kind() == reflect.Slice) && fv.Len() == 0 {
			continue
		}

		if name == "" {
			name = field.Name
		}
		out[name] = convert(fv)
	}
	return out
}

func isStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// parseTag reads the json tag of a struct field. An empty name means the Go
// field name (or, for embedded structs, that the fields are promoted).
func parseTag(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return "", false, false
	}
	if tag == "-" {
		return "", false, true
	}

	parts := strings.Split(tag, ",")
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return parts[0], omitEmpty, false
}
