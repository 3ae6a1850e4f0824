package tome

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/zoobzio/sentinel"
)

// tagName is the struct tag controlling how a field is flattened:
//
//	Port    int    `tome:"port"`
//	Secret  string `tome:"-"`
//	Comment string `tome:"comment,omitempty"`
const tagName = "tome"

func init() {
	sentinel.Tag(tagName)
}

// ErrNotStruct is returned by Flatten for non-struct values.
var ErrNotStruct = errors.New("not a struct")

// Flattener is implemented by composite values, such as configuration
// sections, that present themselves to codecs as a map. Codecs flatten them
// before encoding, so a Flattener may stand anywhere a *Map may.
type Flattener interface {
	Flatten() *Map
}

// Flatten converts a struct into a map, one entry per exported field in
// declaration order. Nested structs become nested maps, slices become lists
// and nil pointers are left out. Structs that marshal themselves as text, or
// have no exported fields, stay scalars so codecs can treat them as opaque.
func Flatten[T any](v T) (*Map, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T", ErrNotStruct, v)
	}
	return flattenStruct(rv, sentinel.Scan[T]())
}

// flattenStruct walks the fields described by meta.
func flattenStruct(rv reflect.Value, meta sentinel.Metadata) (*Map, error) {
	out := NewMap()
	rt := rv.Type()

	for _, field := range meta.Fields {
		sf := rt.FieldByIndex(field.Index)
		if !sf.IsExported() {
			continue
		}

		name, omitEmpty, skip := fieldName(field, sf)
		if skip {
			continue
		}

		fv := rv.FieldByIndex(field.Index)
		if omitEmpty && fv.IsZero() {
			continue
		}

		val, err := flattenValue(fv)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		if val == nil {
			continue
		}
		out.Set(name, val)
	}

	return out, nil
}

// flattenValue converts a single field value.
func flattenValue(fv reflect.Value) (Value, error) {
	if !fv.IsValid() {
		return nil, nil
	}

	if fv.CanInterface() {
		switch t := fv.Interface().(type) {
		case Flattener:
			if fv.Kind() == reflect.Pointer && fv.IsNil() {
				return nil, nil
			}
			return t.Flatten(), nil
		case Value:
			if isNil(t) {
				return nil, nil
			}
			return t, nil
		}
	}

	switch fv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if fv.IsNil() {
			return nil, nil
		}
		return flattenValue(fv.Elem())

	case reflect.Struct:
		if isOpaqueStruct(fv.Type()) {
			return NewScalar(fv.Interface()), nil
		}
		return flattenStruct(fv, scanNestedType(fv.Type()))

	case reflect.Slice, reflect.Array:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			return NewScalar(fv.Interface()), nil
		}
		if fv.Kind() == reflect.Slice && fv.IsNil() {
			return nil, nil
		}
		list := make(List, fv.Len())
		for i := 0; i < fv.Len(); i++ {
			elem, err := flattenValue(fv.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = elem
		}
		return list, nil

	case reflect.Map:
		if fv.Type().Key().Kind() != reflect.String {
			return NewScalar(fv.Interface()), nil
		}
		if fv.IsNil() {
			return nil, nil
		}
		keys := fv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		m := NewMap()
		for _, k := range keys {
			elem, err := flattenValue(fv.MapIndex(k))
			if err != nil {
				return nil, fmt.Errorf("[%s]: %w", k.String(), err)
			}
			m.Set(k.String(), elem)
		}
		return m, nil

	default:
		return NewScalar(fv.Interface()), nil
	}
}

// fieldName resolves the entry key for a field from its tome tag.
func fieldName(field sentinel.FieldMetadata, sf reflect.StructField) (name string, omitEmpty, skip bool) {
	tag, ok := field.Tags[tagName]
	if !ok {
		tag, ok = sf.Tag.Lookup(tagName)
	}
	if !ok || tag == "" {
		return field.Name, false, false
	}
	if tag == "-" {
		return "", false, true
	}

	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

// isOpaqueStruct reports whether a struct should stay a scalar.
func isOpaqueStruct(rt reflect.Type) bool {
	if rt.Implements(textMarshalerType) || reflect.PointerTo(rt).Implements(textMarshalerType) {
		return true
	}
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).IsExported() {
			return false
		}
	}
	return true
}

// scanNestedType returns the metadata of a nested struct type, scanning the
// exported fields itself when sentinel has not seen the type. Only what
// flattenStruct reads is filled in.
func scanNestedType(rt reflect.Type) sentinel.Metadata {
	if meta, ok := sentinel.Lookup(rt.String()); ok {
		return meta
	}

	meta := sentinel.Metadata{TypeName: rt.Name(), PackageName: rt.PkgPath()}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fm := sentinel.FieldMetadata{Name: sf.Name, Index: sf.Index}
		if val, ok := sf.Tag.Lookup(tagName); ok {
			fm.Tags = map[string]string{tagName: val}
		}
		meta.Fields = append(meta.Fields, fm)
	}
	return meta
}

// Expand returns the map of a Flattener, whether v is one itself or is a
// Scalar wrapping one. Any other value is returned unchanged.
func Expand(v Value) Value {
	var f Flattener
	switch t := v.(type) {
	case Flattener:
		f = t
	case Scalar:
		f, _ = t.raw.(Flattener)
	}
	if f == nil {
		return v
	}
	if m := f.Flatten(); m != nil {
		return m
	}
	return v
}
