package tome

import (
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the shape of a Value.
type Kind uint8

const (
	// KindScalar is a leaf value.
	KindScalar Kind = iota + 1

	// KindList is an ordered sequence that may contain nil placeholders.
	KindList

	// KindMap is an insertion-ordered mapping with unique string keys.
	KindMap
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is the generic hierarchical value every codec loads into and dumps
// from. It is implemented by Scalar, List and *Map. A nil Value is a null
// placeholder and is only meaningful as a List element or Map entry.
type Value interface {
	Kind() Kind
}

// Scalar is a leaf value. It keeps the raw value it was built from so codecs
// can decide how to represent it; typing and coercion belong to callers.
type Scalar struct {
	raw any
}

// NewScalar wraps v as a Scalar.
func NewScalar(v any) Scalar {
	return Scalar{raw: v}
}

// String wraps s as a Scalar.
func String(s string) Scalar {
	return Scalar{raw: s}
}

// Kind returns KindScalar.
func (Scalar) Kind() Kind { return KindScalar }

// Raw returns the value the scalar was built from.
func (s Scalar) Raw() any { return s.raw }

// Text returns the plain textual form of the scalar.
func (s Scalar) Text() string {
	switch v := s.raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// List is an ordered sequence of values. Nil elements mark sparse positions.
type List []Value

// Kind returns KindList.
func (List) Kind() Kind { return KindList }

// Clone returns a deep copy of the list.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, v := range l {
		out[i] = Clone(v)
	}
	return out
}

// Map is an insertion-ordered mapping from string keys to values.
// Setting an existing key replaces its value in place.
type Map struct {
	entries *orderedmap.OrderedMap[string, Value]
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{entries: orderedmap.New[string, Value]()}
}

// Kind returns KindMap.
func (*Map) Kind() Kind { return KindMap }

// Set stores v under key and returns the map for chaining.
func (m *Map) Set(key string, v Value) *Map {
	m.entries.Set(key, v)
	return m
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	return m.entries.Get(key)
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key string) bool {
	_, ok := m.entries.Delete(key)
	return ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.entries.Len()
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, m.Len())
	m.Range(func(key string, _ Value) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Range calls fn for every entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	out := NewMap()
	m.Range(func(key string, v Value) bool {
		out.Set(key, Clone(v))
		return true
	})
	return out
}

// Clone returns a deep copy of v. Scalars are returned as is.
func Clone(v Value) Value {
	switch t := v.(type) {
	case *Map:
		if t == nil {
			return nil
		}
		return t.Clone()
	case List:
		return t.Clone()
	default:
		return v
	}
}

// Equal reports whether a and b hold the same structure. Scalars compare by
// their text form, map entries compare regardless of insertion order, and list
// elements compare position by position.
func Equal(a, b Value) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	switch x := a.(type) {
	case Scalar:
		y, ok := b.(Scalar)
		return ok && x.Text() == y.Text()
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Map:
		y, ok := b.(*Map)
		if !ok || x.Len() != y.Len() {
			return false
		}
		equal := true
		x.Range(func(key string, v Value) bool {
			w, found := y.Get(key)
			equal = found && Equal(v, w)
			return equal
		})
		return equal
	default:
		return false
	}
}

func isNil(v Value) bool {
	if v == nil {
		return true
	}
	m, ok := v.(*Map)
	return ok && m == nil
}
