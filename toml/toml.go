// Package toml provides a TOML codec implementation.
//
// TOML tables are unordered, so keys load in sorted order and are dumped in
// sorted order. Null has no TOML form: nil map entries are left out and nil
// list elements are rejected.
package toml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/zoobzio/tome"
)

var errNullElement = errors.New("null list element has no TOML form")

// tomlCodec implements tome.Codec for TOML.
type tomlCodec struct{}

// New returns a TOML codec.
func New() tome.Codec {
	return &tomlCodec{}
}

// ContentType returns the MIME type for TOML.
func (c *tomlCodec) ContentType() string {
	return "application/toml"
}

// Format returns tome.FormatTOML.
func (c *tomlCodec) Format() tome.Format {
	return tome.FormatTOML
}

// Load decodes a TOML document.
func (c *tomlCodec) Load(r io.Reader) (*tome.Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tome.ErrIO, err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, tome.NewCodecError(tome.ErrFormat, tome.FormatTOML, err)
	}
	return fromTable(doc), nil
}

// Dump encodes data as a TOML document.
func (c *tomlCodec) Dump(data *tome.Map, w io.Writer) error {
	doc, err := toTable(data)
	if err != nil {
		return tome.NewCodecError(tome.ErrFormat, tome.FormatTOML, err)
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return tome.NewCodecError(tome.ErrFormat, tome.FormatTOML, err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", tome.ErrIO, err)
	}
	return nil
}

func fromTable(t map[string]any) *tome.Map {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := tome.NewMap()
	for _, k := range keys {
		m.Set(k, fromTOML(t[k]))
	}
	return m
}

func fromTOML(v any) tome.Value {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return fromTable(t)
	case []any:
		list := make(tome.List, len(t))
		for i, elem := range t {
			list[i] = fromTOML(elem)
		}
		return list
	default:
		return tome.NewScalar(v)
	}
}

func toTable(m *tome.Map) (map[string]any, error) {
	t := make(map[string]any, m.Len())
	var err error
	m.Range(func(key string, v tome.Value) bool {
		var raw any
		if raw, err = toTOML(v); err != nil {
			err = fmt.Errorf("%s: %w", key, err)
			return false
		}
		if raw != nil {
			t[key] = raw
		}
		return true
	})
	return t, err
}

func toTOML(v tome.Value) (any, error) {
	switch x := tome.Expand(v).(type) {
	case nil:
		return nil, nil
	case *tome.Map:
		if x == nil {
			return nil, nil
		}
		return toTable(x)
	case tome.List:
		arr := make([]any, len(x))
		for i, elem := range x {
			if elem == nil {
				return nil, fmt.Errorf("[%d]: %w", i, errNullElement)
			}
			raw, err := toTOML(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = raw
		}
		return arr, nil
	case tome.Scalar:
		return x.Raw(), nil
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}
