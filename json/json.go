// Package json provides a JSON codec implementation.
//
// Comments and trailing commas are tolerated on load. Key order is kept in
// both directions, integral numbers load as int64 and all other numbers as
// float64.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/zoobzio/tome"
)

// errNotObject is returned when a document is not a JSON object.
var errNotObject = errors.New("top level is not an object")

// Option configures the codec.
type Option func(*jsonCodec)

// WithIndent sets the indentation of dumped documents. An empty indent writes
// compact JSON. The default is two spaces.
func WithIndent(indent string) Option {
	return func(c *jsonCodec) {
		c.indent = indent
	}
}

// jsonCodec implements tome.Codec for JSON.
type jsonCodec struct {
	indent string
}

// New returns a JSON codec.
func New(opts ...Option) tome.Codec {
	c := &jsonCodec{indent: "  "}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Format returns tome.FormatJSON.
func (c *jsonCodec) Format() tome.Format {
	return tome.FormatJSON
}

// Load decodes a JSON object.
func (c *jsonCodec) Load(r io.Reader) (*tome.Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tome.ErrIO, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return tome.NewMap(), nil
	}

	m, err := decode(jsonc.ToJSON(data))
	if err != nil {
		return nil, tome.NewCodecError(tome.ErrFormat, tome.FormatJSON, err)
	}
	return m, nil
}

// Dump encodes data as a JSON object.
func (c *jsonCodec) Dump(data *tome.Map, w io.Writer) error {
	var buf bytes.Buffer
	if err := writeMap(&buf, data); err != nil {
		return tome.NewCodecError(tome.ErrFormat, tome.FormatJSON, err)
	}

	out := buf.Bytes()
	if c.indent != "" {
		var indented bytes.Buffer
		if err := json.Indent(&indented, out, "", c.indent); err != nil {
			return tome.NewCodecError(tome.ErrFormat, tome.FormatJSON, err)
		}
		out = indented.Bytes()
	}
	out = append(out, '\n')

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("%w: %w", tome.ErrIO, err)
	}
	return nil
}

func decode(data []byte) (*tome.Map, error) {
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()

	tok, err := d.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}
	m, err := readObject(d)
	if err != nil {
		return nil, err
	}
	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected content after top-level object")
	}
	return m, nil
}

// readObject reads the members of an object whose opening brace has been
// consumed. Repeated keys keep their first position and the last value.
func readObject(d *json.Decoder) (*tome.Map, error) {
	m := tome.NewMap()
	for d.More() {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key %v is not a string", tok)
		}
		v, err := readValue(d)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		m.Set(key, v)
	}
	if _, err := d.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func readValue(d *json.Decoder) (tome.Value, error) {
	tok, err := d.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readObject(d)
		case '[':
			list := tome.List{}
			for d.More() {
				v, err := readValue(d)
				if err != nil {
					return nil, fmt.Errorf("[%d]: %w", len(list), err)
				}
				list = append(list, v)
			}
			if _, err := d.Token(); err != nil {
				return nil, err
			}
			return list, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return tome.NewScalar(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return tome.NewScalar(f), nil
	case string:
		return tome.String(t), nil
	case bool:
		return tome.NewScalar(t), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func writeMap(buf *bytes.Buffer, m *tome.Map) error {
	buf.WriteByte('{')
	first := true
	var err error
	m.Range(func(key string, v tome.Value) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err = writeJSON(buf, key); err != nil {
			return false
		}
		buf.WriteByte(':')
		if err = writeValue(buf, v); err != nil {
			err = fmt.Errorf("%s: %w", key, err)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func writeValue(buf *bytes.Buffer, v tome.Value) error {
	switch t := tome.Expand(v).(type) {
	case nil:
		buf.WriteString("null")
	case *tome.Map:
		if t == nil {
			buf.WriteString("null")
			return nil
		}
		return writeMap(buf, t)
	case tome.List:
		buf.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case tome.Scalar:
		return writeJSON(buf, t.Raw())
	default:
		return fmt.Errorf("unsupported value %T", v)
	}
	return nil
}

// writeJSON writes v without HTML escaping. Plain Go maps held by scalars are
// written with sorted keys.
func writeJSON(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
