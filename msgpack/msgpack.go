// Package msgpack provides a MessagePack codec implementation.
//
// Documents are a single top-level map with string keys. Maps are read and
// written entry by entry, so key order survives a round trip.
package msgpack

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/zoobzio/tome"
)

var (
	errNotMap   = errors.New("top level is not a map")
	errTrailing = errors.New("unexpected data after top-level map")
)

// msgpackCodec implements tome.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() tome.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Format returns tome.FormatMsgPack.
func (c *msgpackCodec) Format() tome.Format {
	return tome.FormatMsgPack
}

// Load decodes a MessagePack map.
func (c *msgpackCodec) Load(r io.Reader) (*tome.Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tome.ErrIO, err)
	}
	if len(data) == 0 {
		return tome.NewMap(), nil
	}

	br := bytes.NewReader(data)
	dec := msgpack.NewDecoder(br)

	code, err := dec.PeekCode()
	if err != nil {
		return nil, tome.NewCodecError(tome.ErrFormat, tome.FormatMsgPack, err)
	}
	if !isMap(code) {
		return nil, tome.NewCodecError(tome.ErrFormat, tome.FormatMsgPack, errNotMap)
	}
	m, err := readMap(dec)
	if err != nil {
		return nil, tome.NewCodecError(tome.ErrFormat, tome.FormatMsgPack, err)
	}
	if br.Len() > 0 {
		return nil, tome.NewCodecError(tome.ErrFormat, tome.FormatMsgPack, errTrailing)
	}
	return m, nil
}

// Dump encodes data as a MessagePack map.
func (c *msgpackCodec) Dump(data *tome.Map, w io.Writer) error {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)

	if err := writeMap(enc, data); err != nil {
		return tome.NewCodecError(tome.ErrFormat, tome.FormatMsgPack, err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", tome.ErrIO, err)
	}
	return nil
}

func isMap(c byte) bool {
	return msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32
}

func isArray(c byte) bool {
	return msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32
}

func readMap(dec *msgpack.Decoder) (*tome.Map, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	m := tome.NewMap()
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		v, err := readValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		m.Set(key, v)
	}
	return m, nil
}

func readValue(dec *msgpack.Decoder) (tome.Value, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}

	switch {
	case isMap(code):
		return readMap(dec)
	case isArray(code):
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		list := tome.List{}
		for i := 0; i < n; i++ {
			v, err := readValue(dec)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list = append(list, v)
		}
		return list, nil
	case code == msgpcode.Nil:
		return nil, dec.DecodeNil()
	default:
		v, err := dec.DecodeInterface()
		if err != nil {
			return nil, err
		}
		return tome.NewScalar(v), nil
	}
}

func writeMap(enc *msgpack.Encoder, m *tome.Map) error {
	if err := enc.EncodeMapLen(m.Len()); err != nil {
		return err
	}
	var err error
	m.Range(func(key string, v tome.Value) bool {
		if err = enc.EncodeString(key); err != nil {
			return false
		}
		if err = writeValue(enc, v); err != nil {
			err = fmt.Errorf("%s: %w", key, err)
			return false
		}
		return true
	})
	return err
}

func writeValue(enc *msgpack.Encoder, v tome.Value) error {
	switch t := tome.Expand(v).(type) {
	case nil:
		return enc.EncodeNil()
	case *tome.Map:
		if t == nil {
			return enc.EncodeNil()
		}
		return writeMap(enc, t)
	case tome.List:
		if err := enc.EncodeArrayLen(len(t)); err != nil {
			return err
		}
		for i, elem := range t {
			if err := writeValue(enc, elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case tome.Scalar:
		return enc.Encode(t.Raw())
	default:
		return fmt.Errorf("unsupported value %T", v)
	}
}
