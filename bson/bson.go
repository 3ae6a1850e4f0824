// Package bson provides a BSON codec implementation.
//
// Documents are read into bson.D so key order survives a round trip.
package bson

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/zoobzio/tome"
)

// bsonCodec implements tome.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() tome.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Format returns tome.FormatBSON.
func (c *bsonCodec) Format() tome.Format {
	return tome.FormatBSON
}

// Load decodes a single BSON document.
func (c *bsonCodec) Load(r io.Reader) (*tome.Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tome.ErrIO, err)
	}
	if len(data) == 0 {
		return tome.NewMap(), nil
	}
	if len(data) < 5 || int(binary.LittleEndian.Uint32(data)) != len(data) {
		return nil, tome.NewCodecError(tome.ErrFormat, tome.FormatBSON,
			fmt.Errorf("document length does not match %d input bytes", len(data)))
	}

	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, tome.NewCodecError(tome.ErrFormat, tome.FormatBSON, err)
	}
	return fromD(doc), nil
}

// Dump encodes data as a BSON document.
func (c *bsonCodec) Dump(data *tome.Map, w io.Writer) error {
	doc, err := toD(data)
	if err != nil {
		return tome.NewCodecError(tome.ErrFormat, tome.FormatBSON, err)
	}
	out, err := bson.Marshal(doc)
	if err != nil {
		return tome.NewCodecError(tome.ErrFormat, tome.FormatBSON, err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("%w: %w", tome.ErrIO, err)
	}
	return nil
}

func fromD(doc bson.D) *tome.Map {
	m := tome.NewMap()
	for _, e := range doc {
		m.Set(e.Key, fromBSON(e.Value))
	}
	return m
}

func fromBSON(v any) tome.Value {
	switch t := v.(type) {
	case nil:
		return nil
	case bson.D:
		return fromD(t)
	case bson.M:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := tome.NewMap()
		for _, k := range keys {
			m.Set(k, fromBSON(t[k]))
		}
		return m
	case bson.A:
		list := make(tome.List, len(t))
		for i, elem := range t {
			list[i] = fromBSON(elem)
		}
		return list
	default:
		return tome.NewScalar(v)
	}
}

func toD(m *tome.Map) (bson.D, error) {
	doc := make(bson.D, 0, m.Len())
	var err error
	m.Range(func(key string, v tome.Value) bool {
		var raw any
		if raw, err = toBSON(v); err != nil {
			err = fmt.Errorf("%s: %w", key, err)
			return false
		}
		doc = append(doc, bson.E{Key: key, Value: raw})
		return true
	})
	return doc, err
}

func toBSON(v tome.Value) (any, error) {
	switch t := tome.Expand(v).(type) {
	case nil:
		return nil, nil
	case *tome.Map:
		if t == nil {
			return nil, nil
		}
		return toD(t)
	case tome.List:
		arr := make(bson.A, len(t))
		for i, elem := range t {
			raw, err := toBSON(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = raw
		}
		return arr, nil
	case tome.Scalar:
		return t.Raw(), nil
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}
