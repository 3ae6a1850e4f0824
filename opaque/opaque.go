// Package opaque turns values that have no native textual form into portable
// text tokens and back.
//
// Formats that only carry text, such as markup trees, use a Strategy for leaf
// values that are not primitive scalars. The default strategy encodes values
// as deterministic CBOR wrapped in standard base64, so an unchanged value
// always produces the same token.
package opaque

import (
	"encoding/base64"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/zoobzio/tome"
)

// Strategy encodes and decodes opaque leaf values.
type Strategy interface {
	// Opaque reports whether v needs a token rather than its plain text form.
	Opaque(v any) bool

	// Encode returns the token for v. Failures wrap tome.ErrEncoding.
	Encode(v any) (string, error)

	// Decode parses token into target, which must be a non-nil pointer.
	// Failures wrap tome.ErrDecoding.
	Decode(token string, target any) error
}

// Primitive reports whether v is nil or of a boolean, numeric or string kind,
// including named types built on those kinds.
func Primitive(v any) bool {
	if v == nil {
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

// DecodeScalar decodes the token held by sc into target.
func DecodeScalar(s Strategy, sc tome.Scalar, target any) error {
	return s.Decode(sc.Text(), target)
}

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2) so the same value
// always yields the same token.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("opaque: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("opaque: CBOR decoder initialization failed: " + err.Error())
	}
}

// cborStrategy implements Strategy with base64-wrapped CBOR.
type cborStrategy struct{}

// CBOR returns the default strategy.
func CBOR() Strategy {
	return cborStrategy{}
}

func (cborStrategy) Opaque(v any) bool {
	return !Primitive(v)
}

func (cborStrategy) Encode(v any) (string, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %T: %w", tome.ErrEncoding, v, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (cborStrategy) Decode(token string, target any) error {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("%w: base64: %w", tome.ErrDecoding, err)
	}
	if err := decMode.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %T: %w", tome.ErrDecoding, target, err)
	}
	return nil
}
