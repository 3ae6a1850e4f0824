package tome

import (
	"bytes"
	"context"
	"io"
)

// Codec converts between one on-disk format and the generic value model.
// Implementations are stateless and safe to share.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Format returns the format this codec reads and writes.
	Format() Format

	// Load decodes a whole document into its top-level map.
	// Empty input yields an empty map.
	Load(r io.Reader) (*Map, error)

	// Dump encodes data as a whole document.
	Dump(data *Map, w io.Writer) error
}

// ContextDumper is implemented by codecs that report events while dumping.
// Configuration uses it so the caller's context reaches those events.
type ContextDumper interface {
	DumpContext(ctx context.Context, data *Map, w io.Writer) error
}

// MarshalContext dumps data with c, passing ctx along when c is a
// ContextDumper.
func MarshalContext(ctx context.Context, c Codec, data *Map) ([]byte, error) {
	cd, ok := c.(ContextDumper)
	if !ok {
		return Marshal(c, data)
	}
	var buf bytes.Buffer
	if err := cd.DumpContext(ctx, data, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Marshal dumps data with c into a byte slice.
func Marshal(c Codec, data *Map) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Dump(data, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal loads data with c.
func Unmarshal(c Codec, data []byte) (*Map, error) {
	return c.Load(bytes.NewReader(data))
}
