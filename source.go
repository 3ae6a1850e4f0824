package tome

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Source is where a configuration is read from. Open is called once per
// candidate codec, so every call must return a fresh reader over the same
// content.
type Source interface {
	// Open returns a reader over the source content.
	Open() (io.ReadCloser, error)

	// Path returns the file the source reads, or "" when it has none.
	Path() string
}

// FromString returns a source over raw text.
func FromString(s string) Source {
	return bytesSource(s)
}

// FromBytes returns a source over raw bytes.
func FromBytes(b []byte) Source {
	return bytesSource(b)
}

// Empty returns a source with no content, used for new configurations.
func Empty() Source {
	return bytesSource("")
}

type bytesSource string

func (s bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(s))), nil
}

func (bytesSource) Path() string { return "" }

// FromFile returns a source reading the file at path. A missing file surfaces
// from Open as an ErrIO failure wrapping os.ErrNotExist.
func FromFile(path string) Source {
	return fileSource(path)
}

type fileSource string

func (s fileSource) Open() (io.ReadCloser, error) {
	f, err := os.Open(string(s))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIO, string(s), err)
	}
	return f, nil
}

func (s fileSource) Path() string { return string(s) }

// FromReader returns a source over a stream. The stream is read fully on the
// first Open and replayed for every later one.
func FromReader(r io.Reader) Source {
	return &readerSource{r: r}
}

type readerSource struct {
	r    io.Reader
	once sync.Once
	data []byte
	err  error
}

func (s *readerSource) Open() (io.ReadCloser, error) {
	s.once.Do(func() {
		if s.r == nil {
			return
		}
		s.data, s.err = io.ReadAll(s.r)
		if s.err != nil {
			s.err = fmt.Errorf("%w: read stream: %w", ErrIO, s.err)
		}
	})
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func (*readerSource) Path() string { return "" }
