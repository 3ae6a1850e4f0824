package tome

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Path errors returned by WriteFile.
var (
	ErrInaccessiblePath        = errors.New("inaccessible path")
	ErrCannotCreateDirectories = errors.New("cannot create directories")
	ErrNoPath                  = errors.New("no path")
)

// Configuration is a loaded document: its top-level map together with the
// codec that reads and writes it. A Configuration is not safe for concurrent
// use.
type Configuration struct {
	codec Codec
	data  *Map
	path  string
	sum   Fingerprint
}

// New returns an empty configuration written with c.
func New(c Codec) *Configuration {
	return &Configuration{codec: c, data: NewMap()}
}

// Load reads src with c.
func Load(ctx context.Context, c Codec, src Source) (*Configuration, error) {
	start := time.Now()

	var size int
	var retErr error
	defer func() {
		emitLoadComplete(ctx, c.ContentType(), size, time.Since(start), retErr)
	}()

	rc, err := src.Open()
	if err != nil {
		retErr = err
		return nil, retErr
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		retErr = fmt.Errorf("%w: read: %w", ErrIO, err)
		return nil, retErr
	}
	size = len(raw)

	data, err := c.Load(bytes.NewReader(raw))
	if err != nil {
		retErr = err
		return nil, retErr
	}
	if data == nil {
		data = NewMap()
	}

	return &Configuration{
		codec: c,
		data:  data,
		path:  src.Path(),
		sum:   Sum(raw),
	}, nil
}

// Codec returns the codec the configuration was loaded with.
func (c *Configuration) Codec() Codec { return c.codec }

// Data returns the top-level map. Changes to it are picked up by the next save.
func (c *Configuration) Data() *Map { return c.data }

// Path returns the file the configuration was read from or last written to.
func (c *Configuration) Path() string { return c.path }

// Bytes dumps the configuration.
func (c *Configuration) Bytes() ([]byte, error) {
	return Marshal(c.codec, c.data)
}

// Save dumps the configuration to w.
func (c *Configuration) Save(ctx context.Context, w io.Writer) error {
	data, err := c.dump(ctx)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: write: %w", ErrIO, err)
	}
	return nil
}

// WriteFile dumps the configuration to path, or to Path() when path is empty.
// The file is replaced atomically. When the dumped bytes are identical to what
// was last read from or written to that same file, nothing is written and
// WriteFile reports false.
func (c *Configuration) WriteFile(ctx context.Context, path string) (bool, error) {
	if path == "" {
		path = c.path
	}
	if path == "" {
		return false, ErrNoPath
	}

	data, err := c.dump(ctx)
	if err != nil {
		return false, err
	}

	sum := Sum(data)
	if path == c.path && sum == c.sum {
		if _, err := os.Stat(path); err == nil {
			emitSaved(ctx, path, len(data), false)
			return false, nil
		}
	}

	if err := EnsurePath(path); err != nil {
		return false, err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return false, err
	}

	c.path = path
	c.sum = sum
	emitSaved(ctx, path, len(data), true)
	return true, nil
}

func (c *Configuration) dump(ctx context.Context) ([]byte, error) {
	start := time.Now()
	data, err := MarshalContext(ctx, c.codec, c.data)
	emitDumpComplete(ctx, c.codec.ContentType(), len(data), time.Since(start), err)
	return data, err
}

// EnsurePath ensures the directories for a file path exist and the path
// does not already exist as a directory.
func EnsurePath(p string) error {
	info, err := os.Stat(p)
	switch {
	case err == nil:
		if info.IsDir() {
			return ErrInaccessiblePath
		}
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrInaccessiblePath, err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("%w: %w", ErrCannotCreateDirectories, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "temp-config-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrIO, err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %w", ErrIO, err)
	}
	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("%w: rename temp file to %s: %w", ErrIO, path, err)
	}
	return nil
}
