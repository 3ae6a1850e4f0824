package tome

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var errRejected = errors.New("rejected")

func TestResolve_FirstSuccessWins(t *testing.T) {
	a := &stubCodec{format: FormatJSON, err: NewCodecError(ErrFormat, FormatJSON, errRejected)}
	b := &stubCodec{format: FormatXML, data: NewMap().Set("from", String("b"))}
	c := &stubCodec{format: FormatYAML, data: NewMap().Set("from", String("c"))}

	cfg, err := NewResolver(NewRegistry(a, b, c)).Resolve(context.Background(), FromString("anything"))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cfg.Codec() != b {
		t.Errorf("Resolve() picked %s, want xml", cfg.Codec().Format())
	}
	if a.calls != 1 || b.calls != 1 || c.calls != 0 {
		t.Errorf("calls = %d/%d/%d, want 1/1/0", a.calls, b.calls, c.calls)
	}
	if v, _ := cfg.Data().Get("from"); v.(Scalar).Text() != "b" {
		t.Errorf("data from = %v, want b", v)
	}
}

func TestResolve_AllFail(t *testing.T) {
	a := &stubCodec{format: FormatJSON, err: NewCodecError(ErrFormat, FormatJSON, errRejected)}
	b := &stubCodec{format: FormatXML, err: NewCodecError(ErrFormat, FormatXML, errRejected)}
	c := &stubCodec{format: FormatYAML, err: NewCodecError(ErrFormat, FormatYAML, errRejected)}

	_, err := NewResolver(NewRegistry(a, b, c)).Resolve(context.Background(), FromString("anything"))
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("Resolve() error = %v, want ErrUnresolved", err)
	}

	var rerr *ResolveError
	if !errors.As(err, &rerr) {
		t.Fatalf("Resolve() error = %T, want *ResolveError", err)
	}
	if rerr.Tried != 3 {
		t.Errorf("Tried = %d, want 3", rerr.Tried)
	}
	for i, want := range []Format{FormatJSON, FormatXML, FormatYAML} {
		var cerr *CodecError
		if !errors.As(rerr.Failures[i], &cerr) || cerr.Format != want {
			t.Errorf("Failures[%d] = %v, want %s failure", i, rerr.Failures[i], want)
		}
	}
}

func TestResolve_EmptyRegistry(t *testing.T) {
	for _, r := range []*Resolver{NewResolver(NewRegistry()), NewResolver(nil)} {
		_, err := r.Resolve(context.Background(), Empty())
		var rerr *ResolveError
		if !errors.As(err, &rerr) || rerr.Tried != 0 {
			t.Errorf("Resolve() error = %v, want ResolveError with 0 tried", err)
		}
	}
}

func TestResolve_MissingFile(t *testing.T) {
	a := &stubCodec{format: FormatJSON}
	b := &stubCodec{format: FormatXML}

	path := filepath.Join(t.TempDir(), "missing.json")
	_, err := NewResolver(NewRegistry(a, b)).Resolve(context.Background(), FromFile(path))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Resolve() error = %v, want os.ErrNotExist", err)
	}
	if errors.Is(err, ErrUnresolved) {
		t.Error("missing file should not be reported as unresolved")
	}
	if b.calls != 0 {
		t.Errorf("second codec tried %d times, want 0", b.calls)
	}
}

func TestResolve_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.conf")
	if err := os.WriteFile(path, []byte("payload"), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	a := &stubCodec{format: FormatJSON, err: errRejected}
	b := &stubCodec{format: FormatTOML}

	cfg, err := NewResolver(NewRegistry(a, b)).Resolve(context.Background(), FromFile(path))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if cfg.Codec().Format() != FormatTOML {
		t.Errorf("format = %s, want toml", cfg.Codec().Format())
	}
}
