package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/zoobzio/tome"
	"github.com/zoobzio/tome/formats"
	tometest "github.com/zoobzio/tome/testing"
)

func TestRoundTrip_AllCodecs(t *testing.T) {
	for _, c := range formats.Default().Codecs() {
		t.Run(string(c.Format()), func(t *testing.T) {
			got, _ := tometest.RoundTrip(t, c, tometest.Sample())
			tometest.AssertEqual(t, got, tometest.Sample())
		})
	}
}

func TestRoundTrip_Deterministic(t *testing.T) {
	for _, c := range formats.Default().Codecs() {
		t.Run(string(c.Format()), func(t *testing.T) {
			first, err := tome.Marshal(c, tometest.Sample())
			if err != nil {
				t.Fatalf("Dump() error: %v", err)
			}
			second, err := tome.Marshal(c, tometest.Sample())
			if err != nil {
				t.Fatalf("Dump() error: %v", err)
			}
			if !bytes.Equal(first, second) {
				t.Errorf("Dump() output differs between calls:\n%s\n%s", first, second)
			}
		})
	}
}

func TestResolve_DumpedOutput(t *testing.T) {
	resolver := formats.Resolver()
	for _, c := range formats.Default().Codecs() {
		t.Run(string(c.Format()), func(t *testing.T) {
			data, err := tome.Marshal(c, tometest.Sample())
			if err != nil {
				t.Fatalf("Dump() error: %v", err)
			}

			cfg, err := resolver.Resolve(context.Background(), tome.FromBytes(data))
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if cfg.Codec().Format() != c.Format() {
				t.Errorf("Resolve() picked %s, want %s", cfg.Codec().Format(), c.Format())
			}
			tometest.AssertEqual(t, cfg.Data(), tometest.Sample())
		})
	}
}

func TestConvert_BetweenCodecs(t *testing.T) {
	codecs := formats.Default().Codecs()
	for _, from := range codecs {
		for _, to := range codecs {
			if from.Format() == to.Format() {
				continue
			}
			t.Run(string(from.Format())+"_to_"+string(to.Format()), func(t *testing.T) {
				loaded, _ := tometest.RoundTrip(t, from, tometest.Sample())
				got, _ := tometest.RoundTrip(t, to, loaded)
				tometest.AssertEqual(t, got, tometest.Sample())
			})
		}
	}
}

func TestSettings_AllCodecs(t *testing.T) {
	data, err := tome.Flatten(tometest.SampleSettings())
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}

	for _, c := range formats.Default().Codecs() {
		t.Run(string(c.Format()), func(t *testing.T) {
			got, _ := tometest.RoundTrip(t, c, data)
			tometest.AssertEqual(t, got, data)

			limits, ok := got.Get("limits")
			if !ok {
				t.Fatal("limits missing after round trip")
			}
			rate, _ := limits.(*tome.Map).Get("rate")
			if rate.(tome.Scalar).Text() != "2.5" {
				t.Errorf("limits.rate = %q, want %q", rate.(tome.Scalar).Text(), "2.5")
			}
		})
	}
}

func TestConfiguration_FileCycle(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	for _, c := range formats.Default().Codecs() {
		t.Run(string(c.Format()), func(t *testing.T) {
			path := filepath.Join(dir, string(c.Format()), "app.conf")

			cfg := tome.New(c)
			tometest.Sample().Range(func(k string, v tome.Value) bool {
				cfg.Data().Set(k, v)
				return true
			})

			written, err := cfg.WriteFile(ctx, path)
			if err != nil {
				t.Fatalf("WriteFile() error: %v", err)
			}
			if !written {
				t.Error("WriteFile() should write a new file")
			}

			loaded, err := formats.Resolver().Resolve(ctx, tome.FromFile(path))
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if loaded.Codec().Format() != c.Format() {
				t.Errorf("Resolve() picked %s, want %s", loaded.Codec().Format(), c.Format())
			}
			if loaded.Path() != path {
				t.Errorf("Path() = %q, want %q", loaded.Path(), path)
			}
			tometest.AssertEqual(t, loaded.Data(), tometest.Sample())

			before, err := os.Stat(path)
			if err != nil {
				t.Fatalf("Stat() error: %v", err)
			}
			written, err = loaded.WriteFile(ctx, "")
			if err != nil {
				t.Fatalf("WriteFile() error: %v", err)
			}
			if written {
				t.Error("WriteFile() should skip an unchanged file")
			}
			after, _ := os.Stat(path)
			if !after.ModTime().Equal(before.ModTime()) {
				t.Error("unchanged file was rewritten")
			}

			loaded.Data().Set("name", tome.String("payments"))
			written, err = loaded.WriteFile(ctx, "")
			if err != nil {
				t.Fatalf("WriteFile() error: %v", err)
			}
			if !written {
				t.Error("WriteFile() should write a changed document")
			}
		})
	}
}
