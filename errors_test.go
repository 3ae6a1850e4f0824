package tome

import (
	"errors"
	"strings"
	"testing"
)

func TestCodecError_Is(t *testing.T) {
	cause := errors.New("invalid character")
	err := NewCodecError(ErrFormat, FormatJSON, cause)

	if !errors.Is(err, ErrFormat) {
		t.Error("CodecError should unwrap to ErrFormat")
	}
	if !errors.Is(err, cause) {
		t.Error("CodecError should unwrap to its cause")
	}
	if errors.Is(err, ErrIO) {
		t.Error("CodecError should not match ErrIO")
	}

	var cerr *CodecError
	if !errors.As(err, &cerr) || cerr.Format != FormatJSON {
		t.Errorf("errors.As() = %+v, want json CodecError", cerr)
	}
}

func TestCodecError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "with cause",
			err:  NewCodecError(ErrFormat, FormatYAML, errors.New("line 3: bad indentation")),
			want: "yaml format failed: line 3: bad indentation",
		},
		{
			name: "without cause",
			err:  &CodecError{Err: ErrFormat, Format: FormatTOML},
			want: "toml format failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveError(t *testing.T) {
	first := NewCodecError(ErrFormat, FormatJSON, errors.New("invalid character"))
	err := newResolveError([]error{first, errors.New("second")})

	if !errors.Is(err, ErrUnresolved) {
		t.Error("ResolveError should unwrap to ErrUnresolved")
	}
	if !errors.Is(err, ErrFormat) {
		t.Error("ResolveError should unwrap to the recorded failures")
	}

	var rerr *ResolveError
	if !errors.As(err, &rerr) {
		t.Fatal("errors.As() should find *ResolveError")
	}
	if rerr.Tried != 2 || len(rerr.Failures) != 2 {
		t.Errorf("Tried = %d, Failures = %d, want 2 and 2", rerr.Tried, len(rerr.Failures))
	}
	if !strings.Contains(err.Error(), "(2 tried)") {
		t.Errorf("Error() = %q, want tried count", err.Error())
	}
}

func TestResolveError_Empty(t *testing.T) {
	err := newResolveError(nil)
	if !errors.Is(err, ErrUnresolved) {
		t.Error("empty ResolveError should unwrap to ErrUnresolved")
	}
	if !strings.Contains(err.Error(), "(0 tried)") {
		t.Errorf("Error() = %q, want (0 tried)", err.Error())
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{ErrIO, ErrFormat, ErrEncoding, ErrDecoding, ErrUnresolved}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}
