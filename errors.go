package tome

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrIO indicates an underlying read or write failed, including a missing file.
	ErrIO = errors.New("i/o failed")

	// ErrFormat indicates input bytes do not parse as the attempted format,
	// or data cannot be expressed in it.
	ErrFormat = errors.New("format failed")

	// ErrEncoding indicates an opaque value could not be turned into a token.
	// Codecs recover from it locally by writing the plain text form.
	ErrEncoding = errors.New("opaque encoding failed")

	// ErrDecoding indicates an opaque token could not be turned back into a value.
	ErrDecoding = errors.New("opaque decoding failed")

	// ErrUnresolved indicates no registered codec could read a source.
	ErrUnresolved = errors.New("unresolved format")
)

// CodecError represents a load/dump failure of a single codec.
type CodecError struct {
	Err    error  // Underlying sentinel error (ErrFormat, ErrIO)
	Format Format // Format of the codec that failed
	Cause  error  // Original error from the parser or writer
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Format, e.Err.Error(), e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Format, e.Err.Error())
}

func (e *CodecError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// ResolveError is returned when every candidate codec failed to read a source.
// Failures holds one error per codec tried, in trial order.
type ResolveError struct {
	Tried    int
	Failures []error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: no codec could read the source (%d tried)", ErrUnresolved.Error(), e.Tried)
}

func (e *ResolveError) Unwrap() []error {
	return append([]error{ErrUnresolved}, e.Failures...)
}

// NewCodecError creates a CodecError. Codec implementations use it so that
// callers can match failures with errors.Is.
func NewCodecError(sentinel error, format Format, cause error) error {
	return &CodecError{
		Err:    sentinel,
		Format: format,
		Cause:  cause,
	}
}

// newResolveError creates a ResolveError for an exhausted trial.
func newResolveError(failures []error) error {
	return &ResolveError{
		Tried:    len(failures),
		Failures: failures,
	}
}
