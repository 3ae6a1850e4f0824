package tome

import (
	"errors"
	"fmt"
	"sync"
)

// Registry errors.
var (
	ErrNilCodec       = errors.New("nil codec")
	ErrDuplicateCodec = errors.New("duplicate codec")
)

// Registry is the ordered list of codecs a Resolver tries. Registration order
// is trial order. A registry is meant to be populated once at startup and read
// afterwards; it is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs []Codec
	byFmt  map[Format]Codec
}

// NewRegistry returns a registry holding codecs in the given order.
// It panics if a codec is nil or two codecs share a format, since the list
// is fixed by the program rather than by input.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{byFmt: make(map[Format]Codec, len(codecs))}
	for _, c := range codecs {
		if err := r.Register(c); err != nil {
			panic("tome: NewRegistry: " + err.Error())
		}
	}
	return r
}

// Register appends c to the trial order.
func (r *Registry) Register(c Codec) error {
	if c == nil {
		return ErrNilCodec
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byFmt[c.Format()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCodec, c.Format())
	}
	r.codecs = append(r.codecs, c)
	r.byFmt[c.Format()] = c
	return nil
}

// Lookup returns the codec registered for f.
func (r *Registry) Lookup(f Format) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byFmt[f]
	return c, ok
}

// Codecs returns a snapshot of the registered codecs in trial order.
func (r *Registry) Codecs() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Codec, len(r.codecs))
	copy(out, r.codecs)
	return out
}

// Len returns the number of registered codecs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codecs)
}
