package tome

import (
	"context"
	"errors"
	"os"
	"time"
)

// Resolver picks the codec for a source by trial. Codecs are tried one at a
// time in registry order and the first that loads the source wins.
type Resolver struct {
	registry *Registry
}

// NewResolver returns a resolver trying the codecs of reg.
func NewResolver(reg *Registry) *Resolver {
	return &Resolver{registry: reg}
}

// Resolve loads src with the first codec able to read it.
//
// A failure caused by a missing file is returned at once, without trying the
// remaining codecs. When every codec fails, or none is registered, Resolve
// returns a *ResolveError holding the individual failures.
func (r *Resolver) Resolve(ctx context.Context, src Source) (*Configuration, error) {
	start := time.Now()

	var codecs []Codec
	if r.registry != nil {
		codecs = r.registry.Codecs()
	}

	failures := make([]error, 0, len(codecs))
	for _, c := range codecs {
		cfg, err := Load(ctx, c, src)
		emitResolveAttempt(ctx, c.ContentType(), err)
		if err == nil {
			emitResolveComplete(ctx, c.ContentType(), len(failures)+1, time.Since(start), nil)
			return cfg, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			emitResolveComplete(ctx, c.ContentType(), len(failures)+1, time.Since(start), err)
			return nil, err
		}
		failures = append(failures, err)
	}

	err := newResolveError(failures)
	emitResolveComplete(ctx, "", len(failures), time.Since(start), err)
	return nil, err
}
