// Package tome provides a uniform hierarchical key/value view over
// configuration files written in several formats.
//
// Every format is handled by a Codec that loads a document into a generic
// value model and dumps it back. A Resolver picks the codec for raw input by
// trial rather than by file extension.
//
// # Value Model
//
// Documents load into a *Map, an insertion-ordered mapping of string keys to
// values. A Value is one of:
//
//   - Scalar: a leaf holding the raw value it was built from
//   - List: an ordered sequence; nil elements mark sparse positions
//   - *Map: a nested mapping
//
// Typing, coercion and path addressing belong to the layer above; codecs only
// move structure.
//
// # Basic Usage
//
//	reg := formats.Default()
//	cfg, err := tome.NewResolver(reg).Resolve(ctx, tome.FromFile("config.xml"))
//	if err != nil {
//	    return err
//	}
//
//	cfg.Data().Set("port", tome.NewScalar(8080))
//	if _, err := cfg.WriteFile(ctx, ""); err != nil {
//	    return err
//	}
//
// # Format Resolution
//
// Resolve tries each registered codec in registration order and returns the
// first configuration that loads. A missing file is reported immediately. When
// every codec fails the error is a *ResolveError:
//
//	var rerr *tome.ResolveError
//	if errors.As(err, &rerr) {
//	    log.Printf("tried %d formats", rerr.Tried)
//	}
//
// # Codec Providers
//
// The following codec implementations are available as subpackages:
//
//   - json - JSON (application/json), comments tolerated on load
//   - xml - markup trees (application/xml)
//   - toml - TOML (application/toml)
//   - yaml - YAML (application/yaml)
//   - bson - BSON (application/bson)
//   - msgpack - MessagePack (application/msgpack)
//
// The formats package assembles them into the default registry.
//
// # Composite Values
//
// Types implementing Flattener are written as maps. Plain structs can be
// converted with Flatten, which honors `tome` struct tags.
//
// # Events
//
// Loads, dumps, resolution attempts and saves are reported through capitan
// signals (SignalLoadComplete, SignalResolveComplete and friends).
package tome
