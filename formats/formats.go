// Package formats assembles the codecs shipped with tome into a registry.
package formats

import (
	"github.com/zoobzio/tome"
	"github.com/zoobzio/tome/bson"
	"github.com/zoobzio/tome/json"
	"github.com/zoobzio/tome/msgpack"
	"github.com/zoobzio/tome/toml"
	"github.com/zoobzio/tome/xml"
	"github.com/zoobzio/tome/yaml"
)

// Default returns a registry holding every built-in codec in trial order:
// JSON, XML, TOML, YAML, then the binary formats BSON and MessagePack.
//
// Stricter text formats come first. Most JSON documents are also valid YAML,
// so YAML is tried after the formats that would reject YAML input. Empty
// input loads with the first codec.
func Default() *tome.Registry {
	return tome.NewRegistry(
		json.New(),
		xml.New(),
		toml.New(),
		yaml.New(),
		bson.New(),
		msgpack.New(),
	)
}

// Resolver returns a resolver over Default.
func Resolver() *tome.Resolver {
	return tome.NewResolver(Default())
}
