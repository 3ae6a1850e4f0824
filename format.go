package tome

// Format names a supported on-disk serialization.
type Format string

const (
	// FormatJSON is JSON, with comments and trailing commas tolerated on load.
	FormatJSON Format = "json"

	// FormatXML is the markup-tree format.
	FormatXML Format = "xml"

	// FormatTOML is TOML.
	FormatTOML Format = "toml"

	// FormatYAML is YAML.
	FormatYAML Format = "yaml"

	// FormatBSON is binary JSON as used by MongoDB.
	FormatBSON Format = "bson"

	// FormatMsgPack is MessagePack.
	FormatMsgPack Format = "msgpack"
)

// validFormats contains all known formats.
var validFormats = map[Format]bool{
	FormatJSON:    true,
	FormatXML:     true,
	FormatTOML:    true,
	FormatYAML:    true,
	FormatBSON:    true,
	FormatMsgPack: true,
}

// IsValidFormat returns true if f is a known format.
func IsValidFormat(f Format) bool {
	return validFormats[f]
}
