// Package yaml provides a YAML codec implementation.
//
// Documents are read through yaml.Node so mapping order survives a round
// trip. Anchors, aliases and merge keys are resolved on load.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zoobzio/tome"
)

var errNotMapping = errors.New("top level is not a mapping")

// Option configures the codec.
type Option func(*yamlCodec)

// WithIndent sets the number of spaces used for indentation. The default is
// two.
func WithIndent(spaces int) Option {
	return func(c *yamlCodec) {
		if spaces >= 0 {
			c.indent = spaces
		}
	}
}

// yamlCodec implements tome.Codec for YAML.
type yamlCodec struct {
	indent int
}

// New returns a YAML codec.
func New(opts ...Option) tome.Codec {
	c := &yamlCodec{indent: 2}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Format returns tome.FormatYAML.
func (c *yamlCodec) Format() tome.Format {
	return tome.FormatYAML
}

// Load decodes the first document of a YAML stream. Empty documents and a
// top-level null yield an empty map.
func (c *yamlCodec) Load(r io.Reader) (*tome.Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tome.ErrIO, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, tome.NewCodecError(tome.ErrFormat, tome.FormatYAML, err)
	}
	if len(doc.Content) == 0 {
		return tome.NewMap(), nil
	}

	root := resolveAlias(doc.Content[0])
	switch {
	case root.Kind == yaml.MappingNode:
	case root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null":
		return tome.NewMap(), nil
	default:
		return nil, tome.NewCodecError(tome.ErrFormat, tome.FormatYAML, errNotMapping)
	}

	m := tome.NewMap()
	if err := readMapping(m, root); err != nil {
		return nil, tome.NewCodecError(tome.ErrFormat, tome.FormatYAML, err)
	}
	return m, nil
}

// Dump encodes data as a YAML mapping.
func (c *yamlCodec) Dump(data *tome.Map, w io.Writer) error {
	root, err := mappingNode(data)
	if err != nil {
		return tome.NewCodecError(tome.ErrFormat, tome.FormatYAML, err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(c.indent)
	if err := enc.Encode(root); err != nil {
		return tome.NewCodecError(tome.ErrFormat, tome.FormatYAML, err)
	}
	if err := enc.Close(); err != nil {
		return tome.NewCodecError(tome.ErrFormat, tome.FormatYAML, err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", tome.ErrIO, err)
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// readMapping adds the pairs of a mapping node to m. Explicit keys override
// merged ones regardless of where the merge key appears.
func readMapping(m *tome.Map, n *yaml.Node) error {
	explicit := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]

		if key.ShortTag() == "!!merge" {
			if err := merge(m, explicit, val); err != nil {
				return err
			}
			continue
		}

		key = resolveAlias(key)
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mapping key is not a scalar", key.Line)
		}
		v, err := toValue(val)
		if err != nil {
			return fmt.Errorf("%s: %w", key.Value, err)
		}
		m.Set(key.Value, v)
		explicit[key.Value] = true
	}
	return nil
}

// merge applies a merge key value, a mapping or a sequence of mappings.
func merge(m *tome.Map, explicit map[string]bool, n *yaml.Node) error {
	n = resolveAlias(n)
	sources := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		sources = n.Content
	}
	for _, src := range sources {
		src = resolveAlias(src)
		if src.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: merge value is not a mapping", src.Line)
		}
		merged := tome.NewMap()
		if err := readMapping(merged, src); err != nil {
			return err
		}
		merged.Range(func(key string, v tome.Value) bool {
			if !explicit[key] && !m.Has(key) {
				m.Set(key, v)
			}
			return true
		})
	}
	return nil
}

func toValue(n *yaml.Node) (tome.Value, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		m := tome.NewMap()
		if err := readMapping(m, n); err != nil {
			return nil, err
		}
		return m, nil
	case yaml.SequenceNode:
		list := make(tome.List, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := toValue(c)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return nil, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return tome.NewScalar(v), nil
	default:
		return nil, fmt.Errorf("line %d: unexpected node kind %d", n.Line, n.Kind)
	}
}

func mappingNode(m *tome.Map) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var err error
	m.Range(func(key string, v tome.Value) bool {
		var val *yaml.Node
		if val, err = toNode(v); err != nil {
			err = fmt.Errorf("%s: %w", key, err)
			return false
		}
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			val,
		)
		return true
	})
	return n, err
}

func toNode(v tome.Value) (*yaml.Node, error) {
	switch t := tome.Expand(v).(type) {
	case nil:
		return nullNode(), nil
	case *tome.Map:
		if t == nil {
			return nullNode(), nil
		}
		return mappingNode(t)
	case tome.List:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, elem := range t {
			c, err := toNode(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case tome.Scalar:
		n := &yaml.Node{}
		if err := n.Encode(t.Raw()); err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
