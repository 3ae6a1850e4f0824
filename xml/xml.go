// Package xml provides the markup tree codec.
//
// Markup has no lists, no maps and no typed text, so the codec writes a
// self-describing shape that it reads back:
//
//   - A map becomes an element per entry, in insertion order.
//   - A list becomes elements named pre0, pre1, ... followed by an empty
//     <collection/> marker.
//   - Numeric keys are written with the pre prefix so they stay valid names.
//   - An empty map is written as a content-less element.
//   - Scalars that are not primitive are written as opaque tokens.
//
// Documents are wrapped in a <root> element.
package xml

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zoobzio/tome"
	"github.com/zoobzio/tome/markup"
	"github.com/zoobzio/tome/opaque"
)

const (
	// Pad prefixes numeric keys and list indices.
	Pad = "pre"

	// CollectionID marks a container as a list.
	CollectionID = "collection"

	// ValueClass marks a container as a list kept in map form.
	ValueClass = "value-class"

	// RootTag is the element wrapping encoded documents.
	RootTag = "root"
)

// maxListIndex bounds the indices accepted when rebuilding a list, so a
// hostile document cannot force a huge allocation.
const maxListIndex = 1 << 16

// Option configures the codec.
type Option func(*xmlCodec)

// WithOpaque sets the strategy used for non-primitive scalars. A nil strategy
// writes every scalar as plain text.
func WithOpaque(s opaque.Strategy) Option {
	return func(c *xmlCodec) {
		c.opaque = s
	}
}

// WithIndent sets the indentation of dumped documents. The default is two
// spaces.
func WithIndent(indent string) Option {
	return func(c *xmlCodec) {
		c.indent = indent
	}
}

// xmlCodec implements tome.Codec for markup trees.
type xmlCodec struct {
	opaque opaque.Strategy
	indent string
}

// New returns a markup tree codec.
func New(opts ...Option) tome.Codec {
	c := &xmlCodec{
		opaque: opaque.CBOR(),
		indent: "  ",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContentType returns the MIME type for XML.
func (c *xmlCodec) ContentType() string {
	return "application/xml"
}

// Format returns tome.FormatXML.
func (c *xmlCodec) Format() tome.Format {
	return tome.FormatXML
}

// Load parses a document and decodes it.
func (c *xmlCodec) Load(r io.Reader) (*tome.Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tome.ErrIO, err)
	}
	doc, err := markup.Parse(data)
	if err != nil {
		return nil, tome.NewCodecError(tome.ErrFormat, tome.FormatXML, err)
	}
	return Decode(doc), nil
}

// Dump encodes data under the root element and prints it.
func (c *xmlCodec) Dump(data *tome.Map, w io.Writer) error {
	return c.DumpContext(context.Background(), data, w)
}

// DumpContext is Dump with ctx passed on to opaque fallback events.
func (c *xmlCodec) DumpContext(ctx context.Context, data *tome.Map, w io.Writer) error {
	if data == nil {
		data = tome.NewMap()
	}
	root, err := encode(ctx, RootTag, data, c.opaque)
	if err != nil {
		return tome.NewCodecError(tome.ErrFormat, tome.FormatXML, err)
	}

	var buf bytes.Buffer
	if err := markup.Print(&buf, markup.Document(root), c.indent); err != nil {
		return tome.NewCodecError(tome.ErrFormat, tome.FormatXML, err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", tome.ErrIO, err)
	}
	return nil
}

// Encode converts v into an element named key using the default opaque
// strategy. Nil values, in maps and lists alike, produce no element.
func Encode(key string, v tome.Value) (*markup.Node, error) {
	return encode(context.Background(), key, v, opaque.CBOR())
}

func encode(ctx context.Context, key string, v tome.Value, strategy opaque.Strategy) (*markup.Node, error) {
	tag := padKey(key)
	if !markup.ValidTag(tag) {
		return nil, fmt.Errorf("%w: %q", markup.ErrInvalidTag, key)
	}

	switch t := tome.Expand(v).(type) {
	case tome.List:
		n := markup.Container(tag)
		for i, elem := range t {
			if elem == nil {
				continue
			}
			child, err := encode(ctx, Pad+strconv.Itoa(i), elem, strategy)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			n.Append(child)
		}
		return n.Append(markup.Empty(CollectionID)), nil

	case *tome.Map:
		if t.Len() == 0 {
			return markup.Empty(tag), nil
		}
		n := markup.Container(tag)
		var err error
		t.Range(func(k string, elem tome.Value) bool {
			if elem == nil {
				return true
			}
			var child *markup.Node
			child, err = encode(ctx, k, elem, strategy)
			if err != nil {
				err = fmt.Errorf("%s: %w", key, err)
				return false
			}
			n.Append(child)
			return true
		})
		if err != nil {
			return nil, err
		}
		return n, nil

	case tome.Scalar:
		text := scalarText(ctx, key, t, strategy)
		if !markup.ValidText(text) {
			return nil, fmt.Errorf("%w: %q", markup.ErrInvalidText, key)
		}
		return markup.Leaf(tag, text), nil

	default:
		return markup.Empty(tag), nil
	}
}

// scalarText returns the text written for s. Opaque values that cannot be
// encoded fall back to their plain text and are reported as an event.
func scalarText(ctx context.Context, key string, s tome.Scalar, strategy opaque.Strategy) string {
	raw := s.Raw()
	if strategy == nil || !strategy.Opaque(raw) {
		return s.Text()
	}
	token, err := strategy.Encode(raw)
	if err != nil {
		tome.EmitOpaqueFallback(ctx, key, fmt.Sprintf("%T", raw), err)
		return s.Text()
	}
	return token
}

// padKey prefixes purely numeric keys with Pad.
func padKey(key string) string {
	if isDigits(key) {
		return Pad + key
	}
	return key
}

// Decode converts a parsed document into a map. A single root element named
// "root" is unwrapped first.
func Decode(doc *markup.Node) *tome.Map {
	top := doc
	if root := doc.Root(); len(doc.Children) == 1 && root.Tag == RootTag &&
		(!root.IsLeaf() || root.Text == nil || strings.TrimSpace(*root.Text) == "") {
		top = root
	}

	raw := toMap(top)
	if raw.Len() == 0 {
		return raw
	}
	return normalize(raw)
}

// toMap converts the children of n into map entries keyed by tag. Repeated
// tags keep their first position and the last value.
func toMap(n *markup.Node) *tome.Map {
	m := tome.NewMap()
	for _, c := range n.Children {
		m.Set(c.Tag, toValue(c))
	}
	return m
}

func toValue(n *markup.Node) tome.Value {
	if !n.IsLeaf() {
		return toMap(n)
	}
	if n.Text == nil {
		return tome.NewMap()
	}
	return tome.String(*n.Text)
}

// normalize strips Pad from numeric keys and rebuilds nested lists.
func normalize(m *tome.Map) *tome.Map {
	out := tome.NewMap()
	m.Range(func(key string, v tome.Value) bool {
		out.Set(unpad(key), convert(v))
		return true
	})
	return out
}

// convert normalizes v, turning list-shaped maps into lists.
func convert(v tome.Value) tome.Value {
	m, ok := v.(*tome.Map)
	if !ok {
		return v
	}
	if out, ok := convertValueClass(m); ok {
		return out
	}
	if out, ok := convertCollection(m); ok {
		return out
	}
	return normalize(m)
}

// convertValueClass handles maps marked with ValueClass. They stay maps with
// bare numeric keys and keep the marker entry.
func convertValueClass(m *tome.Map) (*tome.Map, bool) {
	if !m.Has(ValueClass) || !indexed(m, ValueClass) {
		return nil, false
	}
	out := tome.NewMap()
	m.Range(func(key string, v tome.Value) bool {
		if key == ValueClass {
			out.Set(key, v)
			return true
		}
		idx, _ := index(key)
		out.Set(strconv.Itoa(idx), convert(v))
		return true
	})
	return out, true
}

// convertCollection handles maps marked with CollectionID. Elements go to
// their index and missing positions are left nil.
func convertCollection(m *tome.Map) (tome.List, bool) {
	if !m.Has(CollectionID) || m.Has(ValueClass) || !indexed(m, CollectionID) {
		return nil, false
	}
	list := tome.List{}
	m.Range(func(key string, v tome.Value) bool {
		if key == CollectionID {
			return true
		}
		idx, _ := index(key)
		for len(list) <= idx {
			list = append(list, nil)
		}
		list[idx] = convert(v)
		return true
	})
	return list, true
}

// indexed reports whether every key of m other than marker is an index.
func indexed(m *tome.Map, marker string) bool {
	ok := true
	m.Range(func(key string, _ tome.Value) bool {
		if key != marker {
			_, ok = index(key)
		}
		return ok
	})
	return ok
}

// index parses a padded index key such as "pre3".
func index(key string) (int, bool) {
	digits, found := strings.CutPrefix(key, Pad)
	if !found || !isDigits(digits) {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n > maxListIndex {
		return 0, false
	}
	return n, true
}

// unpad strips Pad from keys made of Pad and digits. The digits are kept as
// written, so "pre007" becomes "007".
func unpad(key string) string {
	digits, found := strings.CutPrefix(key, Pad)
	if !found || !isDigits(digits) {
		return key
	}
	return digits
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
