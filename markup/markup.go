// Package markup models ordered, tag-named markup trees and reads and writes
// them as XML.
//
// A tree carries no list or map distinction and no typed text; giving the
// structure meaning is left to the codec built on top of it. Attributes,
// comments and processing instructions are not part of the model and are
// dropped on parse.
package markup

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse errors.
var (
	ErrMultipleRoots = errors.New("multiple root elements")
	ErrStrayText     = errors.New("text outside the root element")
	ErrInvalidTag    = errors.New("invalid tag name")
	ErrInvalidText   = errors.New("text has characters XML cannot carry")
)

// Node is one element of a markup tree. A node with children is a container
// and its text is ignored. A node without children is a leaf; a nil Text
// marks an element with no content at all, as in <key/>.
type Node struct {
	Tag      string
	Text     *string
	Children []*Node
}

// Leaf returns a leaf node holding text.
func Leaf(tag, text string) *Node {
	return &Node{Tag: tag, Text: &text}
}

// Empty returns a content-less leaf node.
func Empty(tag string) *Node {
	return &Node{Tag: tag}
}

// Container returns a node holding children.
func Container(tag string, children ...*Node) *Node {
	return &Node{Tag: tag, Children: children}
}

// Document returns the document node wrapping root. A document node has an
// empty tag and at most one child.
func Document(root *Node) *Node {
	if root == nil {
		return &Node{}
	}
	return &Node{Children: []*Node{root}}
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Append adds children to n and returns n.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Root returns the single top-level element of a document node, or nil.
func (n *Node) Root() *Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Parse reads an XML document into a document node whose only child is the
// root element. Empty or whitespace-only input yields a document with no
// children. Leaf text is kept verbatim; text between the children of a
// container is discarded.
func Parse(data []byte) (*Node, error) {
	doc := &Node{}
	stack := []*Node{doc}
	texts := []*strings.Builder{nil}

	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 1 && len(doc.Children) > 0 {
				return nil, fmt.Errorf("%w: <%s>", ErrMultipleRoots, t.Name.Local)
			}
			n := &Node{Tag: t.Name.Local}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
			stack = append(stack, n)
			if selfClosing(data, d.InputOffset()) {
				texts = append(texts, nil)
			} else {
				texts = append(texts, &strings.Builder{})
			}

		case xml.EndElement:
			n := stack[len(stack)-1]
			if sb := texts[len(texts)-1]; sb != nil && n.IsLeaf() {
				text := sb.String()
				n.Text = &text
			}
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]

		case xml.CharData:
			if len(stack) == 1 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, fmt.Errorf("%w: %q", ErrStrayText, truncate(string(t)))
				}
				continue
			}
			if sb := texts[len(texts)-1]; sb != nil {
				sb.Write(t)
			}
		}
	}

	return doc, nil
}

// selfClosing reports whether the start tag ending at offset was written as
// <tag/>.
func selfClosing(data []byte, offset int64) bool {
	return offset >= 2 && offset <= int64(len(data)) && data[offset-2] == '/' && data[offset-1] == '>'
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}

// Print writes the tree under n as indented XML terminated by a newline. A
// document node prints its children; any other node prints itself. The output
// depends only on the tree, so printing an unchanged tree is byte-identical.
func Print(w io.Writer, n *Node, indent string) error {
	var buf bytes.Buffer
	nodes := []*Node{n}
	if n.Tag == "" {
		nodes = n.Children
	}
	for _, c := range nodes {
		if err := printNode(&buf, c, indent, 0); err != nil {
			return err
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Bytes prints n into a new slice.
func Bytes(n *Node, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Print(&buf, n, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func printNode(buf *bytes.Buffer, n *Node, indent string, depth int) error {
	if !ValidTag(n.Tag) {
		return fmt.Errorf("%w: %q", ErrInvalidTag, n.Tag)
	}

	for i := 0; i < depth; i++ {
		buf.WriteString(indent)
	}

	switch {
	case !n.IsLeaf():
		buf.WriteString("<" + n.Tag + ">\n")
		for _, c := range n.Children {
			if err := printNode(buf, c, indent, depth+1); err != nil {
				return err
			}
		}
		for i := 0; i < depth; i++ {
			buf.WriteString(indent)
		}
		buf.WriteString("</" + n.Tag + ">\n")

	case n.Text == nil:
		buf.WriteString("<" + n.Tag + "/>\n")

	default:
		if !ValidText(*n.Text) {
			return fmt.Errorf("%w: <%s>", ErrInvalidText, n.Tag)
		}
		buf.WriteString("<" + n.Tag + ">")
		if err := xml.EscapeText(buf, []byte(*n.Text)); err != nil {
			return err
		}
		buf.WriteString("</" + n.Tag + ">\n")
	}
	return nil
}

// ValidTag reports whether tag can be written as an element name: a letter
// or underscore followed by letters, digits, '_', '-' or '.'.
func ValidTag(tag string) bool {
	if tag == "" {
		return false
	}
	for i, r := range tag {
		if r == utf8.RuneError {
			return false
		}
		if unicode.IsLetter(r) || r == '_' {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.') {
			continue
		}
		return false
	}
	return true
}

// ValidText reports whether text is valid UTF-8 made only of characters
// allowed in XML 1.0 documents. Most C0 controls are not.
func ValidText(text string) bool {
	for i, r := range text {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(text[i:]); size == 1 {
				return false
			}
		}
		switch {
		case r == '\t' || r == '\n' || r == '\r':
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
	}
	return true
}
