// Package xmltree holds a small order-preserving XML element tree.
//
// CONTENTdm field sets are defined per collection, so records and compound
// structures cannot be mapped onto fixed structs. Element keeps every child
// in document order which lets a record be re-serialized with the same
// field order it was received in.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Element is a generic XML element.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []*Element `xml:",any"`
}

// New returns an empty element with the given tag.
func New(name string) *Element {
	return &Element{XMLName: xml.Name{Local: name}}
}

// NewText returns a leaf element holding text.
func NewText(name, text string) *Element {
	e := New(name)
	e.Text = text
	return e
}

// Parse decodes a document and returns its root element. Any XML
// declaration is consumed by the decoder.
func Parse(b []byte) (*Element, error) {
	return Decode(bytes.NewReader(b))
}

// Decode reads a document from r and returns its root element.
func Decode(r io.Reader) (*Element, error) {
	var root Element
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	root.normalize()
	return &root, nil
}

// normalize drops the indentation whitespace the decoder collects as
// character data of elements that have children.
func (e *Element) normalize() {
	if len(e.Children) > 0 && strings.TrimSpace(e.Text) == "" {
		e.Text = ""
	}
	for _, c := range e.Children {
		c.normalize()
	}
}

// Name returns the local tag name.
func (e *Element) Name() string {
	return e.XMLName.Local
}

// Rename changes the tag name, dropping any namespace.
func (e *Element) Rename(name string) {
	e.XMLName = xml.Name{Local: name}
}

// Append adds children at the end.
func (e *Element) Append(children ...*Element) {
	e.Children = append(e.Children, children...)
}

// Child returns the first child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all children with the given name.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name() == name {
			out = append(out, c)
		}
	}
	return out
}

// ChildText returns the trimmed text of the first child with the given
// name, or "" when there is none.
func (e *Element) ChildText(name string) string {
	if c := e.Child(name); c != nil {
		return strings.TrimSpace(c.Text)
	}
	return ""
}

// HasContent reports whether the element carries text or child elements.
func (e *Element) HasContent() bool {
	return strings.TrimSpace(e.Text) != "" || len(e.Children) > 0
}

// WriteDocument writes e as an indented UTF-8 document with declaration.
func (e *Element) WriteDocument(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
