// Package compound models CONTENTdm compound objects.
//
// A compound object is a tree. The root sequence (the <structure> element
// of an exported record) holds pages and nodes; nodes hold further pages
// and nodes with no fixed depth limit:
//
//	structure
//	├── page          (Page)
//	└── node          (Group)
//	    ├── page
//	    └── node
//	        └── page
//
// The typed tree is a view over the underlying xmltree elements, so page
// metadata attached during export ends up in the serialized record.
package compound

import (
	"strings"

	"github.com/mrlokans/cdm-migrate/internal/xmltree"
)

// PDFPageSuffix marks a page that is part of a PDF-backed compound object.
// Such pages are not downloadable on their own.
const PDFPageSuffix = ".pdfpage"

// Tag names of the compound object vocabulary.
const (
	TagStructure    = "structure"
	TagType         = "type"
	TagPage         = "page"
	TagNode         = "node"
	TagPageTitle    = "pagetitle"
	TagPageFile     = "pagefile"
	TagPagePtr      = "pageptr"
	TagNodeTitle    = "nodetitle"
	TagPageMetadata = "pagemetadata"
)

// Node is either a *Page or a *Group.
type Node interface {
	node()
}

// Page is a leaf of the compound tree.
type Page struct {
	Title    string
	File     string
	Pointer  string
	Metadata *xmltree.Element

	elem *xmltree.Element
}

// Group is an internal <node> element grouping pages and further groups.
type Group struct {
	Title    string
	Children []Node
}

func (*Page) node()  {}
func (*Group) node() {}

// IsPDFPage reports whether the page only marks a PDF-backed object.
func (p *Page) IsPDFPage() bool {
	return strings.HasSuffix(p.File, PDFPageSuffix)
}

// Suffix returns the extension of the page file name including the dot.
func (p *Page) Suffix() string {
	return FileSuffix(p.File)
}

// Annotate attaches page-level metadata to the page element.
func (p *Page) Annotate(metadata *xmltree.Element) {
	metadata.Rename(TagPageMetadata)
	p.Metadata = metadata
	if p.elem != nil {
		p.elem.Append(metadata)
	}
}

// Structure is the root sequence of a compound object.
type Structure struct {
	Type  string
	Nodes []Node

	elem *xmltree.Element
}

// FromElement builds the typed tree for a <structure> (or raw <cpd>)
// element. Children outside the page/node vocabulary are left untouched in
// the element but do not appear in the tree.
func FromElement(elem *xmltree.Element) *Structure {
	return &Structure{
		Type:  elem.ChildText(TagType),
		Nodes: buildNodes(elem),
		elem:  elem,
	}
}

func buildNodes(parent *xmltree.Element) []Node {
	var nodes []Node
	for _, c := range parent.Children {
		switch c.Name() {
		case TagPage:
			nodes = append(nodes, buildPage(c))
		case TagNode:
			nodes = append(nodes, &Group{
				Title:    c.ChildText(TagNodeTitle),
				Children: buildNodes(c),
			})
		}
	}
	return nodes
}

func buildPage(elem *xmltree.Element) *Page {
	return &Page{
		Title:    elem.ChildText(TagPageTitle),
		File:     elem.ChildText(TagPageFile),
		Pointer:  elem.ChildText(TagPagePtr),
		Metadata: elem.Child(TagPageMetadata),
		elem:     elem,
	}
}

// Element returns the underlying <structure> element.
func (s *Structure) Element() *xmltree.Element {
	return s.elem
}

// Empty reports whether the structure has no pages or nodes.
func (s *Structure) Empty() bool {
	return s == nil || len(s.Nodes) == 0
}

// IsPDF reports whether any page in the tree is a PDF page marker.
func (s *Structure) IsPDF() bool {
	if s.Empty() {
		return false
	}
	found := false
	_ = Walk(s.Nodes, func(p *Page) error {
		if p.IsPDFPage() {
			found = true
			return ErrStop
		}
		return nil
	})
	return found
}

// Pages returns every page in document order.
func (s *Structure) Pages() []*Page {
	if s.Empty() {
		return nil
	}
	var pages []*Page
	_ = Walk(s.Nodes, func(p *Page) error {
		pages = append(pages, p)
		return nil
	})
	return pages
}

// FileSuffix returns the extension of a file name including the dot, or
// "" when there is none.
func FileSuffix(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}
