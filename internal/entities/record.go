package entities

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mrlokans/cdm-migrate/internal/compound"
	"github.com/mrlokans/cdm-migrate/internal/xmltree"
)

// Element names used in exported chunk documents.
const (
	TagCollection = "collection"
	TagRecord     = "record"
	TagCdmID      = "cdmid"
	TagDmRecord   = "dmrecord"
	TagFind       = "find"
)

// Field is one bibliographic field. CONTENTdm field names are the
// collection's nicknames (title, subjec, creato, ...).
type Field struct {
	Name  string
	Value string
}

// Record is one parent-level item of a collection.
type Record struct {
	ID     int
	Alias  string
	Fields []Field

	// Structure is nil for simple items.
	Structure *compound.Structure
	// StructureCount is the number of <structure> elements seen when the
	// record was read back from an export file.
	StructureCount int

	elem *xmltree.Element
}

// Field returns the trimmed value of the first field with the given name.
func (r *Record) Field(name string) string {
	for _, f := range r.Fields {
		if f.Name == name {
			return strings.TrimSpace(f.Value)
		}
	}
	return ""
}

// IsCompound reports whether the record has a non-empty structure.
func (r *Record) IsCompound() bool {
	return !r.Structure.Empty()
}

// Element returns the <record> element the record was built from, if any.
func (r *Record) Element() *xmltree.Element {
	return r.elem
}

// NewRecordElement assembles the exported <record> element: the cdmid
// first, then the bibliographic fields in their original order, then the
// optional structure.
func NewRecordElement(id int, fields *xmltree.Element, structure *compound.Structure) *xmltree.Element {
	record := xmltree.New(TagRecord)
	record.Append(xmltree.NewText(TagCdmID, strconv.Itoa(id)))
	if fields != nil {
		record.Append(fields.Children...)
	}
	if structure != nil && structure.Element() != nil {
		record.Append(structure.Element())
	}
	return record
}

// NewRecord builds a record fetched from the API together with its export
// element. Annotations applied to the structure afterwards are reflected in
// the element.
func NewRecord(id int, alias string, fields *xmltree.Element, structure *compound.Structure) *Record {
	rec := &Record{
		ID:        id,
		Alias:     alias,
		Structure: structure,
		elem:      NewRecordElement(id, fields, structure),
	}
	if fields != nil {
		for _, c := range fields.Children {
			rec.Fields = append(rec.Fields, Field{Name: c.Name(), Value: c.Text})
		}
	}
	if structure != nil {
		rec.StructureCount = 1
	}
	return rec
}

// RecordFromElement reads a <record> element of an export file. The id is
// taken from the dmrecord field and falls back to cdmid.
func RecordFromElement(alias string, elem *xmltree.Element) (*Record, error) {
	rec := &Record{Alias: alias, elem: elem}

	var structures []*xmltree.Element
	for _, c := range elem.Children {
		switch c.Name() {
		case compound.TagStructure:
			structures = append(structures, c)
		case TagCdmID:
		default:
			rec.Fields = append(rec.Fields, Field{Name: c.Name(), Value: c.Text})
		}
	}

	rawID := rec.Field(TagDmRecord)
	if rawID == "" {
		rawID = elem.ChildText(TagCdmID)
	}
	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		return rec, fmt.Errorf("record has no usable id (%q)", rawID)
	}
	rec.ID = id

	rec.StructureCount = len(structures)
	if len(structures) > 0 {
		rec.Structure = compound.FromElement(structures[0])
	}
	return rec, nil
}
