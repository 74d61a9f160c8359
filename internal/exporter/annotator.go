package exporter

import (
	"context"
	"log"
	"strconv"

	"github.com/mrlokans/cdm-migrate/internal/compound"
	"github.com/mrlokans/cdm-migrate/internal/xmltree"
)

// Annotator attaches page-level metadata to compound structures and
// collects the same metadata in a MetadataStore.
type Annotator struct {
	source Source
	store  *MetadataStore
}

func NewAnnotator(source Source, store *MetadataStore) *Annotator {
	return &Annotator{source: source, store: store}
}

// Annotate visits every page of the structure at any depth. Pages without
// a pointer and pages whose metadata cannot be fetched are logged and
// skipped. It returns the number of pages that received a <pagemetadata>
// element.
func (a *Annotator) Annotate(ctx context.Context, alias string, recordID int, structure *compound.Structure) int {
	if structure.Empty() {
		return 0
	}

	annotated := 0
	_ = compound.Walk(structure.Nodes, func(page *compound.Page) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if page.Pointer == "" {
			log.Printf("Warning: record %d: compound object page %q has no file level ID (pageptr)", recordID, page.Title)
			return nil
		}
		pageID, err := strconv.Atoi(page.Pointer)
		if err != nil {
			log.Printf("Warning: record %d: invalid pageptr %q", recordID, page.Pointer)
			return nil
		}

		info, err := a.source.ItemInfoXML(ctx, alias, pageID)
		if err != nil {
			log.Printf("Warning: record %d: page metadata of %d: %v", recordID, pageID, err)
		} else if meta := StripEmptyFields(info); meta != nil {
			page.Annotate(meta)
			annotated++
		}

		fields, err := a.source.ItemInfoJSON(ctx, alias, pageID)
		if err != nil {
			log.Printf("Warning: record %d: page metadata of %d: %v", recordID, pageID, err)
			return nil
		}
		a.store.Add(page.Pointer, fields)
		return nil
	})
	return annotated
}

// StripEmptyFields returns a <pagemetadata> element holding the fields of
// info that have text or child elements, or nil when none do.
func StripEmptyFields(info *xmltree.Element) *xmltree.Element {
	meta := xmltree.New(compound.TagPageMetadata)
	for _, field := range info.Children {
		if field.HasContent() {
			meta.Append(field)
		}
	}
	if len(meta.Children) == 0 {
		return nil
	}
	return meta
}
