package exporter

import (
	"context"
	"fmt"

	"github.com/mrlokans/cdm-migrate/internal/contentdm"
	"github.com/mrlokans/cdm-migrate/internal/entities"
)

// RecordFetcher assembles the export record of one query hit.
type RecordFetcher struct {
	source Source
}

func NewRecordFetcher(source Source) *RecordFetcher {
	return &RecordFetcher{source: source}
}

// Fetch retrieves the bibliographic fields and, for compound objects, the
// structure of a record. The alias is taken from the query hit.
func (f *RecordFetcher) Fetch(ctx context.Context, hit contentdm.QueryRecord) (*entities.Record, error) {
	alias := hit.Alias()
	id := hit.ID()

	fields, err := f.source.ItemInfoXML(ctx, alias, id)
	if err != nil {
		return nil, fmt.Errorf("item info of %d: %w", id, err)
	}

	structure, err := f.source.CompoundObjectInfo(ctx, alias, id)
	if err != nil {
		return nil, fmt.Errorf("compound info of %d: %w", id, err)
	}

	return entities.NewRecord(id, alias, fields, structure), nil
}
