// Package exporter writes a CONTENTdm collection to chunked XML files.
//
// The pipeline is Pager -> RecordFetcher -> Annotator -> ChunkWriter:
// the pager splits the collection into fixed size query windows, the
// fetcher assembles one <record> per item, the annotator optionally
// attaches page metadata to compound structures and the writer emits one
// <collection> document per chunk.
package exporter

import (
	"context"

	"github.com/mrlokans/cdm-migrate/internal/compound"
	"github.com/mrlokans/cdm-migrate/internal/contentdm"
	"github.com/mrlokans/cdm-migrate/internal/xmltree"
)

// Source is the part of the CONTENTdm API the exporter needs.
type Source interface {
	CountRecords(ctx context.Context, alias string, start int) (int, error)
	Query(ctx context.Context, alias string, start, maxrecs int) (*contentdm.QueryResult, error)
	ItemInfoXML(ctx context.Context, alias string, id int) (*xmltree.Element, error)
	ItemInfoJSON(ctx context.Context, alias string, id int) (map[string]any, error)
	CompoundObjectInfo(ctx context.Context, alias string, id int) (*compound.Structure, error)
}
