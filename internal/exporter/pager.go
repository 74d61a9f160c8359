package exporter

import (
	"context"
	"fmt"

	"github.com/mrlokans/cdm-migrate/internal/contentdm"
)

// Pager splits a collection into query windows of ChunkSize records.
type Pager struct {
	source    Source
	alias     string
	chunkSize int
	start     int
}

func NewPager(source Source, alias string, chunkSize, start int) *Pager {
	return &Pager{source: source, alias: alias, chunkSize: chunkSize, start: start}
}

// Plan runs the preliminary query and returns the collection size and the
// number of chunks to request. A collection without records returns
// contentdm.ErrNoRecords.
func (p *Pager) Plan(ctx context.Context) (total, chunks int, err error) {
	total, err = p.source.CountRecords(ctx, p.alias, p.start)
	if err != nil {
		return 0, 0, err
	}
	return total, ChunkCount(total, p.chunkSize), nil
}

// ChunkCount is total/chunkSize + 1. The extra chunk covers the remainder;
// when total divides evenly it comes back empty.
func ChunkCount(total, chunkSize int) int {
	return total/chunkSize + 1
}

// ChunkStart returns the query offset of the n-th chunk (1-based).
func (p *Pager) ChunkStart(n int) int {
	return p.start + (n-1)*p.chunkSize
}

// Chunk returns the records of the n-th chunk.
func (p *Pager) Chunk(ctx context.Context, n int) ([]contentdm.QueryRecord, error) {
	start := p.ChunkStart(n)
	result, err := p.source.Query(ctx, p.alias, start, p.chunkSize)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve chunk starting at %d: %w", start, err)
	}
	if result == nil {
		return nil, fmt.Errorf("could not retrieve chunk starting at %d: %w", start, contentdm.ErrEmptyResponse)
	}
	return result.Records, nil
}
