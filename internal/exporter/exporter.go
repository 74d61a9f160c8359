package exporter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/mrlokans/cdm-migrate/internal/config"
	"github.com/mrlokans/cdm-migrate/internal/entities"
	"github.com/mrlokans/cdm-migrate/internal/services"
)

var ErrAlreadyRunning = errors.New("an export of this collection is already running")

// Options control an export run.
type Options struct {
	Alias        string
	Dir          string
	ChunkSize    int
	StartAt      int
	LastRecord   int // 0 exports everything
	PageMetadata bool
	Verbose      bool
}

// Exporter runs the export pipeline of one collection.
type Exporter struct {
	opts      Options
	reporter  services.ProgressReporter
	pager     *Pager
	fetcher   *RecordFetcher
	annotator *Annotator
	writer    *ChunkWriter
	store     *MetadataStore
}

// New creates an exporter. A nil reporter disables progress reporting.
func New(source Source, opts Options, reporter services.ProgressReporter) *Exporter {
	if reporter == nil {
		reporter = services.NopReporter{}
	}
	if opts.StartAt < 1 {
		opts.StartAt = 1
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = config.DefaultChunkSize
	}
	store := NewMetadataStore()
	return &Exporter{
		opts:      opts,
		reporter:  reporter,
		pager:     NewPager(source, opts.Alias, opts.ChunkSize, opts.StartAt),
		fetcher:   NewRecordFetcher(source),
		annotator: NewAnnotator(source, store),
		writer:    NewChunkWriter(opts.Dir, opts.Alias),
		store:     store,
	}
}

// Store returns the page metadata collected so far.
func (e *Exporter) Store() *MetadataStore {
	return e.store
}

// Run exports the collection. The preliminary query failing, an empty
// collection, a failed chunk query and an unwritable output directory abort
// the run; a record whose metadata cannot be fetched is logged, counted as
// failed and left out of its chunk.
func (e *Exporter) Run(ctx context.Context) (*services.ExportResult, error) {
	result := &services.ExportResult{}

	running, err := e.reporter.IsSyncRunning()
	if err != nil {
		log.Printf("Warning: failed to check progress ledger: %v", err)
	} else if running {
		return result, ErrAlreadyRunning
	}

	total, chunks, err := e.pager.Plan(ctx)
	if err != nil {
		e.fail(err)
		return result, fmt.Errorf("preliminary query: %w", err)
	}
	log.Printf("Total number of records in collection %s: %d", e.opts.Alias, total)

	expected := total
	if e.opts.LastRecord > 0 && e.opts.LastRecord < total {
		expected = e.opts.LastRecord
	}
	if err := e.reporter.StartSync(expected); err != nil {
		log.Printf("Warning: failed to record export start: %v", err)
	}

	processed := 0
	for n := 1; n <= chunks; n++ {
		if err := ctx.Err(); err != nil {
			e.fail(err)
			return result, err
		}

		log.Printf("Retrieving chunk %d/%d starting at %d", n, chunks, e.pager.ChunkStart(n))
		hits, err := e.pager.Chunk(ctx, n)
		if err != nil {
			e.fail(err)
			return result, err
		}
		if len(hits) == 0 {
			break
		}

		records := make([]*entities.Record, 0, len(hits))
		stop := false
		for _, hit := range hits {
			if err := ctx.Err(); err != nil {
				e.fail(err)
				return result, err
			}
			processed++

			rec, err := e.fetcher.Fetch(ctx, hit)
			if err != nil {
				log.Printf("Warning: skipping record %d: %v", hit.ID(), err)
				result.RecordsFailed++
			} else {
				if e.opts.PageMetadata {
					result.PagesAnnotated += e.annotator.Annotate(ctx, rec.Alias, rec.ID, rec.Structure)
				}
				records = append(records, rec)
				result.RecordsProcessed++
				if e.opts.Verbose {
					fmt.Printf("  %d: record %d\n", processed, rec.ID)
				}
			}

			if err := e.reporter.UpdateProgress(processed, result.RecordsProcessed, result.RecordsFailed, 0, strconv.Itoa(hit.ID())); err != nil {
				log.Printf("Warning: failed to record export progress: %v", err)
			}

			if e.opts.LastRecord > 0 && processed >= e.opts.LastRecord {
				stop = true
				break
			}
		}

		path, err := e.writer.Write(n, records)
		if err != nil {
			e.fail(err)
			return result, err
		}
		result.Chunks++
		log.Printf("Wrote %d records to %s", len(records), path)

		if stop {
			break
		}
	}

	if e.opts.PageMetadata {
		path, err := e.store.Flush(e.opts.Dir, config.MetadataFileName)
		if err != nil {
			e.fail(err)
			return result, err
		}
		result.MetadataFile = path
	}

	if err := e.reporter.CompleteSync(true, ""); err != nil {
		log.Printf("Warning: failed to record export completion: %v", err)
	}
	return result, nil
}

func (e *Exporter) fail(cause error) {
	if err := e.reporter.CompleteSync(false, cause.Error()); err != nil {
		log.Printf("Warning: failed to record export failure: %v", err)
	}
}
