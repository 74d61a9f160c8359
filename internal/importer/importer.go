// Package importer downloads the files referenced by export files.
//
// Every record of every export file gets a directory named after its zero
// padded id below <download dir>/<alias>/. Files that are already present
// are skipped, so an interrupted import can simply be started again.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mrlokans/cdm-migrate/internal/entities"
	"github.com/mrlokans/cdm-migrate/internal/services"
)

var ErrAlreadyRunning = errors.New("an import of this collection is already running")

// Options control an import run.
type Options struct {
	Alias       string
	InputDir    string
	DownloadDir string
	DryRun      bool
	Verbose     bool
}

// Importer runs the import pipeline of one collection.
type Importer struct {
	opts       Options
	source     FileSource
	reporter   services.ProgressReporter
	walker     *FileWalker
	downloader *Downloader
}

// New creates an importer. A nil reporter disables progress reporting.
func New(source FileSource, opts Options, reporter services.ProgressReporter) *Importer {
	if reporter == nil {
		reporter = services.NopReporter{}
	}
	return &Importer{
		opts:       opts,
		source:     source,
		reporter:   reporter,
		walker:     NewFileWalker(opts.InputDir, opts.Alias),
		downloader: NewDownloader(source, opts.Alias),
	}
}

type exportFile struct {
	path    string
	records []*entities.Record
}

// Run downloads the files of every record. Only a missing input directory
// and cancellation abort the run; download failures are logged and
// counted.
func (im *Importer) Run(ctx context.Context) (*services.ImportResult, error) {
	result := &services.ImportResult{}

	if !im.opts.DryRun {
		running, err := im.reporter.IsSyncRunning()
		if err != nil {
			log.Printf("Warning: failed to check progress ledger: %v", err)
		} else if running {
			return result, ErrAlreadyRunning
		}
	}

	files, err := im.walker.Files()
	if err != nil {
		return result, err
	}
	result.Files = len(files)

	var batches []exportFile
	total := 0
	for _, path := range files {
		records, errs, err := im.walker.Load(path)
		if err != nil {
			log.Printf("Warning: skipping %s: %v", path, err)
			continue
		}
		for _, e := range errs {
			log.Printf("Warning: skipping record: %v", e)
			result.RecordsFailed++
		}
		batches = append(batches, exportFile{path: path, records: records})
		total += len(records)
	}

	if im.opts.DryRun {
		for _, batch := range batches {
			for _, rec := range batch.records {
				im.printPlan(rec)
				result.RecordsProcessed++
			}
		}
		return result, nil
	}

	if err := im.reporter.StartSync(total); err != nil {
		log.Printf("Warning: failed to record import start: %v", err)
	}

	processed := 0
	for _, batch := range batches {
		if im.opts.Verbose {
			fmt.Printf("Processing %s (%d records)\n", batch.path, len(batch.records))
		}
		for _, rec := range batch.records {
			if err := ctx.Err(); err != nil {
				im.fail(err)
				return result, err
			}
			processed++

			if err := im.importRecord(ctx, rec, result); err != nil {
				log.Printf("Warning: record %d: %v", rec.ID, err)
				result.RecordsFailed++
			} else {
				result.RecordsProcessed++
			}

			if err := im.reporter.UpdateProgress(processed, result.RecordsProcessed, result.RecordsFailed, result.AlreadyPresent, strconv.Itoa(rec.ID)); err != nil {
				log.Printf("Warning: failed to record import progress: %v", err)
			}
		}
	}

	if err := im.reporter.CompleteSync(true, ""); err != nil {
		log.Printf("Warning: failed to record import completion: %v", err)
	}
	return result, nil
}

// importRecord downloads every file of one record. Individual download
// failures are counted, not returned.
func (im *Importer) importRecord(ctx context.Context, rec *entities.Record, result *services.ImportResult) error {
	downloads, warnings := PlanDownloads(rec)
	for _, w := range warnings {
		log.Printf("Warning: %s", w)
	}

	dir := RecordDir(im.opts.DownloadDir, im.opts.Alias, rec.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create record dir: %w", err)
	}

	for _, d := range downloads {
		res, err := im.downloader.Download(ctx, d.Key, dir, d.FileName)
		switch res {
		case Downloaded:
			result.Downloaded++
		case AlreadyPresent:
			result.AlreadyPresent++
		case NotFound:
			result.NotFound++
		case Failed:
			result.Failed++
		}
		if err != nil {
			log.Printf("Warning: record %d: %s (%s): %v", rec.ID, d.FileName, res, err)
		} else if im.opts.Verbose {
			fmt.Printf("  %s: %s\n", d.FileName, res)
		}
	}
	return nil
}

func (im *Importer) printPlan(rec *entities.Record) {
	downloads, warnings := PlanDownloads(rec)
	for _, w := range warnings {
		log.Printf("Warning: %s", w)
	}
	dir := RecordDir(im.opts.DownloadDir, im.opts.Alias, rec.ID)
	for _, d := range downloads {
		fmt.Printf("%s <- %s\n", filepath.Join(dir, d.FileName), im.source.FileURL(im.opts.Alias, d.Key, d.FileName))
	}
}

func (im *Importer) fail(cause error) {
	if err := im.reporter.CompleteSync(false, cause.Error()); err != nil {
		log.Printf("Warning: failed to record import failure: %v", err)
	}
}
