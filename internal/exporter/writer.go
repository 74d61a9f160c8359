package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/cdm-migrate/internal/entities"
	"github.com/mrlokans/cdm-migrate/internal/utils"
	"github.com/mrlokans/cdm-migrate/internal/xmltree"
)

// ChunkWriter writes <collection> documents to the export directory.
type ChunkWriter struct {
	dir   string
	alias string
}

func NewChunkWriter(dir, alias string) *ChunkWriter {
	return &ChunkWriter{dir: dir, alias: alias}
}

// Write emits chunk n holding the given records and returns its path. The
// output directory is created when missing.
func (w *ChunkWriter) Write(n int, records []*entities.Record) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	collection := xmltree.New(entities.TagCollection)
	for _, rec := range records {
		collection.Append(rec.Element())
	}

	path := filepath.Join(w.dir, utils.ChunkFileName(w.alias, n))
	err := utils.WriteFileAtomic(path, func(out io.Writer) error {
		return collection.WriteDocument(out)
	})
	if err != nil {
		return "", fmt.Errorf("write chunk %d: %w", n, err)
	}
	return path, nil
}
