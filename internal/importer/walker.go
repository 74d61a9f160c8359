package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mrlokans/cdm-migrate/internal/entities"
	"github.com/mrlokans/cdm-migrate/internal/utils"
	"github.com/mrlokans/cdm-migrate/internal/xmltree"
)

// FileWalker reads the records of every export file in a directory.
type FileWalker struct {
	dir   string
	alias string
}

func NewFileWalker(dir, alias string) *FileWalker {
	return &FileWalker{dir: dir, alias: alias}
}

// Files returns the *.xml files of the directory in lexical order.
func (w *FileWalker) Files() ([]string, error) {
	if _, err := os.Stat(w.dir); err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	}
	files, err := filepath.Glob(filepath.Join(w.dir, "*.xml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Load parses an export file. Records without a usable id are reported
// through errs and left out.
func (w *FileWalker) Load(path string) (records []*entities.Record, errs []error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	root, err := xmltree.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if root.Name() != entities.TagCollection {
		return nil, nil, fmt.Errorf("parse %s: root element is <%s>, want <%s>", filepath.Base(path), root.Name(), entities.TagCollection)
	}

	for i, elem := range root.ChildrenNamed(entities.TagRecord) {
		rec, err := entities.RecordFromElement(w.alias, elem)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s record #%d: %w", filepath.Base(path), i+1, err))
			continue
		}
		records = append(records, rec)
	}
	return records, errs, nil
}

// RecordDir returns the download directory of a record.
func RecordDir(root, alias string, recordID int) string {
	return filepath.Join(root, utils.SanitizePathSegment(alias), utils.RecordDirName(recordID))
}
