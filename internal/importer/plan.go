package importer

import (
	"fmt"
	"strconv"

	"github.com/mrlokans/cdm-migrate/internal/compound"
	"github.com/mrlokans/cdm-migrate/internal/entities"
	"github.com/mrlokans/cdm-migrate/internal/utils"
)

// Download is one file to fetch for a record. Key is the CONTENTdm item the
// file belongs to; FileName is the local name, which the file endpoint
// also receives.
type Download struct {
	Key      string
	FileName string
}

// PlanDownloads lists the files of a record in download order, together
// with warnings about parts of the record that were skipped.
//
// Compound objects yield one file per page in document order, named after
// the parent record with a 1-based ordinal shared across all nesting
// levels. PDF page markers are not downloaded; instead a single PDF keyed
// by the parent record is appended. Simple items yield one file named with
// the extension of their find field.
func PlanDownloads(rec *entities.Record) ([]Download, []string) {
	var (
		downloads []Download
		warnings  []string
	)

	if !rec.IsCompound() {
		suffix := compound.FileSuffix(rec.Field(entities.TagFind))
		if suffix == "" {
			warnings = append(warnings, fmt.Sprintf("record %d: no file extension in find field %q", rec.ID, rec.Field(entities.TagFind)))
		}
		downloads = append(downloads, Download{
			Key:      strconv.Itoa(rec.ID),
			FileName: utils.LocalFileName(rec.ID, 1, suffix),
		})
		return downloads, warnings
	}

	if rec.StructureCount > 1 {
		warnings = append(warnings, fmt.Sprintf("record %d: %d structures found, using the first", rec.ID, rec.StructureCount))
	}

	ordinal := 1
	hasPDF := false
	_ = compound.Walk(rec.Structure.Nodes, func(page *compound.Page) error {
		if page.IsPDFPage() {
			hasPDF = true
			return nil
		}
		if page.Pointer == "" {
			warnings = append(warnings, fmt.Sprintf("record %d: page %q has no pageptr, skipped", rec.ID, page.Title))
			return nil
		}
		downloads = append(downloads, Download{
			Key:      page.Pointer,
			FileName: utils.LocalFileName(rec.ID, ordinal, page.Suffix()),
		})
		ordinal++
		return nil
	})

	if hasPDF {
		downloads = append(downloads, Download{
			Key:      strconv.Itoa(rec.ID),
			FileName: utils.LocalFileName(rec.ID, 1, ".pdf"),
		})
	}
	return downloads, warnings
}
