package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/cdm-migrate/internal/config"
	"github.com/mrlokans/cdm-migrate/internal/entities"
	"github.com/mrlokans/cdm-migrate/internal/exporter"
)

// ExportCommand writes a collection's metadata to chunked XML files.
type ExportCommand struct {
	Config  *config.Config
	Verbose bool
}

func NewExportCommand(cfg *config.Config) *ExportCommand {
	return &ExportCommand{Config: cfg}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	cfg := cmd.Config
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	bindCommonFlags(fs, cfg)
	fs.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "CONTENTdm web services base URL ending in '?q=' (env CDM_API_URL)")
	fs.StringVar(&cfg.Export.Dir, "output", cfg.Export.Dir, "Output directory for structure files (env CDM_EXPORT_DIR)")
	fs.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "Records per structure file (env CDM_CHUNK_SIZE)")
	fs.IntVar(&cfg.StartAt, "start", cfg.StartAt, "First record to export (env CDM_START_AT)")
	fs.IntVar(&cfg.LastRecord, "last", cfg.LastRecord, "Stop after this many records, 0 for all (env CDM_LAST_REC)")
	fs.BoolVar(&cfg.PageMetadata, "page-metadata", cfg.PageMetadata, "Export page level metadata (env CDM_EXPORT_PAGE_METADATA)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Metadata request timeout (env CDM_HTTP_TIMEOUT)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export -alias <alias> -api-url <url> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export the bibliographic and structural metadata of a CONTENTdm collection\n")
		fmt.Fprintf(os.Stderr, "to <alias>_structure_NNN.xml files.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Export a whole collection:\n")
		fmt.Fprintf(os.Stderr, "  %s export -alias maps -api-url \"https://server16694.contentdm.oclc.org/dmwebservices/index.php?q=\"\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Export the first 200 records with page metadata:\n")
		fmt.Fprintf(os.Stderr, "  %s export -alias maps -last 200 -page-metadata\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := cfg.ExpandPaths(); err != nil {
		return err
	}
	return cfg.ValidateExport()
}

func (cmd *ExportCommand) Run() error {
	cfg := cmd.Config

	fmt.Println("CONTENTdm Export")
	fmt.Println("================")
	fmt.Printf("Collection: %s\n", cfg.Alias)
	fmt.Printf("Output: %s\n", cfg.Export.Dir)
	if cfg.LastRecord > 0 {
		fmt.Printf("Limit: %d records from %d\n", cfg.LastRecord, cfg.StartAt)
	}

	reporter, closeDB, err := openReporter(cfg.Database.Path, entities.SyncTypeExport, cfg.Alias)
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := signalContext()
	defer cancel()

	exp := exporter.New(newClient(cfg, cmd.Verbose), exporter.Options{
		Alias:        cfg.Alias,
		Dir:          cfg.Export.Dir,
		ChunkSize:    cfg.ChunkSize,
		StartAt:      cfg.StartAt,
		LastRecord:   cfg.LastRecord,
		PageMetadata: cfg.PageMetadata,
		Verbose:      cmd.Verbose,
	}, reporter)

	result, err := exp.Run(ctx)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Println("\n=== Export Summary ===")
	fmt.Printf("Structure files: %d\n", result.Chunks)
	fmt.Printf("Records exported: %d\n", result.RecordsProcessed)
	if result.RecordsFailed > 0 {
		fmt.Printf("Records skipped: %d\n", result.RecordsFailed)
	}
	if cfg.PageMetadata {
		fmt.Printf("Pages annotated: %d\n", result.PagesAnnotated)
		if result.MetadataFile != "" {
			fmt.Printf("Page metadata: %s\n", result.MetadataFile)
		}
	}
	return nil
}
