package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/cdm-migrate/internal/config"
	"github.com/mrlokans/cdm-migrate/internal/entities"
	"github.com/mrlokans/cdm-migrate/internal/importer"
)

// ImportCommand downloads the files referenced by structure files.
type ImportCommand struct {
	Config  *config.Config
	Verbose bool
	DryRun  bool
}

func NewImportCommand(cfg *config.Config) *ImportCommand {
	return &ImportCommand{Config: cfg}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	cfg := cmd.Config
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	bindCommonFlags(fs, cfg)
	fs.StringVar(&cfg.FileURL, "file-url", cfg.FileURL, "CONTENTdm getfile base URL ending in '/collection/' (env CDM_FILE_URL)")
	fs.StringVar(&cfg.InputDir, "input", cfg.InputDir, "Directory holding the structure files (env CDM_EXPORT_DIR)")
	fs.StringVar(&cfg.DownloadDir, "output", cfg.DownloadDir, "Download root directory (env CDM_DOWNLOAD_DIR)")
	fs.DurationVar(&cfg.DownloadTimeout, "timeout", cfg.DownloadTimeout, "File download timeout (env CDM_DOWNLOAD_TIMEOUT)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be downloaded without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -alias <alias> -file-url <url> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Download every file referenced by the structure files of an export into\n")
		fmt.Fprintf(os.Stderr, "<output>/<alias>/<record id>/. Files already present are skipped.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Download a collection:\n")
		fmt.Fprintf(os.Stderr, "  %s import -alias maps -file-url \"https://cdm16694.contentdm.oclc.org/utils/getfile/collection/\"\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Preview the download plan:\n")
		fmt.Fprintf(os.Stderr, "  %s import -alias maps -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := cfg.ExpandPaths(); err != nil {
		return err
	}
	return cfg.ValidateImport(cmd.DryRun)
}

func (cmd *ImportCommand) Run() error {
	cfg := cmd.Config

	fmt.Println("CONTENTdm Import")
	fmt.Println("================")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No files will be downloaded")
		fmt.Println()
	}

	fmt.Printf("Collection: %s\n", cfg.Alias)
	fmt.Printf("Input: %s\n", cfg.InputDir)
	fmt.Printf("Output: %s\n", cfg.DownloadDir)

	dbPath := cfg.Database.Path
	if cmd.DryRun {
		dbPath = ""
	}
	reporter, closeDB, err := openReporter(dbPath, entities.SyncTypeImport, cfg.Alias)
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := signalContext()
	defer cancel()

	imp := importer.New(newClient(cfg, cmd.Verbose), importer.Options{
		Alias:       cfg.Alias,
		InputDir:    cfg.InputDir,
		DownloadDir: cfg.DownloadDir,
		DryRun:      cmd.DryRun,
		Verbose:     cmd.Verbose,
	}, reporter)

	result, err := imp.Run(ctx)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if cmd.DryRun {
		fmt.Printf("\nDry run complete: %d records in %d files. Use without -dry-run to download.\n", result.RecordsProcessed, result.Files)
		return nil
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Structure files: %d\n", result.Files)
	fmt.Printf("Records: %d\n", result.RecordsProcessed)
	fmt.Printf("Downloaded: %d\n", result.Downloaded)
	fmt.Printf("Already present: %d\n", result.AlreadyPresent)
	if result.NotFound > 0 {
		fmt.Printf("Not found: %d\n", result.NotFound)
	}
	if result.Failed > 0 {
		fmt.Printf("Failed: %d\n", result.Failed)
	}
	if result.RecordsFailed > 0 {
		fmt.Printf("Records skipped: %d\n", result.RecordsFailed)
	}
	return nil
}
