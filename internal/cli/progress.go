package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mrlokans/cdm-migrate/internal/config"
	"github.com/mrlokans/cdm-migrate/internal/database"
	"github.com/mrlokans/cdm-migrate/internal/database/progress"
	"github.com/mrlokans/cdm-migrate/internal/entities"
)

// ProgressCommand prints the run ledger.
type ProgressCommand struct {
	DatabasePath string
	Out          io.Writer
}

func NewProgressCommand(cfg *config.Config) *ProgressCommand {
	return &ProgressCommand{DatabasePath: cfg.Database.Path, Out: os.Stdout}
}

func (cmd *ProgressCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("progress", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the progress database (env CDM_PROGRESS_DB)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s progress -db <path>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show the state of the last export and import run of every collection.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.DatabasePath == "" {
		return errors.New("required flag -db not provided")
	}
	return nil
}

func (cmd *ProgressCommand) Run() error {
	if _, err := os.Stat(cmd.DatabasePath); err != nil {
		return fmt.Errorf("progress database not found: %s", cmd.DatabasePath)
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	rows, err := progress.List(db.DB)
	if err != nil {
		return fmt.Errorf("failed to read progress: %w", err)
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.Out, "No runs recorded")
		return nil
	}
	writeProgress(cmd.Out, rows)
	return nil
}

func writeProgress(out io.Writer, rows []entities.SyncProgress) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PIPELINE\tCOLLECTION\tSTATUS\tPROCESSED\tOK\tFAILED\tSKIPPED\tSTARTED\tERROR")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%d\t%s\t%s\n",
			r.SyncType, r.Alias, r.Status, r.Processed, r.TotalItems,
			r.Succeeded, r.Failed, r.Skipped, r.StartedAt.Format(time.DateTime), r.Error)
	}
	tw.Flush()
}
