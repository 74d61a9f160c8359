package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/cdm-migrate/internal/config"
	"github.com/mrlokans/cdm-migrate/internal/contentdm"
	"github.com/mrlokans/cdm-migrate/internal/database"
	"github.com/mrlokans/cdm-migrate/internal/database/progress"
	"github.com/mrlokans/cdm-migrate/internal/entities"
	"github.com/mrlokans/cdm-migrate/internal/services"
)

// bindCommonFlags registers the flags shared by export and import. Their
// defaults come from the environment.
func bindCommonFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.Alias, "alias", cfg.Alias, "CONTENTdm collection alias (env CDM_ALIAS)")
	fs.StringVar(&cfg.Database.Path, "db", cfg.Database.Path, "Path to the progress database, empty disables it (env CDM_PROGRESS_DB)")
	fs.IntVar(&cfg.Attempts, "attempts", cfg.Attempts, "HTTP attempts per request (env CDM_HTTP_ATTEMPTS)")
}

func newClient(cfg *config.Config, verbose bool) *contentdm.Client {
	return contentdm.NewClient(contentdm.Options{
		APIURL:          cfg.APIURL,
		FileURL:         cfg.FileURL,
		Timeout:         cfg.Timeout,
		DownloadTimeout: cfg.DownloadTimeout,
		Attempts:        cfg.Attempts,
		Verbose:         verbose,
	})
}

// openReporter returns the progress ledger of a pipeline, or a no-op
// reporter when no database is configured.
func openReporter(dbPath string, syncType entities.SyncType, alias string) (services.ProgressReporter, func(), error) {
	if dbPath == "" {
		return services.NopReporter{}, func() {}, nil
	}

	db, err := database.NewDatabase(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return progress.NewRepository(db.DB, syncType, alias), func() { db.Close() }, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
