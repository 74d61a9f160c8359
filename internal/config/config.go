package config

import (
	"errors"
	"fmt"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var (
	ErrMissingAlias   = errors.New("collection alias is required (CDM_ALIAS or -alias)")
	ErrMissingAPIURL  = errors.New("API base URL is required (CDM_API_URL or -api-url)")
	ErrMissingFileURL = errors.New("file base URL is required (CDM_FILE_URL or -file-url)")
	ErrBadChunkSize   = errors.New("chunk size must be positive")
	ErrBadStartAt     = errors.New("start offset must be at least 1")
)

type (
	Config struct {
		ContentDM
		Export
		Import
		Database
		HTTP
	}

	ContentDM struct {
		Alias   string
		APIURL  string // dmwebservices base ending in "?q="
		FileURL string // getfile base ending in "/collection/"
	}
	Export struct {
		Dir          string
		ChunkSize    int
		StartAt      int
		LastRecord   int // 0 exports everything
		PageMetadata bool
	}
	Import struct {
		InputDir    string // defaults to the export directory
		DownloadDir string
	}
	Database struct {
		Path string // empty disables the progress ledger
	}
	HTTP struct {
		Timeout         time.Duration
		DownloadTimeout time.Duration
		Attempts        int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("cdm_alias", "")
	v.SetDefault("cdm_api_url", "")
	v.SetDefault("cdm_file_url", "")
	v.SetDefault("cdm_chunk_size", DefaultChunkSize)
	v.SetDefault("cdm_start_at", 1)
	v.SetDefault("cdm_last_rec", 0)
	v.SetDefault("cdm_export_page_metadata", false)
	v.SetDefault("cdm_export_dir", DefaultExportDir)
	v.SetDefault("cdm_download_dir", DefaultDownloadDir)
	v.SetDefault("cdm_progress_db", "")
	v.SetDefault("cdm_http_timeout", "5m")
	v.SetDefault("cdm_download_timeout", "1h")
	v.SetDefault("cdm_http_attempts", 1)

	exportDir := v.GetString("CDM_EXPORT_DIR")

	return &Config{
		ContentDM: ContentDM{
			Alias:   v.GetString("CDM_ALIAS"),
			APIURL:  v.GetString("CDM_API_URL"),
			FileURL: v.GetString("CDM_FILE_URL"),
		},
		Export: Export{
			Dir:          exportDir,
			ChunkSize:    v.GetInt("CDM_CHUNK_SIZE"),
			StartAt:      v.GetInt("CDM_START_AT"),
			LastRecord:   v.GetInt("CDM_LAST_REC"),
			PageMetadata: v.GetBool("CDM_EXPORT_PAGE_METADATA"),
		},
		Import: Import{
			InputDir:    exportDir,
			DownloadDir: v.GetString("CDM_DOWNLOAD_DIR"),
		},
		Database: Database{
			Path: v.GetString("CDM_PROGRESS_DB"),
		},
		HTTP: HTTP{
			Timeout:         v.GetDuration("CDM_HTTP_TIMEOUT"),
			DownloadTimeout: v.GetDuration("CDM_DOWNLOAD_TIMEOUT"),
			Attempts:        v.GetInt("CDM_HTTP_ATTEMPTS"),
		},
	}
}

// ExpandPaths resolves a leading "~" in every configured path.
func (c *Config) ExpandPaths() error {
	for _, p := range []*string{&c.Export.Dir, &c.Import.InputDir, &c.Import.DownloadDir, &c.Database.Path} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// ValidateExport checks the settings the exporter needs.
func (c *Config) ValidateExport() error {
	if c.Alias == "" {
		return ErrMissingAlias
	}
	if c.APIURL == "" {
		return ErrMissingAPIURL
	}
	if c.ChunkSize <= 0 {
		return ErrBadChunkSize
	}
	if c.StartAt < 1 {
		return ErrBadStartAt
	}
	return nil
}

// ValidateImport checks the settings the importer needs. The alias is
// needed only to build download URLs, so a dry run may omit the URLs.
func (c *Config) ValidateImport(dryRun bool) error {
	if c.Alias == "" {
		return ErrMissingAlias
	}
	if !dryRun && c.FileURL == "" {
		return ErrMissingFileURL
	}
	return nil
}
