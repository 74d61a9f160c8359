package config

// Defaults shared by the configuration and the CLI flags.
const (
	DefaultChunkSize   = 100
	DefaultExportDir   = "./output"
	DefaultDownloadDir = "./download"

	// MetadataFileName is the flat JSON side file of page metadata.
	MetadataFileName = "compound_file_metadata.json"
)
