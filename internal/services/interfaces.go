package services

// ProgressReporter receives run progress of a pipeline.
type ProgressReporter interface {
	StartSync(totalItems int) error
	UpdateProgress(processed, succeeded, failed, skipped int, currentItem string) error
	CompleteSync(succeeded bool, errorMsg string) error
	IsSyncRunning() (bool, error)
}

// NopReporter is used when no progress database is configured.
type NopReporter struct{}

func (NopReporter) StartSync(int) error { return nil }
func (NopReporter) UpdateProgress(int, int, int, int, string) error { return nil }
func (NopReporter) CompleteSync(bool, string) error { return nil }
func (NopReporter) IsSyncRunning() (bool, error) { return false, nil }

// ExportResult contains the outcome of an export run.
type ExportResult struct {
	Chunks           int
	RecordsProcessed int
	RecordsFailed    int
	PagesAnnotated   int
	MetadataFile     string
}

// ImportResult contains the outcome of an import run.
type ImportResult struct {
	Files            int
	RecordsProcessed int
	RecordsFailed    int
	Downloaded       int
	AlreadyPresent   int
	NotFound         int
	Failed           int
}
