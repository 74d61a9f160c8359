package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/sethgrid/pester"

	"github.com/mrlokans/cdm-migrate/internal/contentdm"
	"github.com/mrlokans/cdm-migrate/internal/database/progress"
	"github.com/mrlokans/cdm-migrate/internal/exporter"
	"github.com/mrlokans/cdm-migrate/internal/importer"
	"github.com/mrlokans/cdm-migrate/internal/services"
)

// =============================================================================
// Remote API
// =============================================================================

// Source implementations
var _ exporter.Source = (*contentdm.Client)(nil)

// FileSource implementations
var _ importer.FileSource = (*contentdm.Client)(nil)

// HTTPDoer implementations
var _ contentdm.HTTPDoer = (*pester.Client)(nil)

// =============================================================================
// Progress Tracking
// =============================================================================

// ProgressReporter implementations
var _ services.ProgressReporter = (*progress.Repository)(nil)
var _ services.ProgressReporter = services.NopReporter{}
