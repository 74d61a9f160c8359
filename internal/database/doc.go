// Package database opens the optional sqlite run ledger.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	└── progress/        # Per-pipeline run progress
//
// The ledger only reports on runs. Whether a file still has to be
// downloaded is decided by the importer from the filesystem, so deleting
// the ledger never causes re-downloads.
//
// # Usage
//
//	db, err := database.NewDatabase("./cdm-progress.db")
//	repo := progress.NewRepository(db.DB, entities.SyncTypeExport, "maps")
//	err = repo.StartSync(total)
package database
