// Package progress stores the run ledger of the export and import
// pipelines.
//
// # Interface Implementation
//
//	var _ services.ProgressReporter = (*Repository)(nil)
//
// # Usage
//
//	repo := progress.NewRepository(db, entities.SyncTypeImport, "maps")
//	err := repo.StartSync(1200)
package progress

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/cdm-migrate/internal/entities"
)

// staleAfter is how long a running row may go without updates before it is
// treated as an interrupted run.
const staleAfter = 10 * time.Minute

// Repository handles the ledger row of one pipeline and collection.
type Repository struct {
	db       *gorm.DB
	syncType entities.SyncType
	alias    string
}

// NewRepository creates a ledger repository for a pipeline and collection.
func NewRepository(db *gorm.DB, syncType entities.SyncType, alias string) *Repository {
	return &Repository{db: db, syncType: syncType, alias: alias}
}

func (r *Repository) scope() *gorm.DB {
	return r.db.Where("sync_type = ? AND alias = ?", r.syncType, r.alias)
}

// GetSyncProgress retrieves the ledger row.
func (r *Repository) GetSyncProgress() (*entities.SyncProgress, error) {
	var progress entities.SyncProgress
	err := r.scope().First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// StartSync creates or resets the ledger row.
func (r *Repository) StartSync(totalItems int) error {
	var progress entities.SyncProgress
	result := r.scope().First(&progress)

	now := time.Now()
	if result.Error == gorm.ErrRecordNotFound {
		progress = entities.SyncProgress{
			SyncType:   r.syncType,
			Alias:      r.alias,
			Status:     entities.SyncStatusRunning,
			TotalItems: totalItems,
			StartedAt:  now,
			UpdatedAt:  now,
		}
		return r.db.Create(&progress).Error
	} else if result.Error != nil {
		return result.Error
	}

	progress.Status = entities.SyncStatusRunning
	progress.TotalItems = totalItems
	progress.Processed = 0
	progress.Succeeded = 0
	progress.Failed = 0
	progress.Skipped = 0
	progress.CurrentItem = ""
	progress.Error = ""
	progress.StartedAt = now
	progress.UpdatedAt = now
	progress.CompletedAt = nil

	return r.db.Save(&progress).Error
}

// UpdateProgress records counters of an ongoing run.
func (r *Repository) UpdateProgress(processed, succeeded, failed, skipped int, currentItem string) error {
	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ? AND alias = ?", r.syncType, r.alias).
		Updates(map[string]any{
			"processed":    processed,
			"succeeded":    succeeded,
			"failed":       failed,
			"skipped":      skipped,
			"current_item": currentItem,
			"updated_at":   time.Now(),
		}).Error
}

// CompleteSync marks the run as completed or failed.
func (r *Repository) CompleteSync(succeeded bool, errorMsg string) error {
	now := time.Now()
	status := entities.SyncStatusCompleted
	if !succeeded {
		status = entities.SyncStatusFailed
	}

	updates := map[string]any{
		"status":       status,
		"current_item": "",
		"updated_at":   now,
		"completed_at": now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ? AND alias = ?", r.syncType, r.alias).
		Updates(updates).Error
}

// IsSyncRunning reports whether a run is in progress. A running row that
// has not been updated for ten minutes is marked as interrupted.
func (r *Repository) IsSyncRunning() (bool, error) {
	var progress entities.SyncProgress
	err := r.scope().Where("status = ?", entities.SyncStatusRunning).First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if progress.UpdatedAt.Before(time.Now().Add(-staleAfter)) {
		_ = r.CompleteSync(false, "run was interrupted")
		return false, nil
	}

	return true, nil
}

// List returns all ledger rows ordered by pipeline and collection.
func List(db *gorm.DB) ([]entities.SyncProgress, error) {
	var rows []entities.SyncProgress
	err := db.Order("sync_type, alias").Find(&rows).Error
	return rows, err
}
