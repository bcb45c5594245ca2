// Package jobs runs the background work of the panel: CSV exports of the
// remote collections and the nightly audit trail prune, processed through
// Asynq.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskExportCSV exports one remote collection to a CSV file.
	TaskExportCSV = "export:csv"
	// TaskAuditPrune trims audit entries past the retention window.
	TaskAuditPrune = "audit:prune"
)

// ExportPayload describes one CSV export request.
type ExportPayload struct {
	Resource    string    `json:"resource"`
	RequestedBy string    `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewExportTask constructs an export task.
func NewExportTask(payload ExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExportCSV, data, asynq.MaxRetry(3), asynq.Retention(24*time.Hour)), nil
}

// NewAuditPruneTask constructs the scheduled prune task.
func NewAuditPruneTask() *asynq.Task {
	return asynq.NewTask(TaskAuditPrune, nil, asynq.MaxRetry(1))
}
