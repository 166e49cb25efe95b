package domain

import "time"

// RunStatus represents the status of a pipeline run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// PipelineRun is the ledger entry for one enrichment run over a dataset.
type PipelineRun struct {
	ID          string     `gorm:"type:text;primaryKey" json:"id"`
	Course      string     `gorm:"type:text;not null;index" json:"course"`
	InputPath   string     `gorm:"type:text" json:"input_path"`
	OutputPath  string     `gorm:"type:text" json:"output_path"`
	Status      RunStatus  `gorm:"default:pending" json:"status"`
	TotalItems  int        `gorm:"default:0" json:"total_items"`
	Succeeded   int        `gorm:"default:0" json:"succeeded"`
	Skipped     int        `gorm:"default:0" json:"skipped"`
	Errored     int        `gorm:"default:0" json:"errored"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ErrorLog    string     `json:"error_log,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name for PipelineRun.
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
