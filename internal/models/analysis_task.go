package models

import "time"

// AnalysisTask represents one analysis run over the subjects of an arena
type AnalysisTask struct {
	ID int64 `json:"id" db:"id"`

	// Task identification
	ArenaID string `json:"arena_id" db:"arena_id"`
	Skills  string `json:"skills" db:"skills"` // comma separated skill names

	// Status
	Status string `json:"status" db:"status"` // pending, running, completed, failed

	// Input parameters
	ParamsJSON   string `json:"params_json,omitempty" db:"params_json"`
	SubjectCount int    `json:"subject_count" db:"subject_count"`
	SampleCount  int    `json:"sample_count" db:"sample_count"`

	// Results
	ResultSummary string `json:"result_summary,omitempty" db:"result_summary"` // JSON object with summary statistics
	ErrorMessage  string `json:"error_message,omitempty" db:"error_message"`

	// Metadata
	CreatedBy   string     `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// TaskStatus constants
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// AnalysisParams are the tunable inputs of an analysis run
type AnalysisParams struct {
	FPS            float64 `json:"fps"`
	MinDuration    float64 `json:"min_duration"`    // seconds
	IncludeOutside bool    `json:"include_outside"` // count transitions through the outside label
}
