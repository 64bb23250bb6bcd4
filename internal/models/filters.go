package models

// TaskFilter represents filter parameters for listing analysis tasks
type TaskFilter struct {
	ArenaID string `form:"arena_id"`
	Status  string `form:"status"` // pending, running, completed, failed
	Limit   int    `form:"limit"`
	Offset  int    `form:"offset"`
}

// MetricsFilter narrows the stored zone summaries of a task
type MetricsFilter struct {
	SubjectID string `form:"subject_id"`
	Landmark  string `form:"landmark"`
	ZoneID    string `form:"zone_id"`
}
