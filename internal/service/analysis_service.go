package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/arena-zones-backend/internal/analysis"
	"github.com/jengzang/arena-zones-backend/internal/analysis/temporal"
	"github.com/jengzang/arena-zones-backend/internal/classify"
	"github.com/jengzang/arena-zones-backend/internal/logger"
	"github.com/jengzang/arena-zones-backend/internal/models"
	"github.com/jengzang/arena-zones-backend/internal/repository"
)

// AnalysisConfig are the service-wide analysis defaults
type AnalysisConfig struct {
	DefaultFPS  float64
	MaxParallel int
}

// RunRequest asks for skills to be run over the subjects of one arena.
// FPS falls back to the configured default when zero; Skills to zone_summary when empty.
type RunRequest struct {
	ArenaID   string                `json:"arena_id"`
	Skills    []string              `json:"skills"`
	Params    models.AnalysisParams `json:"params"`
	Subjects  []models.Subject      `json:"subjects"`
	CreatedBy string                `json:"-"`
}

// RunResult is a finished task with its results
type RunResult struct {
	Task    *models.AnalysisTask   `json:"task"`
	Results []models.SubjectResult `json:"results"`
}

// TaskMetrics are the stored metrics of a task
type TaskMetrics struct {
	TaskID      int64                   `json:"task_id"`
	Summaries   []models.ZoneSummary    `json:"summaries"`
	Transitions []models.ZoneTransition `json:"transitions"`
}

// resultSummary is stored on the task row once it completes
type resultSummary struct {
	Subjects    int     `json:"subjects"`
	Samples     int     `json:"samples"`
	Summaries   int     `json:"summaries"`
	Transitions int     `json:"transitions"`
	DurationMs  int64   `json:"duration_ms"`
	FPS         float64 `json:"fps"`
}

// AnalysisService runs analysis skills and records them as tasks
type AnalysisService struct {
	arenas  *ArenaService
	tasks   *repository.AnalysisTaskRepository
	metrics *repository.MetricsRepository
	cfg     AnalysisConfig
	log     *logger.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(arenas *ArenaService, tasks *repository.AnalysisTaskRepository, metrics *repository.MetricsRepository, cfg AnalysisConfig, log *logger.Logger) *AnalysisService {
	if cfg.DefaultFPS <= 0 {
		cfg.DefaultFPS = 30
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 1
	}
	return &AnalysisService{
		arenas:  arenas,
		tasks:   tasks,
		metrics: metrics,
		cfg:     cfg,
		log:     log.With("service", "analysis"),
	}
}

func (s *AnalysisService) normalize(req *RunRequest) error {
	if req.ArenaID == "" {
		return fmt.Errorf("arena_id is required: %w", models.ErrInvalidArgument)
	}
	if len(req.Subjects) == 0 {
		return fmt.Errorf("at least one subject is required: %w", models.ErrInvalidArgument)
	}
	seen := make(map[string]bool, len(req.Subjects))
	for i, subj := range req.Subjects {
		if subj.ID == "" {
			return fmt.Errorf("subject %d has no id: %w", i, models.ErrInvalidArgument)
		}
		if seen[subj.ID] {
			return fmt.Errorf("duplicate subject %q: %w", subj.ID, models.ErrInvalidArgument)
		}
		seen[subj.ID] = true
	}

	if len(req.Skills) == 0 {
		req.Skills = []string{temporal.SkillZoneSummary}
	}
	for _, name := range req.Skills {
		if !analysis.IsKnownSkill(name) {
			return fmt.Errorf("unknown skill %q: %w", name, models.ErrInvalidArgument)
		}
	}

	if req.Params.FPS == 0 {
		req.Params.FPS = s.cfg.DefaultFPS
	}
	return temporal.OptionsFromParams(req.Params).Validate()
}

// Run validates the request, records a task and runs the skills over every
// subject. The task ends completed with its metrics stored, or failed.
func (s *AnalysisService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if err := s.normalize(&req); err != nil {
		return nil, err
	}
	layout, err := s.arenas.Layout(ctx, req.ArenaID)
	if err != nil {
		return nil, err
	}

	params, err := json.Marshal(req.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize params: %w", err)
	}
	samples := 0
	for _, subj := range req.Subjects {
		samples += len(subj.Positions)
	}

	task := &models.AnalysisTask{
		ArenaID:      req.ArenaID,
		Skills:       strings.Join(req.Skills, ","),
		Status:       models.TaskStatusPending,
		ParamsJSON:   string(params),
		SubjectCount: len(req.Subjects),
		SampleCount:  samples,
		CreatedBy:    req.CreatedBy,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	log := s.log.With("task_id", task.ID, "arena_id", req.ArenaID)

	if err := s.tasks.MarkAsRunning(ctx, task.ID); err != nil {
		return nil, fmt.Errorf("failed to mark task as running: %w", err)
	}
	log.Info("analysis started", "skills", task.Skills, "subjects", task.SubjectCount, "samples", samples)

	start := time.Now()
	results, err := analysis.RunBatch(ctx, layout, req.Subjects, req.Skills, req.Params, s.cfg.MaxParallel)
	if err == nil {
		err = s.metrics.Save(ctx, task.ID, results)
	}
	if err != nil {
		log.Error("analysis failed", "error", err)
		// the request context may be gone; the failure must still be recorded
		if markErr := s.tasks.MarkAsFailed(context.WithoutCancel(ctx), task.ID, err.Error()); markErr != nil {
			log.Error("failed to mark task as failed", "error", markErr)
		}
		return nil, err
	}

	summary := resultSummary{
		Subjects:   len(results),
		Samples:    samples,
		DurationMs: time.Since(start).Milliseconds(),
		FPS:        req.Params.FPS,
	}
	for _, r := range results {
		summary.Summaries += len(r.Summaries)
		summary.Transitions += len(r.Transitions)
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize result summary: %w", err)
	}
	if err := s.tasks.MarkAsCompleted(ctx, task.ID, string(summaryJSON)); err != nil {
		return nil, fmt.Errorf("failed to mark task as completed: %w", err)
	}
	log.Info("analysis completed", "duration_ms", summary.DurationMs)

	done, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	return &RunResult{Task: done, Results: results}, nil
}

// Classify labels the positions of one subject with the zones of an arena
func (s *AnalysisService) Classify(ctx context.Context, arenaID string, positions []models.PositionSample) ([]models.FrameMembership, error) {
	layout, err := s.arenas.Layout(ctx, arenaID)
	if err != nil {
		return nil, err
	}
	return classify.Classify(positions, layout), nil
}

// GetTask returns one task
func (s *AnalysisService) GetTask(ctx context.Context, id int64) (*models.AnalysisTask, error) {
	return s.tasks.GetByID(ctx, id)
}

// ListTasks returns tasks matching the filter
func (s *AnalysisService) ListTasks(ctx context.Context, filter models.TaskFilter) ([]*models.AnalysisTask, error) {
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.tasks.List(ctx, filter)
}

// Metrics returns the stored summaries and transitions of a task
func (s *AnalysisService) Metrics(ctx context.Context, taskID int64, filter models.MetricsFilter) (*TaskMetrics, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	summaries, err := s.metrics.ListSummaries(ctx, taskID, filter)
	if err != nil {
		return nil, err
	}
	transitions, err := s.metrics.ListTransitions(ctx, taskID, filter)
	if err != nil {
		return nil, err
	}
	return &TaskMetrics{TaskID: taskID, Summaries: summaries, Transitions: transitions}, nil
}

// Skills lists the skills that can be requested
func (s *AnalysisService) Skills() []string {
	return analysis.Skills()
}
