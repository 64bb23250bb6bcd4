package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/arena-zones-backend/internal/database"
	"github.com/jengzang/arena-zones-backend/internal/models"
)

// MetricsRepository stores the per-zone summaries and transitions of finished tasks
type MetricsRepository struct {
	db *sql.DB
}

// NewMetricsRepository creates a new metrics repository
func NewMetricsRepository(db *sql.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// Save writes the summaries and transitions of every subject in one transaction
func (r *MetricsRepository) Save(ctx context.Context, taskID int64, results []models.SubjectResult) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		summaryStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO zone_metrics (
				task_id, subject_id, landmark, zone_id, zone_name,
				frames_in_zone, total_frames, time_seconds, percentage,
				entries, exits, latency_seconds
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare zone metrics insert: %w", err)
		}
		defer summaryStmt.Close()

		transitionStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO zone_transitions (task_id, subject_id, landmark, from_zone, to_zone, count)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare zone transitions insert: %w", err)
		}
		defer transitionStmt.Close()

		for _, res := range results {
			for _, s := range res.Summaries {
				var latency sql.NullFloat64
				if s.LatencySeconds != nil {
					latency = sql.NullFloat64{Float64: *s.LatencySeconds, Valid: true}
				}
				_, err := summaryStmt.ExecContext(ctx,
					taskID, res.SubjectID, s.Landmark, s.ZoneID, s.ZoneName,
					s.FramesInZone, s.TotalFrames, s.TimeSeconds, s.Percentage,
					s.Entries, s.Exits, latency,
				)
				if err != nil {
					return fmt.Errorf("failed to insert zone metrics for %s/%s: %w", res.SubjectID, s.ZoneID, err)
				}
			}
			for _, tr := range res.Transitions {
				_, err := transitionStmt.ExecContext(ctx, taskID, res.SubjectID, tr.Landmark, tr.From, tr.To, tr.Count)
				if err != nil {
					return fmt.Errorf("failed to insert transition for %s: %w", res.SubjectID, err)
				}
			}
		}
		return nil
	})
}

func filterClause(filter models.MetricsFilter, zoneColumns ...string) (string, []interface{}) {
	var clause string
	var args []interface{}
	if filter.SubjectID != "" {
		clause += " AND subject_id = ?"
		args = append(args, filter.SubjectID)
	}
	if filter.Landmark != "" {
		clause += " AND landmark = ?"
		args = append(args, filter.Landmark)
	}
	if filter.ZoneID != "" && len(zoneColumns) > 0 {
		conds := make([]string, len(zoneColumns))
		for i, col := range zoneColumns {
			conds[i] = col + " = ?"
			args = append(args, filter.ZoneID)
		}
		clause += " AND (" + strings.Join(conds, " OR ") + ")"
	}
	return clause, args
}

// ListSummaries returns the stored zone summaries of a task in insertion order
func (r *MetricsRepository) ListSummaries(ctx context.Context, taskID int64, filter models.MetricsFilter) ([]models.ZoneSummary, error) {
	clause, args := filterClause(filter, "zone_id")
	query := `
		SELECT subject_id, landmark, zone_id, zone_name, frames_in_zone, total_frames,
		       time_seconds, percentage, entries, exits, latency_seconds
		FROM zone_metrics
		WHERE task_id = ?` + clause + `
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, append([]interface{}{taskID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list zone metrics: %w", err)
	}
	defer rows.Close()

	out := []models.ZoneSummary{}
	for rows.Next() {
		var (
			s       models.ZoneSummary
			latency sql.NullFloat64
		)
		err := rows.Scan(
			&s.SubjectID, &s.Landmark, &s.ZoneID, &s.ZoneName,
			&s.FramesInZone, &s.TotalFrames, &s.TimeSeconds, &s.Percentage,
			&s.Entries, &s.Exits, &latency,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zone metrics: %w", err)
		}
		if latency.Valid {
			v := latency.Float64
			s.LatencySeconds = &v
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListTransitions returns the stored transitions of a task. A zone filter
// matches either endpoint.
func (r *MetricsRepository) ListTransitions(ctx context.Context, taskID int64, filter models.MetricsFilter) ([]models.ZoneTransition, error) {
	clause, args := filterClause(filter, "from_zone", "to_zone")
	query := `
		SELECT subject_id, landmark, from_zone, to_zone, count
		FROM zone_transitions
		WHERE task_id = ?` + clause + `
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, append([]interface{}{taskID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list zone transitions: %w", err)
	}
	defer rows.Close()

	out := []models.ZoneTransition{}
	for rows.Next() {
		var tr models.ZoneTransition
		if err := rows.Scan(&tr.SubjectID, &tr.Landmark, &tr.From, &tr.To, &tr.Count); err != nil {
			return nil, fmt.Errorf("failed to scan zone transition: %w", err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}
