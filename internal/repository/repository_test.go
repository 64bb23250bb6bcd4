package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/arena-zones-backend/internal/database"
	"github.com/jengzang/arena-zones-backend/internal/logger"
	"github.com/jengzang/arena-zones-backend/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenAndMigrate(context.Background(), database.Config{Path: database.MemoryPath}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testArena(id string) *models.ArenaConfig {
	scale := 4.5
	return &models.ArenaConfig{
		ID:    id,
		Name:  "open field",
		Scale: &scale,
		Points: []models.ReferencePoint{
			{Name: "tl", X: 0, Y: 0},
			{Name: "br", X: 100, Y: 100},
		},
		Zones: []models.ZoneConfig{
			{ID: "arena", Name: "arena", Type: models.ZoneTypeRectangle, Points: []string{"tl", "br"}},
			{ID: "center", Name: "center", Type: models.ZoneTypeProportion, ParentZone: "arena", Proportion: []float64{0.25, 0.25, 0.75, 0.75}},
		},
		CreatedBy: "lab",
	}
}

func TestArenaRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewArenaRepository(openTestDB(t))

	in := testArena("a1")
	require.NoError(t, repo.Create(ctx, in))
	assert.False(t, in.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, *in.Scale, *got.Scale)
	assert.Equal(t, in.Points, got.Points)
	assert.Equal(t, in.Zones, got.Zones)
	assert.Equal(t, "lab", got.CreatedBy)
	assert.True(t, in.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, repo.Create(ctx, testArena("a2")))
	assert.Error(t, repo.Create(ctx, testArena("a2")), "duplicate id")

	list, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.Delete(ctx, "a1"))
	_, err = repo.GetByID(ctx, "a1")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "a1"), models.ErrNotFound)
}

func TestAnalysisTaskRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, NewArenaRepository(db).Create(ctx, testArena("a1")))
	repo := NewAnalysisTaskRepository(db)

	task := &models.AnalysisTask{ArenaID: "a1", Skills: "zone_summary", ParamsJSON: `{"fps":30}`, SubjectCount: 2}
	require.NoError(t, repo.Create(ctx, task))
	assert.NotZero(t, task.ID)
	assert.Equal(t, models.TaskStatusPending, task.Status)

	require.NoError(t, repo.MarkAsRunning(ctx, task.ID))
	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusRunning, got.Status)
	require.NotNil(t, got.StartedAt)
	assert.Nil(t, got.CompletedAt)

	require.NoError(t, repo.MarkAsCompleted(ctx, task.ID, `{"rows":4}`))
	got, err = repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, got.Status)
	assert.Equal(t, `{"rows":4}`, got.ResultSummary)
	require.NotNil(t, got.CompletedAt)

	failed := &models.AnalysisTask{ArenaID: "a1", Skills: "movement"}
	require.NoError(t, repo.Create(ctx, failed))
	require.NoError(t, repo.MarkAsFailed(ctx, failed.ID, "boom"))

	all, err := repo.List(ctx, models.TaskFilter{ArenaID: "a1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyFailed, err := repo.List(ctx, models.TaskFilter{Status: models.TaskStatusFailed})
	require.NoError(t, err)
	require.Len(t, onlyFailed, 1)
	assert.Equal(t, "boom", onlyFailed[0].ErrorMessage)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, repo.MarkAsRunning(ctx, 999), models.ErrNotFound)

	// unknown arena violates the foreign key
	assert.Error(t, repo.Create(ctx, &models.AnalysisTask{ArenaID: "missing", Skills: "movement"}))
}

func TestMetricsRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, NewArenaRepository(db).Create(ctx, testArena("a1")))
	task := &models.AnalysisTask{ArenaID: "a1", Skills: "zone_summary,zone_transitions"}
	require.NoError(t, NewAnalysisTaskRepository(db).Create(ctx, task))
	repo := NewMetricsRepository(db)

	latency := 0.5
	results := []models.SubjectResult{
		{
			SubjectID: "m1",
			Summaries: []models.ZoneSummary{
				{Landmark: "nose", ZoneID: "center", ZoneName: "center", ZoneOccupancy: models.ZoneOccupancy{FramesInZone: 3, TotalFrames: 10, TimeSeconds: 0.1, Percentage: 30}, Entries: 1, LatencySeconds: &latency},
				{Landmark: "nose", ZoneID: "outside", ZoneName: "outside", ZoneOccupancy: models.ZoneOccupancy{FramesInZone: 7, TotalFrames: 10}},
			},
			Transitions: []models.ZoneTransition{{Landmark: "nose", From: "arena", To: "center", Count: 2}},
		},
		{
			SubjectID: "m2",
			Summaries: []models.ZoneSummary{{Landmark: "nose", ZoneID: "center", ZoneName: "center"}},
		},
	}
	require.NoError(t, repo.Save(ctx, task.ID, results))

	all, err := repo.ListSummaries(ctx, task.ID, models.MetricsFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "m1", all[0].SubjectID)
	require.NotNil(t, all[0].LatencySeconds)
	assert.Equal(t, 0.5, *all[0].LatencySeconds)
	assert.Nil(t, all[1].LatencySeconds)
	assert.Equal(t, 30.0, all[0].Percentage)

	center, err := repo.ListSummaries(ctx, task.ID, models.MetricsFilter{ZoneID: "center"})
	require.NoError(t, err)
	assert.Len(t, center, 2)

	m2, err := repo.ListSummaries(ctx, task.ID, models.MetricsFilter{SubjectID: "m2"})
	require.NoError(t, err)
	assert.Len(t, m2, 1)

	transitions, err := repo.ListTransitions(ctx, task.ID, models.MetricsFilter{ZoneID: "center"})
	require.NoError(t, err)
	assert.Equal(t, []models.ZoneTransition{{SubjectID: "m1", Landmark: "nose", From: "arena", To: "center", Count: 2}}, transitions)

	none, err := repo.ListSummaries(ctx, task.ID+1, models.MetricsFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
