package service

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	_ "github.com/jengzang/arena-zones-backend/internal/analysis/behavior"
	"github.com/jengzang/arena-zones-backend/internal/arena"
	"github.com/jengzang/arena-zones-backend/internal/database"
	"github.com/jengzang/arena-zones-backend/internal/logger"
	"github.com/jengzang/arena-zones-backend/internal/models"
	"github.com/jengzang/arena-zones-backend/internal/repository"
)

type fixture struct {
	arenas   *ArenaService
	analysis *AnalysisService
	logs     *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	log := logger.FromCore(core)

	db, err := database.OpenAndMigrate(context.Background(), database.Config{Path: database.MemoryPath}, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	arenas := NewArenaService(repository.NewArenaRepository(db), log)
	svc := NewAnalysisService(arenas,
		repository.NewAnalysisTaskRepository(db),
		repository.NewMetricsRepository(db),
		AnalysisConfig{DefaultFPS: 10, MaxParallel: 2},
		log,
	)
	return &fixture{arenas: arenas, analysis: svc, logs: logs}
}

// openField is a 100x100 box with a centre square and a feeding spot
func openField() models.ArenaConfig {
	return models.ArenaConfig{
		Name: "open field",
		Points: []models.ReferencePoint{
			{Name: "tl", X: 0, Y: 0},
			{Name: "br", X: 100, Y: 100},
			{Name: "food", X: 90, Y: 90},
		},
		Zones: []models.ZoneConfig{
			{ID: "center", Type: models.ZoneTypeProportion, ParentZone: "box", Proportion: []float64{0.25, 0.25, 0.75, 0.75}},
			{ID: "box", Type: models.ZoneTypeRectangle, Points: []string{"tl", "br"}},
			{ID: "feeder", Type: models.ZoneTypeCircle, CenterPoint: "food", RadiusCm: 5},
		},
	}
}

func TestArenaServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.arenas.Create(ctx, openField(), "lab")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "lab", created.CreatedBy)

	// circle without a scale keeps its raw radius and is reported
	warnings := f.logs.FilterMessage("arena layout warning").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, created.ID, warnings[0].ContextMap()["arena_id"])

	layout, err := f.arenas.Layout(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"center", "box", "feeder"}, layout.ZoneIDs())
	again, err := f.arenas.Layout(ctx, created.ID)
	require.NoError(t, err)
	assert.Same(t, layout, again)

	list, err := f.arenas.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.arenas.Delete(ctx, created.ID))
	_, err = f.arenas.Layout(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, f.arenas.Delete(ctx, created.ID), models.ErrNotFound)
}

func TestArenaServiceRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	noName := openField()
	noName.Name = ""
	_, err := f.arenas.Create(ctx, noName, "")
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	cyclic := openField()
	cyclic.Zones = append(cyclic.Zones,
		models.ZoneConfig{ID: "x", Type: models.ZoneTypeProportion, ParentZone: "y", Proportion: []float64{0, 0, 1, 1}},
		models.ZoneConfig{ID: "y", Type: models.ZoneTypeProportion, ParentZone: "x", Proportion: []float64{0, 0, 1, 1}},
	)
	_, err = f.arenas.Create(ctx, cyclic, "")
	assert.ErrorIs(t, err, arena.ErrCyclicDependency)

	badScale := openField()
	zero := 0.0
	badScale.Scale = &zero
	_, err = f.arenas.Create(ctx, badScale, "")
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	list, err := f.arenas.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// crossing walks from the left wall through the centre to the right wall along y=50
func crossing(id string) models.Subject {
	s := models.Subject{ID: id}
	for f := 0; f < 10; f++ {
		s.Positions = append(s.Positions, models.PositionSample{Frame: f, Landmark: "nose", X: float64(f * 10), Y: 50})
	}
	s.Positions = append(s.Positions, models.PositionSample{Frame: 10, Landmark: "nose", X: math.NaN(), Y: math.NaN()})
	return s
}

func TestAnalysisRun(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created, err := f.arenas.Create(ctx, openField(), "lab")
	require.NoError(t, err)

	res, err := f.analysis.Run(ctx, RunRequest{
		ArenaID:   created.ID,
		Skills:    []string{"zone_summary", "zone_transitions", "movement"},
		Subjects:  []models.Subject{crossing("m1"), crossing("m2")},
		CreatedBy: "lab",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TaskStatusCompleted, res.Task.Status)
	assert.Equal(t, 2, res.Task.SubjectCount)
	assert.Equal(t, 22, res.Task.SampleCount)
	require.NotNil(t, res.Task.CompletedAt)

	var params models.AnalysisParams
	require.NoError(t, json.Unmarshal([]byte(res.Task.ParamsJSON), &params))
	assert.Equal(t, 10.0, params.FPS, "default fps applied")

	require.Len(t, res.Results, 2)
	m1 := res.Results[0]
	assert.Equal(t, "m1", m1.SubjectID)

	// center spans x in [25, 75): frames at x=30..70
	require.Len(t, m1.Summaries, 4)
	center := m1.Summaries[0]
	assert.Equal(t, "center", center.ZoneID)
	assert.Equal(t, 5, center.FramesInZone)
	assert.Equal(t, 11, center.TotalFrames)
	require.NotNil(t, center.LatencySeconds)
	assert.InDelta(t, 0.3, *center.LatencySeconds, 1e-9)

	box := m1.Summaries[1]
	assert.Equal(t, 10, box.FramesInZone)
	outside := m1.Summaries[3]
	assert.Equal(t, models.OutsideZoneID, outside.ZoneID)
	assert.Equal(t, 1, outside.FramesInZone, "the missing frame counts as outside")

	// box is declared after center, so center wins while overlapping
	assert.Equal(t, []models.ZoneTransition{
		{SubjectID: "m1", Landmark: "nose", From: "box", To: "center", Count: 1},
		{SubjectID: "m1", Landmark: "nose", From: "center", To: "box", Count: 1},
	}, m1.Transitions)

	require.Len(t, m1.Movement, 1)
	assert.InDelta(t, 90.0, m1.Movement[0].Distance, 1e-9)
	assert.Nil(t, m1.Movement[0].DistanceCm)

	metrics, err := f.analysis.Metrics(ctx, res.Task.ID, models.MetricsFilter{SubjectID: "m2", ZoneID: "center"})
	require.NoError(t, err)
	require.Len(t, metrics.Summaries, 1)
	assert.Equal(t, center.Percentage, metrics.Summaries[0].Percentage)
	assert.Len(t, metrics.Transitions, 2)

	tasks, err := f.analysis.ListTasks(ctx, models.TaskFilter{ArenaID: created.ID})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestAnalysisRunRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created, err := f.arenas.Create(ctx, openField(), "")
	require.NoError(t, err)

	tests := []struct {
		name string
		req  RunRequest
		want error
	}{
		{"no arena", RunRequest{Subjects: []models.Subject{crossing("m1")}}, models.ErrInvalidArgument},
		{"no subjects", RunRequest{ArenaID: created.ID}, models.ErrInvalidArgument},
		{"duplicate subject", RunRequest{ArenaID: created.ID, Subjects: []models.Subject{crossing("m1"), crossing("m1")}}, models.ErrInvalidArgument},
		{"unknown skill", RunRequest{ArenaID: created.ID, Skills: []string{"nope"}, Subjects: []models.Subject{crossing("m1")}}, models.ErrInvalidArgument},
		{"negative fps", RunRequest{ArenaID: created.ID, Params: models.AnalysisParams{FPS: -1}, Subjects: []models.Subject{crossing("m1")}}, models.ErrInvalidArgument},
		{"negative min duration", RunRequest{ArenaID: created.ID, Params: models.AnalysisParams{MinDuration: -1}, Subjects: []models.Subject{crossing("m1")}}, models.ErrInvalidArgument},
		{"missing arena", RunRequest{ArenaID: "missing", Subjects: []models.Subject{crossing("m1")}}, models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.analysis.Run(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	tasks, err := f.analysis.ListTasks(ctx, models.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks, "rejected requests leave no task behind")

	_, err = f.analysis.Metrics(ctx, 42, models.MetricsFilter{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAnalysisClassify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created, err := f.arenas.Create(ctx, openField(), "")
	require.NoError(t, err)

	rows, err := f.analysis.Classify(ctx, created.ID, []models.PositionSample{
		{Frame: 0, Landmark: "nose", X: 50, Y: 50},
		{Frame: 1, Landmark: "nose", X: 500, Y: 50},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "center", *rows[0].ZoneID)
	assert.Equal(t, "box", *rows[1].ZoneID)
	assert.Nil(t, rows[2].ZoneID)

	_, err = f.analysis.Classify(ctx, "missing", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
