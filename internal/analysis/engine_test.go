package analysis_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/arena-zones-backend/internal/analysis"
	_ "github.com/jengzang/arena-zones-backend/internal/analysis/behavior"
	_ "github.com/jengzang/arena-zones-backend/internal/analysis/temporal"
	"github.com/jengzang/arena-zones-backend/internal/arena"
	"github.com/jengzang/arena-zones-backend/internal/models"
)

func boxLayout(t *testing.T) *arena.Layout {
	t.Helper()
	scale := 2.0
	layout, err := arena.Build(models.ArenaConfig{
		ID:    "arena-1",
		Scale: &scale,
		Points: []models.ReferencePoint{
			{Name: "tl", X: 0, Y: 0},
			{Name: "br", X: 10, Y: 10},
		},
		Zones: []models.ZoneConfig{
			{ID: "box", Type: models.ZoneTypeRectangle, Points: []string{"tl", "br"}},
		},
	})
	require.NoError(t, err)
	return layout
}

// subject walks along y=5 from x=0, one unit per frame
func subject(id string, frames int) models.Subject {
	s := models.Subject{ID: id}
	for f := 0; f < frames; f++ {
		s.Positions = append(s.Positions, models.PositionSample{Frame: f, Landmark: "nose", X: float64(f), Y: 5})
	}
	return s
}

func TestRegisteredSkills(t *testing.T) {
	assert.Equal(t, []string{"movement", "zone_summary", "zone_transitions", "zone_visits"}, analysis.Skills())
	assert.True(t, analysis.IsKnownSkill("zone_summary"))
	assert.False(t, analysis.IsKnownSkill("unknown_skill"))
	assert.Nil(t, analysis.GetAnalyzer("nope"))
	assert.Equal(t, "movement", analysis.GetAnalyzer("movement").GetName())
}

func TestRunBatch(t *testing.T) {
	layout := boxLayout(t)
	var subjects []models.Subject
	for i := 0; i < 8; i++ {
		subjects = append(subjects, subject(fmt.Sprintf("m%d", i), 20+i))
	}
	params := models.AnalysisParams{FPS: 10}

	results, err := analysis.RunBatch(context.Background(), layout, subjects, analysis.Skills(), params, 3)
	require.NoError(t, err)
	require.Len(t, results, len(subjects))

	for i, res := range results {
		assert.Equal(t, subjects[i].ID, res.SubjectID)
		assert.Equal(t, 20+i, res.Samples)

		// box row then outside row
		require.Len(t, res.Summaries, 2)
		box := res.Summaries[0]
		assert.Equal(t, "box", box.ZoneID)
		assert.Equal(t, subjects[i].ID, box.SubjectID)
		assert.Equal(t, 10, box.FramesInZone) // x=10 lies on the right edge, which is outside
		assert.Equal(t, 1, box.Entries)
		assert.Equal(t, 1, box.Exits)
		require.NotNil(t, box.LatencySeconds)
		assert.Zero(t, *box.LatencySeconds)
		assert.Equal(t, models.OutsideZoneID, res.Summaries[1].ZoneID)

		require.Len(t, res.Visits, 1)
		assert.Equal(t, []models.ZoneVisit{{StartFrame: 0, EndFrame: 9, DurationSeconds: 1}}, res.Visits[0].Visits)

		// outside runs are dropped unless requested, so nothing to count
		assert.Empty(t, res.Transitions)

		require.Len(t, res.Movement, 1)
		assert.InDelta(t, float64(20+i-1), res.Movement[0].Distance, 1e-9)
		require.NotNil(t, res.Movement[0].DistanceCm)
		assert.InDelta(t, float64(20+i-1)/2, *res.Movement[0].DistanceCm, 1e-9)
		assert.InDelta(t, 10.0, res.Movement[0].MeanSpeed, 1e-9)
	}
}

func TestRunBatchIncludeOutside(t *testing.T) {
	results, err := analysis.RunBatch(context.Background(), boxLayout(t), []models.Subject{subject("m0", 20)},
		[]string{"zone_transitions"}, models.AnalysisParams{FPS: 10, IncludeOutside: true}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []models.ZoneTransition{{SubjectID: "m0", Landmark: "nose", From: "box", To: models.OutsideZoneID, Count: 1}}, results[0].Transitions)
	assert.Nil(t, results[0].Summaries)
}

func TestRunBatchErrors(t *testing.T) {
	layout := boxLayout(t)
	subjects := []models.Subject{subject("m0", 5), subject("m1", 5)}

	_, err := analysis.RunBatch(context.Background(), layout, subjects, nil, models.AnalysisParams{FPS: 30}, 2)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = analysis.RunBatch(context.Background(), layout, subjects, []string{"zone_summary", "nope"}, models.AnalysisParams{FPS: 30}, 2)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	results, err := analysis.RunBatch(context.Background(), layout, subjects, []string{"zone_summary"}, models.AnalysisParams{FPS: 0}, 2)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
	assert.Nil(t, results)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = analysis.RunBatch(ctx, layout, subjects, []string{"zone_summary"}, models.AnalysisParams{FPS: 30}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBatchEmpty(t *testing.T) {
	results, err := analysis.RunBatch(context.Background(), boxLayout(t), nil, []string{"zone_summary"}, models.AnalysisParams{FPS: 30}, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}
