package classify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/arena-zones-backend/internal/arena"
	"github.com/jengzang/arena-zones-backend/internal/models"
)

// twoZoneLayout has a left box, a right box and an overlap band in the middle
func twoZoneLayout(t *testing.T) *arena.Layout {
	t.Helper()
	layout, err := arena.Build(models.ArenaConfig{
		Points: []models.ReferencePoint{
			{Name: "a", X: 0, Y: 0},
			{Name: "b", X: 60, Y: 10},
			{Name: "c", X: 40, Y: 0},
			{Name: "d", X: 100, Y: 10},
		},
		Zones: []models.ZoneConfig{
			{ID: "left", Type: "rectangle", Points: []string{"a", "b"}},
			{ID: "right", Type: "rectangle", Points: []string{"c", "d"}},
		},
	})
	require.NoError(t, err)
	return layout
}

func sample(frame int, landmark string, x, y float64) models.PositionSample {
	return models.PositionSample{Frame: frame, Time: float64(frame) / 30, Landmark: landmark, X: x, Y: y}
}

func zoneIDs(rows []models.FrameMembership) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		if r.ZoneID == nil {
			out[i] = "<nil>"
			continue
		}
		out[i] = *r.ZoneID
	}
	return out
}

func TestClassifyRows(t *testing.T) {
	layout := twoZoneLayout(t)
	positions := []models.PositionSample{
		sample(0, "nose", 10, 5),          // left only
		sample(1, "nose", 50, 5),          // overlap
		sample(2, "nose", 200, 5),         // no zone
		sample(3, "nose", math.NaN(), 5),  // missing
		sample(4, "nose", 80, math.NaN()), // missing
	}

	rows := Classify(positions, layout)
	assert.Equal(t, []string{"left", "left", "right", "<nil>", "<nil>", "<nil>"}, zoneIDs(rows))
	assert.Equal(t, []int{0, 1, 1, 2, 3, 4}, []int{rows[0].Frame, rows[1].Frame, rows[2].Frame, rows[3].Frame, rows[4].Frame, rows[5].Frame})

	assert.Nil(t, rows[4].X)
	require.NotNil(t, rows[4].Y)
	assert.Equal(t, 5.0, *rows[4].Y)
}

func TestClassifyRowCountInvariant(t *testing.T) {
	layout := twoZoneLayout(t)
	var positions []models.PositionSample
	for f := 0; f < 120; f++ {
		x := float64(f)
		if f%7 == 0 {
			x = math.NaN()
		}
		positions = append(positions, sample(f, "nose", x, 5), sample(f, "tail", 120-x, 5))
	}
	// duplicate upstream samples must not produce extra rows
	positions = append(positions, sample(3, "nose", 10, 5), sample(7, "tail", math.NaN(), 5))

	rows := Classify(positions, layout)

	type key struct {
		frame    int
		landmark string
	}
	total := map[key]int{}
	nils := map[key]int{}
	for _, r := range rows {
		k := key{r.Frame, r.Landmark}
		total[k]++
		if r.ZoneID == nil {
			nils[k]++
		}
	}

	assert.Len(t, total, 240)
	for k, n := range total {
		assert.GreaterOrEqual(t, n, 1, "frame %v has no rows", k)
		if nils[k] > 0 {
			assert.Equal(t, 1, n, "nil row for %v must be the only row", k)
			assert.Equal(t, 1, nils[k])
		}
	}
}

func TestClassifyEmptyLayout(t *testing.T) {
	layout, err := arena.Build(models.ArenaConfig{})
	require.NoError(t, err)

	rows := Classify([]models.PositionSample{sample(0, "nose", 1, 1), sample(1, "nose", 2, 2)}, layout)
	assert.Equal(t, []string{"<nil>", "<nil>"}, zoneIDs(rows))

	assert.Empty(t, Classify(nil, layout))
}

func TestZoneSeries(t *testing.T) {
	layout := twoZoneLayout(t)
	positions := []models.PositionSample{
		sample(2, "nose", 80, 5),
		sample(0, "nose", 10, 5),
		sample(1, "nose", 50, 5),
		sample(3, "nose", math.NaN(), 5),
	}
	rows := Classify(positions, layout)

	left, err := ZoneSeries(rows, "nose", "left")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false, false}, left)

	right, err := ZoneSeries(rows, "nose", "right")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true, false}, right)

	_, err = ZoneSeries(rows, "tail", "left")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLabelSeries(t *testing.T) {
	layout := twoZoneLayout(t)
	rows := Classify([]models.PositionSample{
		sample(0, "nose", 10, 5),
		sample(1, "nose", 50, 5),
		sample(2, "nose", 80, 5),
		sample(3, "nose", 200, 5),
	}, layout)

	labels, err := LabelSeries(rows, "nose", []string{"right", "left"})
	require.NoError(t, err)
	assert.Equal(t, []string{"left", "right", "right", ""}, labels)
}

func TestLandmarksAndPositions(t *testing.T) {
	positions := []models.PositionSample{
		sample(1, "tail", 0, 0),
		sample(0, "nose", 0, 0),
		sample(0, "tail", 0, 0),
		sample(1, "tail", 7, 7),
	}
	assert.Equal(t, []string{"nose", "tail"}, PositionLandmarks(positions))

	tail, err := Positions(positions, "tail")
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, []int{0, 1}, []int{tail[0].Frame, tail[1].Frame})
	assert.Equal(t, 0.0, tail[1].X)

	_, err = Positions(positions, "ear")
	assert.ErrorIs(t, err, models.ErrNotFound)

	layout := twoZoneLayout(t)
	assert.Equal(t, []string{"nose", "tail"}, Landmarks(Classify(positions, layout)))
}
