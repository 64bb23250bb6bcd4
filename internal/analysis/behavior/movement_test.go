package behavior

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/arena-zones-backend/internal/models"
)

func TestMovement(t *testing.T) {
	positions := []models.PositionSample{
		{Frame: 0, Landmark: "nose", X: 0, Y: 0},
		{Frame: 1, Landmark: "nose", X: 3, Y: 4},
		{Frame: 2, Landmark: "nose", X: math.NaN(), Y: 4},
		{Frame: 3, Landmark: "nose", X: 6, Y: 8},
		{Frame: 5, Landmark: "nose", X: 6, Y: 18},
		{Frame: 0, Landmark: "tail", X: 100, Y: 100},
	}

	m, err := Movement(positions, "nose", 10, 2)
	require.NoError(t, err)

	assert.Equal(t, 5, m.Frames)
	assert.Equal(t, 4, m.ValidFrames)
	assert.InDelta(t, 15.0, m.Distance, 1e-12)
	require.NotNil(t, m.DistanceCm)
	assert.InDelta(t, 7.5, *m.DistanceCm, 1e-12)

	// speeds: 5 units in 1 frame = 50/s, 10 units over 2 frames = 50/s
	assert.InDelta(t, 50.0, m.MeanSpeed, 1e-9)
	assert.InDelta(t, 50.0, m.MedianSpeed, 1e-9)
	assert.InDelta(t, 50.0, m.MaxSpeed, 1e-9)
	assert.InDelta(t, 0.0, m.SpeedStdDev, 1e-9)
}

func TestMovementNoScale(t *testing.T) {
	m, err := Movement([]models.PositionSample{{Frame: 0, Landmark: "nose"}}, "nose", 30, 0)
	require.NoError(t, err)
	assert.Nil(t, m.DistanceCm)
	assert.Zero(t, m.Distance)
	assert.Zero(t, m.MeanSpeed)
}

func TestMovementErrors(t *testing.T) {
	positions := []models.PositionSample{{Frame: 0, Landmark: "nose"}}

	_, err := Movement(positions, "nose", 0, 1)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = Movement(positions, "nose", 30, -1)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = Movement(positions, "ear", 30, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
