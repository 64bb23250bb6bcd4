package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionSampleMissingCoordinates(t *testing.T) {
	var samples []PositionSample
	err := json.Unmarshal([]byte(`[
		{"frame": 0, "landmark": "nose", "x": 1.5, "y": 2},
		{"frame": 1, "landmark": "nose", "x": null, "y": 2},
		{"frame": 2, "landmark": "nose"}
	]`), &samples)
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, 1.5, samples[0].X)
	assert.True(t, math.IsNaN(samples[1].X))
	assert.Equal(t, 2.0, samples[1].Y)
	assert.True(t, math.IsNaN(samples[2].X))
	assert.True(t, math.IsNaN(samples[2].Y))

	out, err := json.Marshal(samples[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"frame":1,"time":0,"landmark":"nose","x":null,"y":2}`, string(out))
}
