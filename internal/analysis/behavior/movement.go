package behavior

import (
	"fmt"
	"math"

	"github.com/jengzang/arena-zones-backend/internal/classify"
	"github.com/jengzang/arena-zones-backend/internal/models"
	"github.com/jengzang/arena-zones-backend/internal/spatial"
	"github.com/jengzang/arena-zones-backend/internal/stats"
)

// Movement summarises distance travelled and speed of one landmark.
// Steps into or out of a missing sample are skipped, so gaps neither add
// distance nor produce speed samples. scale is pixels per cm; pass 0 when unknown.
func Movement(positions []models.PositionSample, landmark string, fps, scale float64) (models.MovementSummary, error) {
	if fps <= 0 {
		return models.MovementSummary{}, fmt.Errorf("fps must be positive, got %v: %w", fps, models.ErrInvalidArgument)
	}
	if scale < 0 {
		return models.MovementSummary{}, fmt.Errorf("scale must be non-negative, got %v: %w", scale, models.ErrInvalidArgument)
	}

	samples, err := classify.Positions(positions, landmark)
	if err != nil {
		return models.MovementSummary{}, err
	}

	points := make([]spatial.Point, len(samples))
	summary := models.MovementSummary{Landmark: landmark, Frames: len(samples)}
	for i, s := range samples {
		points[i] = spatial.Point{X: s.X, Y: s.Y}
		if !points[i].IsMissing() {
			summary.ValidFrames++
		}
	}

	steps := spatial.StepLengths(points)
	speeds := make([]float64, 0, len(steps))
	for i, step := range steps {
		if math.IsNaN(step) {
			continue
		}
		// frame gaps stretch the time a step took
		frames := samples[i+1].Frame - samples[i].Frame
		if frames <= 0 {
			continue
		}
		speeds = append(speeds, step*fps/float64(frames))
	}

	summary.Distance = spatial.PathLength(points)
	if scale > 0 {
		cm := spatial.ToCentimetres(summary.Distance, scale)
		summary.DistanceCm = &cm
	}
	summary.MeanSpeed = stats.Mean(speeds)
	summary.MedianSpeed = stats.Median(speeds)
	summary.MaxSpeed = stats.Max(speeds)
	summary.SpeedStdDev = stats.StdDev(speeds)

	return summary, nil
}
