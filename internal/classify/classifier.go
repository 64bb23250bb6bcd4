// Package classify maps per-frame landmark positions onto the zones of an arena.
package classify

import (
	"fmt"
	"math"
	"sort"

	"github.com/jengzang/arena-zones-backend/internal/arena"
	"github.com/jengzang/arena-zones-backend/internal/models"
	"github.com/jengzang/arena-zones-backend/internal/spatial"
)

type frameKey struct {
	frame    int
	landmark string
}

// Classify tests every (frame, landmark) sample against every zone of the layout.
//
// Each sample yields one row per zone it falls in, in zone declaration order.
// A sample in no zone, or with a missing coordinate, yields exactly one row with
// a nil ZoneID. Repeated samples for the same (frame, landmark) are classified
// once, using the first occurrence.
func Classify(positions []models.PositionSample, layout *arena.Layout) []models.FrameMembership {
	zones := layout.Zones()
	rows := make([]models.FrameMembership, 0, len(positions))
	seen := make(map[frameKey]bool, len(positions))

	for _, p := range positions {
		key := frameKey{frame: p.Frame, landmark: p.Landmark}
		if seen[key] {
			continue
		}
		seen[key] = true

		base := models.FrameMembership{
			Frame:    p.Frame,
			Time:     p.Time,
			Landmark: p.Landmark,
			X:        optional(p.X),
			Y:        optional(p.Y),
		}

		matched := false
		for _, z := range zones {
			// Unknown (missing coordinates) never matches
			if spatial.Contains(z.Shape, p.X, p.Y) != spatial.Inside {
				continue
			}
			row := base
			id := z.ZoneID
			row.ZoneID = &id
			rows = append(rows, row)
			matched = true
		}

		if !matched {
			rows = append(rows, base)
		}
	}

	return rows
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// Landmarks returns the distinct landmarks of the rows, sorted
func Landmarks(rows []models.FrameMembership) []string {
	set := make(map[string]struct{})
	for _, r := range rows {
		set[r.Landmark] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// frameIndex groups the rows of one landmark by frame, in frame order
func frameIndex(rows []models.FrameMembership, landmark string) ([]int, map[int][]models.FrameMembership, error) {
	byFrame := make(map[int][]models.FrameMembership)
	for _, r := range rows {
		if r.Landmark != landmark {
			continue
		}
		byFrame[r.Frame] = append(byFrame[r.Frame], r)
	}
	if len(byFrame) == 0 {
		return nil, nil, fmt.Errorf("landmark %q: %w", landmark, models.ErrNotFound)
	}

	frames := make([]int, 0, len(byFrame))
	for f := range byFrame {
		frames = append(frames, f)
	}
	sort.Ints(frames)
	return frames, byFrame, nil
}

// ZoneSeries returns, for each frame of landmark in frame order, whether it is in zoneID.
// Every other label, including no zone, counts as outside.
func ZoneSeries(rows []models.FrameMembership, landmark, zoneID string) ([]bool, error) {
	frames, byFrame, err := frameIndex(rows, landmark)
	if err != nil {
		return nil, err
	}

	series := make([]bool, len(frames))
	for i, f := range frames {
		for _, r := range byFrame[f] {
			if r.InZone(zoneID) {
				series[i] = true
				break
			}
		}
	}
	return series, nil
}

// LabelSeries returns one label per frame of landmark, drawn from the partition
// zoneIDs. When a frame is in several of them the first id in zoneIDs wins.
// Frames in none of them are labelled "".
func LabelSeries(rows []models.FrameMembership, landmark string, zoneIDs []string) ([]string, error) {
	frames, byFrame, err := frameIndex(rows, landmark)
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(frames))
	for i, f := range frames {
		for _, id := range zoneIDs {
			if hasZone(byFrame[f], id) {
				labels[i] = id
				break
			}
		}
	}
	return labels, nil
}

// OutsideSeries marks the frames of landmark that fall in no zone at all
func OutsideSeries(rows []models.FrameMembership, landmark string) ([]bool, error) {
	frames, byFrame, err := frameIndex(rows, landmark)
	if err != nil {
		return nil, err
	}

	series := make([]bool, len(frames))
	for i, f := range frames {
		series[i] = true
		for _, r := range byFrame[f] {
			if r.ZoneID != nil {
				series[i] = false
				break
			}
		}
	}
	return series, nil
}

func hasZone(rows []models.FrameMembership, zoneID string) bool {
	for _, r := range rows {
		if r.InZone(zoneID) {
			return true
		}
	}
	return false
}

// Positions returns the samples of one landmark in frame order, one per frame
func Positions(positions []models.PositionSample, landmark string) ([]models.PositionSample, error) {
	var out []models.PositionSample
	for _, p := range positions {
		if p.Landmark == landmark {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("landmark %q: %w", landmark, models.ErrNotFound)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Frame < out[j].Frame })

	// first sample of a frame wins, as in Classify
	kept := out[:1]
	for _, p := range out[1:] {
		if p.Frame != kept[len(kept)-1].Frame {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

// PositionLandmarks returns the distinct landmarks of a position series, sorted
func PositionLandmarks(positions []models.PositionSample) []string {
	set := make(map[string]struct{})
	for _, p := range positions {
		set[p.Landmark] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
