// Package temporal computes time-based zone metrics over per-frame membership series:
// occupancy, visits, entries, exits, first-entry latency and zone-to-zone transitions.
package temporal

import (
	"fmt"
	"sort"

	"github.com/jengzang/arena-zones-backend/internal/models"
)

// Options are the parameters shared by the zone metrics
type Options struct {
	FPS float64

	// MinDuration is the shortest visit, in seconds, counted towards entries,
	// exits, latency and transitions. Occupancy ignores it.
	MinDuration float64

	// IncludeOutside makes runs outside every zone count as transition endpoints
	IncludeOutside bool
}

// Validate rejects a non-positive frame rate and a negative minimum duration
func (o Options) Validate() error {
	if o.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %v: %w", o.FPS, models.ErrInvalidArgument)
	}
	if o.MinDuration < 0 {
		return fmt.Errorf("min_duration must be non-negative, got %v: %w", o.MinDuration, models.ErrInvalidArgument)
	}
	return nil
}

func validateFPS(fps float64) error {
	return Options{FPS: fps}.Validate()
}

// Occupancy counts every in-zone frame, whatever the length of its run
func Occupancy(series []bool, fps float64) (models.ZoneOccupancy, error) {
	if err := validateFPS(fps); err != nil {
		return models.ZoneOccupancy{}, err
	}

	occ := models.ZoneOccupancy{TotalFrames: len(series)}
	for _, in := range series {
		if in {
			occ.FramesInZone++
		}
	}
	if occ.TotalFrames == 0 {
		return occ, nil
	}

	occ.TimeSeconds = float64(occ.FramesInZone) / fps
	occ.Percentage = float64(occ.FramesInZone) / float64(occ.TotalFrames) * 100
	return occ, nil
}

// Visits run-length encodes the series into maximal runs of true frames.
// Runs touching the first or last frame are visits too.
func Visits(series []bool, fps float64) ([]models.ZoneVisit, error) {
	if err := validateFPS(fps); err != nil {
		return nil, err
	}

	var visits []models.ZoneVisit
	start := -1
	for i, in := range series {
		switch {
		case in && start < 0:
			start = i
		case !in && start >= 0:
			visits = append(visits, newVisit(start, i-1, fps))
			start = -1
		}
	}
	if start >= 0 {
		visits = append(visits, newVisit(start, len(series)-1, fps))
	}
	return visits, nil
}

func newVisit(start, end int, fps float64) models.ZoneVisit {
	return models.ZoneVisit{
		StartFrame:      start,
		EndFrame:        end,
		DurationSeconds: float64(end-start+1) / fps,
	}
}

func qualifies(v models.ZoneVisit, minDuration float64) bool {
	return v.DurationSeconds >= minDuration
}

func visitsWithOptions(series []bool, opts Options) ([]models.ZoneVisit, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return Visits(series, opts.FPS)
}

// Entries counts visits lasting at least MinDuration
func Entries(series []bool, opts Options) (int, error) {
	visits, err := visitsWithOptions(series, opts)
	if err != nil {
		return 0, err
	}
	return countEntries(visits, opts.MinDuration), nil
}

func countEntries(visits []models.ZoneVisit, minDuration float64) int {
	n := 0
	for _, v := range visits {
		if qualifies(v, minDuration) {
			n++
		}
	}
	return n
}

// Exits counts qualifying visits that end before the last frame. A visit still
// running when the recording stops has no observed exit.
func Exits(series []bool, opts Options) (int, error) {
	visits, err := visitsWithOptions(series, opts)
	if err != nil {
		return 0, err
	}
	return countExits(visits, len(series), opts.MinDuration), nil
}

func countExits(visits []models.ZoneVisit, total int, minDuration float64) int {
	n := 0
	for _, v := range visits {
		if v.EndFrame == total-1 {
			continue
		}
		if qualifies(v, minDuration) {
			n++
		}
	}
	return n
}

// Latency returns the start of the first visit lasting at least MinDuration, in
// seconds from the first frame. Earlier shorter visits are skipped. ok is false
// when no visit qualifies.
func Latency(series []bool, opts Options) (latency float64, ok bool, err error) {
	visits, err := visitsWithOptions(series, opts)
	if err != nil {
		return 0, false, err
	}
	latency, ok = firstQualifying(visits, opts)
	return latency, ok, nil
}

func firstQualifying(visits []models.ZoneVisit, opts Options) (float64, bool) {
	for _, v := range visits {
		if !qualifies(v, opts.MinDuration) {
			continue
		}
		return float64(v.StartFrame) / opts.FPS, true
	}
	return 0, false
}

// labelRun is a maximal run of one label in a label series
type labelRun struct {
	label  string
	frames int
}

// Transitions counts moves between consecutive qualifying runs of a label
// series ("" means outside every zone).
//
// Runs shorter than MinDuration are dropped and their neighbours joined, so a
// glitch between two qualifying runs does not add transitions; if both
// neighbours carry the same label they merge into one run. Outside runs take
// part as models.OutsideZoneID when IncludeOutside is set, otherwise they are
// dropped the same way.
func Transitions(labels []string, opts Options) ([]models.ZoneTransition, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var runs []labelRun
	for _, l := range labels {
		if n := len(runs); n > 0 && runs[n-1].label == l {
			runs[n-1].frames++
			continue
		}
		runs = append(runs, labelRun{label: l, frames: 1})
	}

	var kept []string
	for _, r := range runs {
		if float64(r.frames)/opts.FPS < opts.MinDuration {
			continue
		}
		label := r.label
		if label == "" {
			if !opts.IncludeOutside {
				continue
			}
			label = models.OutsideZoneID
		}
		if n := len(kept); n > 0 && kept[n-1] == label {
			continue
		}
		kept = append(kept, label)
	}

	type pair struct{ from, to string }
	counts := make(map[pair]int)
	for i := 1; i < len(kept); i++ {
		counts[pair{kept[i-1], kept[i]}]++
	}

	out := make([]models.ZoneTransition, 0, len(counts))
	for p, c := range counts {
		out = append(out, models.ZoneTransition{From: p.from, To: p.to, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out, nil
}
