package temporal

import (
	"github.com/jengzang/arena-zones-backend/internal/arena"
	"github.com/jengzang/arena-zones-backend/internal/classify"
	"github.com/jengzang/arena-zones-backend/internal/models"
)

// Summarize computes occupancy, entries, exits and latency for every landmark
// in every zone of the layout, followed by one outside row per landmark.
// Overlapping zones can make the percentages of a landmark add up to more than 100.
func Summarize(rows []models.FrameMembership, layout *arena.Layout, opts Options) ([]models.ZoneSummary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(rows) == 0 || layout.Len() == 0 {
		return []models.ZoneSummary{}, nil
	}

	var out []models.ZoneSummary
	for _, landmark := range classify.Landmarks(rows) {
		for _, zone := range layout.Zones() {
			series, err := classify.ZoneSeries(rows, landmark, zone.ZoneID)
			if err != nil {
				return nil, err
			}
			summary, err := summarizeSeries(series, opts)
			if err != nil {
				return nil, err
			}
			summary.Landmark = landmark
			summary.ZoneID = zone.ZoneID
			summary.ZoneName = zone.ZoneName
			out = append(out, summary)
		}

		outside, err := classify.OutsideSeries(rows, landmark)
		if err != nil {
			return nil, err
		}
		summary, err := summarizeSeries(outside, opts)
		if err != nil {
			return nil, err
		}
		summary.Landmark = landmark
		summary.ZoneID = models.OutsideZoneID
		summary.ZoneName = models.OutsideZoneID
		out = append(out, summary)
	}
	return out, nil
}

// SummarizeZone computes the metrics of one landmark in one named zone
func SummarizeZone(rows []models.FrameMembership, layout *arena.Layout, landmark, zoneID string, opts Options) (models.ZoneSummary, error) {
	if err := opts.Validate(); err != nil {
		return models.ZoneSummary{}, err
	}
	zone, err := layout.Zone(zoneID)
	if err != nil {
		return models.ZoneSummary{}, err
	}
	series, err := classify.ZoneSeries(rows, landmark, zoneID)
	if err != nil {
		return models.ZoneSummary{}, err
	}

	summary, err := summarizeSeries(series, opts)
	if err != nil {
		return models.ZoneSummary{}, err
	}
	summary.Landmark = landmark
	summary.ZoneID = zone.ZoneID
	summary.ZoneName = zone.ZoneName
	return summary, nil
}

func summarizeSeries(series []bool, opts Options) (models.ZoneSummary, error) {
	occ, err := Occupancy(series, opts.FPS)
	if err != nil {
		return models.ZoneSummary{}, err
	}
	visits, err := Visits(series, opts.FPS)
	if err != nil {
		return models.ZoneSummary{}, err
	}

	summary := models.ZoneSummary{
		ZoneOccupancy: occ,
		Entries:       countEntries(visits, opts.MinDuration),
		Exits:         countExits(visits, len(series), opts.MinDuration),
	}
	if latency, ok := firstQualifying(visits, opts); ok {
		summary.LatencySeconds = &latency
	}
	return summary, nil
}

// LandmarkTransitions counts zone-to-zone transitions for every landmark. The
// layout's zones, in declaration order, form the partition: a frame inside
// several zones is labelled with the first of them.
func LandmarkTransitions(rows []models.FrameMembership, layout *arena.Layout, opts Options) ([]models.ZoneTransition, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(rows) == 0 || layout.Len() == 0 {
		return []models.ZoneTransition{}, nil
	}

	out := []models.ZoneTransition{}
	for _, landmark := range classify.Landmarks(rows) {
		labels, err := classify.LabelSeries(rows, landmark, layout.ZoneIDs())
		if err != nil {
			return nil, err
		}
		transitions, err := Transitions(labels, opts)
		if err != nil {
			return nil, err
		}
		for _, tr := range transitions {
			tr.Landmark = landmark
			out = append(out, tr)
		}
	}
	return out, nil
}

// LandmarkVisits lists the raw visits of one landmark to one zone, without the
// minimum duration filter
func LandmarkVisits(rows []models.FrameMembership, landmark, zoneID string, fps float64) ([]models.ZoneVisit, error) {
	series, err := classify.ZoneSeries(rows, landmark, zoneID)
	if err != nil {
		return nil, err
	}
	return Visits(series, fps)
}
