package temporal

import (
	"context"

	"github.com/jengzang/arena-zones-backend/internal/analysis"
	"github.com/jengzang/arena-zones-backend/internal/classify"
	"github.com/jengzang/arena-zones-backend/internal/models"
)

// Skill names registered by this package
const (
	SkillZoneSummary     = "zone_summary"
	SkillZoneTransitions = "zone_transitions"
	SkillZoneVisits      = "zone_visits"
)

// OptionsFromParams maps task parameters onto metric options
func OptionsFromParams(p models.AnalysisParams) Options {
	return Options{FPS: p.FPS, MinDuration: p.MinDuration, IncludeOutside: p.IncludeOutside}
}

// ZoneSummaryAnalyzer implements the zone_summary skill
type ZoneSummaryAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewZoneSummaryAnalyzer creates a new zone summary analyzer
func NewZoneSummaryAnalyzer() analysis.Analyzer {
	return &ZoneSummaryAnalyzer{BaseAnalyzer: analysis.NewBaseAnalyzer(SkillZoneSummary)}
}

// Analyze computes occupancy, entries, exits and latency per landmark and zone
func (a *ZoneSummaryAnalyzer) Analyze(_ context.Context, s *analysis.Session, out *models.SubjectResult) error {
	summaries, err := Summarize(s.Rows, s.Layout, OptionsFromParams(s.Params))
	if err != nil {
		return err
	}
	for i := range summaries {
		summaries[i].SubjectID = s.Subject.ID
	}
	out.Summaries = summaries
	return nil
}

// ZoneTransitionsAnalyzer implements the zone_transitions skill
type ZoneTransitionsAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewZoneTransitionsAnalyzer creates a new zone transitions analyzer
func NewZoneTransitionsAnalyzer() analysis.Analyzer {
	return &ZoneTransitionsAnalyzer{BaseAnalyzer: analysis.NewBaseAnalyzer(SkillZoneTransitions)}
}

func (a *ZoneTransitionsAnalyzer) Analyze(_ context.Context, s *analysis.Session, out *models.SubjectResult) error {
	transitions, err := LandmarkTransitions(s.Rows, s.Layout, OptionsFromParams(s.Params))
	if err != nil {
		return err
	}
	for i := range transitions {
		transitions[i].SubjectID = s.Subject.ID
	}
	out.Transitions = transitions
	return nil
}

// ZoneVisitsAnalyzer implements the zone_visits skill: every raw visit of
// every landmark to every zone
type ZoneVisitsAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewZoneVisitsAnalyzer creates a new zone visits analyzer
func NewZoneVisitsAnalyzer() analysis.Analyzer {
	return &ZoneVisitsAnalyzer{BaseAnalyzer: analysis.NewBaseAnalyzer(SkillZoneVisits)}
}

func (a *ZoneVisitsAnalyzer) Analyze(ctx context.Context, s *analysis.Session, out *models.SubjectResult) error {
	if err := OptionsFromParams(s.Params).Validate(); err != nil {
		return err
	}

	visits := []models.LandmarkVisits{}
	for _, landmark := range classify.Landmarks(s.Rows) {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, zoneID := range s.Layout.ZoneIDs() {
			list, err := LandmarkVisits(s.Rows, landmark, zoneID, s.Params.FPS)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				continue
			}
			visits = append(visits, models.LandmarkVisits{Landmark: landmark, ZoneID: zoneID, Visits: list})
		}
	}
	out.Visits = visits
	return nil
}

// Register the analyzers
func init() {
	analysis.RegisterAnalyzer(SkillZoneSummary, NewZoneSummaryAnalyzer)
	analysis.RegisterAnalyzer(SkillZoneTransitions, NewZoneTransitionsAnalyzer)
	analysis.RegisterAnalyzer(SkillZoneVisits, NewZoneVisitsAnalyzer)
}
