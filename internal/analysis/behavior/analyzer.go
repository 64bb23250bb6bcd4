package behavior

import (
	"context"

	"github.com/jengzang/arena-zones-backend/internal/analysis"
	"github.com/jengzang/arena-zones-backend/internal/classify"
	"github.com/jengzang/arena-zones-backend/internal/models"
)

// SkillMovement is the registered name of the movement skill
const SkillMovement = "movement"

// MovementAnalyzer implements the movement skill
type MovementAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewMovementAnalyzer creates a new movement analyzer
func NewMovementAnalyzer() analysis.Analyzer {
	return &MovementAnalyzer{BaseAnalyzer: analysis.NewBaseAnalyzer(SkillMovement)}
}

// Analyze computes distance and speed for every landmark of the subject
func (a *MovementAnalyzer) Analyze(ctx context.Context, s *analysis.Session, out *models.SubjectResult) error {
	scale, _ := s.Layout.Scale()

	summaries := []models.MovementSummary{}
	for _, landmark := range classify.PositionLandmarks(s.Subject.Positions) {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := Movement(s.Subject.Positions, landmark, s.Params.FPS, scale)
		if err != nil {
			return err
		}
		summaries = append(summaries, m)
	}
	out.Movement = summaries
	return nil
}

// Register the analyzer
func init() {
	analysis.RegisterAnalyzer(SkillMovement, NewMovementAnalyzer)
}
