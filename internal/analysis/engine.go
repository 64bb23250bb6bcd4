package analysis

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jengzang/arena-zones-backend/internal/arena"
	"github.com/jengzang/arena-zones-backend/internal/classify"
	"github.com/jengzang/arena-zones-backend/internal/models"
)

// Analyzer is the interface that all analysis skills must implement
type Analyzer interface {
	// Analyze computes the skill for one subject and stores it in its section of out
	Analyze(ctx context.Context, s *Session, out *models.SubjectResult) error

	// GetName returns the name of the analyzer
	GetName() string
}

// Session is the input of every skill for one subject. The layout is shared
// read-only between sessions; rows are classified once per subject.
type Session struct {
	Layout  *arena.Layout
	Subject models.Subject
	Rows    []models.FrameMembership
	Params  models.AnalysisParams
}

// NewSession classifies the subject's positions against the layout
func NewSession(layout *arena.Layout, subject models.Subject, params models.AnalysisParams) *Session {
	return &Session{
		Layout:  layout,
		Subject: subject,
		Rows:    classify.Classify(subject.Positions, layout),
		Params:  params,
	}
}

// BaseAnalyzer provides common functionality for all analyzers
type BaseAnalyzer struct {
	Name string
}

// NewBaseAnalyzer creates a new base analyzer
func NewBaseAnalyzer(name string) *BaseAnalyzer {
	return &BaseAnalyzer{Name: name}
}

// GetName returns the analyzer name
func (a *BaseAnalyzer) GetName() string {
	return a.Name
}

// AnalyzerFactory is a function that creates an analyzer instance
type AnalyzerFactory func() Analyzer

// AnalyzerRegistry maps skill names to analyzer factories
var AnalyzerRegistry = make(map[string]AnalyzerFactory)

// RegisterAnalyzer registers an analyzer factory for a skill name.
// It is meant to be called from init functions only.
func RegisterAnalyzer(skillName string, factory AnalyzerFactory) {
	AnalyzerRegistry[skillName] = factory
}

// GetAnalyzer retrieves an analyzer instance for a skill name
func GetAnalyzer(skillName string) Analyzer {
	factory, ok := AnalyzerRegistry[skillName]
	if !ok {
		return nil
	}
	return factory()
}

// IsKnownSkill checks if a skill has been registered
func IsKnownSkill(skillName string) bool {
	_, ok := AnalyzerRegistry[skillName]
	return ok
}

// Skills lists the registered skill names in alphabetical order
func Skills() []string {
	names := make([]string, 0, len(AnalyzerRegistry))
	for name := range AnalyzerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the skills in order for one session
func Run(ctx context.Context, s *Session, skills []string) (models.SubjectResult, error) {
	out := models.SubjectResult{SubjectID: s.Subject.ID, Samples: len(s.Subject.Positions)}
	for _, name := range skills {
		if err := ctx.Err(); err != nil {
			return models.SubjectResult{}, err
		}
		analyzer := GetAnalyzer(name)
		if analyzer == nil {
			return models.SubjectResult{}, fmt.Errorf("unknown skill %q: %w", name, models.ErrInvalidArgument)
		}
		if err := analyzer.Analyze(ctx, s, &out); err != nil {
			return models.SubjectResult{}, fmt.Errorf("skill %s failed for subject %s: %w", name, s.Subject.ID, err)
		}
	}
	return out, nil
}

// RunBatch runs the skills over every subject with at most limit subjects in
// flight. Results keep the order of subjects. The first failure cancels the
// remaining subjects and no partial results are returned.
func RunBatch(ctx context.Context, layout *arena.Layout, subjects []models.Subject, skills []string, params models.AnalysisParams, limit int) ([]models.SubjectResult, error) {
	if len(skills) == 0 {
		return nil, fmt.Errorf("no skills requested: %w", models.ErrInvalidArgument)
	}
	for _, name := range skills {
		if !IsKnownSkill(name) {
			return nil, fmt.Errorf("unknown skill %q: %w", name, models.ErrInvalidArgument)
		}
	}
	if limit <= 0 {
		limit = 1
	}

	results := make([]models.SubjectResult, len(subjects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, subject := range subjects {
		i, subject := i, subject
		g.Go(func() error {
			res, err := Run(gctx, NewSession(layout, subject, params), skills)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
