package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jengzang/arena-zones-backend/internal/analysis"
	_ "github.com/jengzang/arena-zones-backend/internal/analysis/behavior"
	"github.com/jengzang/arena-zones-backend/internal/analysis/temporal"
	"github.com/jengzang/arena-zones-backend/internal/arena"
	"github.com/jengzang/arena-zones-backend/internal/models"
)

type analyzeOptions struct {
	arenaFile      string
	positionFiles  []string
	skills         []string
	fps            float64
	minDuration    float64
	includeOutside bool
	parallel       int
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "zonecli",
		Short:         "Offline arena zone analysis of tracked positions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newAnalyzeCmd(out), newGeometryCmd(out))
	return rootCmd
}

func newAnalyzeCmd(out io.Writer) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run analysis skills over one or more position files",
		Long: "Each positions file is a JSON array of {frame, time, landmark, x, y} samples and becomes\n" +
			"one subject named after the file. Missing coordinates are null.",
		RunE: func(c *cobra.Command, args []string) error {
			return runAnalyze(c.Context(), opts, out)
		},
	}

	cmd.Flags().StringVarP(&opts.arenaFile, "arena", "a", "", "arena description (.yaml, .yml or .json)")
	cmd.Flags().StringSliceVarP(&opts.positionFiles, "positions", "p", nil, "positions file, repeatable")
	cmd.Flags().StringSliceVar(&opts.skills, "skills", []string{temporal.SkillZoneSummary, temporal.SkillZoneTransitions}, "skills to run")
	cmd.Flags().Float64Var(&opts.fps, "fps", 30, "frames per second of the recording")
	cmd.Flags().Float64Var(&opts.minDuration, "min-duration", 0, "shortest visit in seconds counted as an entry")
	cmd.Flags().BoolVar(&opts.includeOutside, "include-outside", false, "count moves through the outside label as transitions")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 4, "subjects analysed at once")
	_ = cmd.MarkFlagRequired("arena")
	_ = cmd.MarkFlagRequired("positions")
	return cmd
}

func newGeometryCmd(out io.Writer) *cobra.Command {
	var arenaFile string

	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Print the resolved zone shapes of an arena",
		RunE: func(c *cobra.Command, args []string) error {
			layout, err := loadLayout(arenaFile)
			if err != nil {
				return err
			}
			for _, w := range layout.Warnings() {
				log.Printf("warning: %s", w)
			}
			return writeJSON(out, layout.Zones())
		},
	}
	cmd.Flags().StringVarP(&arenaFile, "arena", "a", "", "arena description (.yaml, .yml or .json)")
	_ = cmd.MarkFlagRequired("arena")
	return cmd
}

func loadLayout(path string) (*arena.Layout, error) {
	_, layout, err := arena.LoadFile(path)
	return layout, err
}

func loadSubject(path string) (models.Subject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Subject{}, fmt.Errorf("failed to read positions: %w", err)
	}
	var positions []models.PositionSample
	if err := json.Unmarshal(data, &positions); err != nil {
		return models.Subject{}, fmt.Errorf("failed to parse positions %s: %w", path, err)
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return models.Subject{ID: id, Positions: positions}, nil
}

func runAnalyze(ctx context.Context, opts analyzeOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	layout, err := loadLayout(opts.arenaFile)
	if err != nil {
		return err
	}
	for _, w := range layout.Warnings() {
		log.Printf("warning: %s", w)
	}

	subjects := make([]models.Subject, 0, len(opts.positionFiles))
	for _, path := range opts.positionFiles {
		subj, err := loadSubject(path)
		if err != nil {
			return err
		}
		subjects = append(subjects, subj)
	}

	params := models.AnalysisParams{FPS: opts.fps, MinDuration: opts.minDuration, IncludeOutside: opts.includeOutside}
	if err := temporal.OptionsFromParams(params).Validate(); err != nil {
		return err
	}

	results, err := analysis.RunBatch(ctx, layout, subjects, opts.skills, params, opts.parallel)
	if err != nil {
		return err
	}
	return writeJSON(out, results)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
