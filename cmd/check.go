package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taitdna2/cholimex-display-checker/internal/export"
	"github.com/taitdna2/cholimex-display-checker/internal/model"
	"github.com/taitdna2/cholimex-display-checker/internal/pipeline"
)

var (
	checkInputs   []string
	checkRegions  []string
	checkMode     string
	checkOutcomes []string
	checkRoutes   []string
	checkOut      string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Reconcile snapshot files and export report workbooks",
	Long: `Reads monthly snapshot files (at least two periods per program),
reconciles consecutive periods, classifies every enrollment and writes
one workbook per selected region.

Examples:
  # Marketing report for the south, all outcomes
  display-checker check --input 'snapshots/*.xlsx' --region HCME --out ./out

  # Field-sales report, failing rows only, Monday routes
  display-checker check --input 'snapshots/*.xlsx' --region TOAN_QUOC \
    --mode gsbh --outcome khong-dat --route "thứ 2" --out ./out`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		mode, ok := model.ParseMode(checkMode)
		if !ok {
			return eris.Errorf("check: unknown mode %q (use mkt or gsbh)", checkMode)
		}

		filters, err := parseFilters(checkOutcomes, checkRoutes)
		if err != nil {
			return err
		}

		inputs, err := collectInputs(checkInputs)
		if err != nil {
			return err
		}
		zap.L().Info("check: collected inputs", zap.Int("files", len(inputs)))

		res, err := pipeline.Run(cfg, inputs, pipeline.Options{
			Regions: checkRegions,
			Mode:    mode,
			Filters: filters,
		})
		if err != nil {
			return eris.Wrap(err, "check: run pipeline")
		}

		for _, wb := range res.Workbooks {
			path, err := export.Write(checkOut, wb)
			if err != nil {
				return eris.Wrap(err, "check: write workbook")
			}
			fmt.Println("wrote", path)
		}

		for _, p := range res.Skipped {
			fmt.Printf("skipped %s: fewer than two periods\n", p)
		}
		for _, d := range res.Diagnostics {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", d.Scope, d.Err)
		}
		return nil
	},
}

// collectInputs expands the --input arguments (paths or globs) and
// buffers every file.
func collectInputs(patterns []string) ([]pipeline.Input, error) {
	var paths []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, eris.Wrapf(err, "check: bad input pattern %q", p)
		}
		if len(matches) == 0 {
			// A literal path with no glob meta should fail loudly.
			matches = []string{p}
		}
		paths = append(paths, matches...)
	}

	inputs := make([]pipeline.Input, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "check: read %s", path)
		}
		inputs = append(inputs, pipeline.Input{Name: filepath.Base(path), Data: data})
	}
	return inputs, nil
}

// parseFilters builds the row filters from CLI tokens. --outcome all
// (or no --outcome flag) keeps every outcome.
func parseFilters(outcomes, routes []string) (model.Filters, error) {
	var filters model.Filters
	for _, tok := range outcomes {
		tok = strings.TrimSpace(tok)
		if tok == "" || tok == "all" {
			filters.Outcomes = nil
			break
		}
		o, ok := model.ParseOutcome(tok)
		if !ok {
			return filters, eris.Errorf("check: unknown outcome %q (dat, khong-dat, khong-xet, xoa, all)", tok)
		}
		if filters.Outcomes == nil {
			filters.Outcomes = map[model.Outcome]bool{}
		}
		filters.Outcomes[o] = true
	}
	filters.RouteTokens = routes
	return filters, nil
}

func init() {
	checkCmd.Flags().StringSliceVar(&checkInputs, "input", nil, "snapshot files or globs (required)")
	checkCmd.Flags().StringSliceVar(&checkRegions, "region", nil, "report regions (required, e.g. HCME,TOAN_QUOC)")
	checkCmd.Flags().StringVar(&checkMode, "mode", "mkt", "audience mode: mkt or gsbh")
	checkCmd.Flags().StringSliceVar(&checkOutcomes, "outcome", nil, "outcome filter: dat, khong-dat, khong-xet (default all)")
	checkCmd.Flags().StringSliceVar(&checkRoutes, "route", nil, "route/day tokens, case-insensitive substring match")
	checkCmd.Flags().StringVar(&checkOut, "out", ".", "output directory")
	_ = checkCmd.MarkFlagRequired("input")
	_ = checkCmd.MarkFlagRequired("region")
	rootCmd.AddCommand(checkCmd)
}
