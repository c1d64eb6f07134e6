package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/taitdna2/cholimex-display-checker/internal/config"
	"github.com/taitdna2/cholimex-display-checker/internal/export"
	"github.com/taitdna2/cholimex-display-checker/internal/loader"
	"github.com/taitdna2/cholimex-display-checker/internal/model"
	"github.com/taitdna2/cholimex-display-checker/internal/period"
	"github.com/taitdna2/cholimex-display-checker/internal/reconcile"
	"github.com/taitdna2/cholimex-display-checker/internal/report"
)

// Input is one uploaded snapshot, fully buffered.
type Input struct {
	Name string
	Data []byte
}

// Options selects regions, audience mode and row filters for a run.
type Options struct {
	Regions []string
	Mode    model.Mode
	Filters model.Filters
	// Now anchors bare-month period labels; zero means time.Now().
	Now time.Time
}

// Diagnostic records a per-file or per-program failure that did not
// abort the rest of the run.
type Diagnostic struct {
	Scope string
	Err   error
}

// Result is everything a run produced.
type Result struct {
	RunID       string
	Workbooks   []export.Workbook
	Diagnostics []Diagnostic
	// Skipped lists programs left out for lack of a second period.
	Skipped []string
}

// programResult is one program reconciled, deduplicated and filtered,
// before any region segmentation.
type programResult struct {
	program string
	labels  report.PeriodLabels
	kept    []model.ReconciledRow
	removed []model.ReconciledRow
}

// Run executes one full reconciliation: load every input, group by
// program, reconcile each group, then project and package per-region
// workbooks. A single file or program failing is reported as a
// diagnostic while the rest of the run continues.
func Run(cfg *config.Config, inputs []Input, opts Options) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	log := zap.L().With(zap.String("run_id", res.RunID))

	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if len(opts.Regions) == 0 {
		return res, eris.New("pipeline: no regions selected")
	}
	if len(inputs) == 0 {
		return res, eris.New("pipeline: no input files")
	}

	// Load every file; a broken file is excluded, not fatal.
	snaps := map[string]model.Snapshot{}
	for _, in := range inputs {
		snap, err := loader.ParseSnapshot(in.Data, cfg)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Scope: in.Name, Err: err})
			log.Warn("pipeline: excluding file", zap.String("file", in.Name), zap.Error(err))
			continue
		}
		snaps[in.Name] = snap
	}

	groups, ungrouped := period.GroupFiles(cfg, snaps, opts.Now)
	for name, err := range ungrouped {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Scope: name, Err: err})
	}

	var programs []programResult
	for _, g := range groups {
		pr, err := runProgram(g, opts)
		if err != nil {
			if eris.Is(err, period.ErrInsufficientPeriods) {
				res.Skipped = append(res.Skipped, g.Program)
				log.Info("pipeline: skipping program",
					zap.String("program", g.Program),
					zap.Int("periods", len(g.Files)),
				)
				continue
			}
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Scope: g.Program, Err: err})
			log.Warn("pipeline: program failed", zap.String("program", g.Program), zap.Error(err))
			continue
		}
		programs = append(programs, pr)
	}

	for _, region := range opts.Regions {
		wbs, err := buildRegion(cfg, region, programs, opts.Mode)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Scope: region, Err: err})
			continue
		}
		res.Workbooks = append(res.Workbooks, wbs...)
	}

	log.Info("pipeline: run complete",
		zap.Int("programs", len(programs)),
		zap.Int("workbooks", len(res.Workbooks)),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.Strings("skipped", res.Skipped),
	)
	return res, nil
}

// runProgram reconciles one program group and applies dedup plus the
// caller's outcome/route filters. Region segmentation happens later.
func runProgram(g period.Group, opts Options) (programResult, error) {
	sel, err := g.Select()
	if err != nil {
		return programResult{}, err
	}

	joined := reconcile.Reconcile(sel.Prior, sel.Current, sel.Earliest)
	kept, dupes := reconcile.Dedup(joined.Kept)
	kept = reconcile.ApplyFilters(kept, opts.Filters)

	labels := report.PeriodLabels{
		Prior:   sel.Prior.PeriodLabel,
		Current: sel.Current.PeriodLabel,
	}
	if sel.Earliest != nil {
		labels.Earliest = sel.Earliest.PeriodLabel
	}

	return programResult{
		program: g.Program,
		labels:  labels,
		kept:    kept,
		removed: append(joined.Removed, dupes...),
	}, nil
}

// buildRegion projects every program for one region and packages the
// result workbooks: the kept-rows book with summary sheets, plus the
// removed-rows book for Marketing runs.
func buildRegion(cfg *config.Config, region string, programs []programResult, mode model.Mode) ([]export.Workbook, error) {
	codes, wildcard, ok := cfg.SubRegions(region)
	if !ok {
		return nil, eris.Errorf("pipeline: unknown region %q", region)
	}

	var (
		keptTables    []model.Table
		removedTables []model.Table
		entries       []report.SummaryEntry
	)
	for _, pr := range programs {
		kept := reconcile.FilterRegion(pr.kept, codes, wildcard)
		removed := reconcile.FilterRegion(pr.removed, codes, wildcard)

		proj := report.Project(pr.program, kept, removed, pr.labels, mode)
		keptTables = append(keptTables, proj.Kept)
		removedTables = append(removedTables, proj.Removed)

		name := cfg.ProgramNames[pr.program]
		if name == "" {
			name = pr.program
		}
		entries = append(entries, report.Summarize(pr.program, name, cfg.BaseMinimums[pr.program], kept, removed))
	}

	main := export.Workbook{
		Filename: mainWorkbookName(region, mode),
		Tables:   keptTables,
	}
	if len(entries) > 0 {
		main.Tables = append(main.Tables, report.SummaryTable(entries))
		if mode == model.ModeMarketing {
			main.Tables = append(main.Tables, report.WithdrawalTable(entries))
		}
	}

	wbs := []export.Workbook{main}
	if mode == model.ModeMarketing {
		wbs = append(wbs, export.Workbook{
			Filename: fmt.Sprintf("TongHop_Xoa_%s.xlsx", region),
			Tables:   removedTables,
		})
	}
	return wbs, nil
}

func mainWorkbookName(region string, mode model.Mode) string {
	if mode == model.ModeFieldSales {
		return fmt.Sprintf("TongHop_%s_GSBH.xlsx", region)
	}
	return fmt.Sprintf("TongHop_%s.xlsx", region)
}
