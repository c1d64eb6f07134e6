package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/taitdna2/cholimex-display-checker/internal/model"
)

// Display captions for the exported sheets.
const (
	capLevel           = "Mức đăng ký"
	capRegion          = "Miền"
	capSubRegion       = "Vùng"
	capDistributorID   = "Mã NPP"
	capDistributorName = "Tên NPP"
	capSalespersonID   = "Mã NVBH"
	capSalespersonName = "Tên NVBH"
	capCustomerID      = "Mã khách hàng"
	capCustomerName    = "Tên khách hàng"
	capSaleDay         = "Thứ bán hàng"
	capThreshold       = "Ngưỡng tối thiểu"
	capOutcome         = "Kết quả"
	capNote            = "Ghi chú"
)

// PeriodLabels carries the raw period labels for caption building.
// Earliest is empty when only two periods were reconciled.
type PeriodLabels struct {
	Earliest string
	Prior    string
	Current  string
}

func quotaCaption(label string) string { return "Số suất đăng ký " + label }
func salesCaption(label string) string { return "Doanh số tích lũy " + label }

// Projection is the export-ready pair of tables for one program.
type Projection struct {
	Kept    model.Table
	Removed model.Table
}

// Project selects, renames and orders the output columns for the
// audience mode and renders both the kept and removed row sets of one
// program. Fail rows get their note replaced with the computed
// shortfall against the current-period threshold.
func Project(program string, kept, removed []model.ReconciledRow, labels PeriodLabels, mode model.Mode) Projection {
	kept = sortRows(kept)
	removed = sortRows(removed)

	cols := columnsFor(mode, labels)
	return Projection{
		Kept:    model.Table{Name: program, Columns: captions(cols), Rows: renderRows(kept, cols, true)},
		Removed: model.Table{Name: program, Columns: captions(cols), Rows: renderRows(removed, cols, false)},
	}
}

// sortRows orders output by (distributor, salesperson, customer name)
// so a field supervisor reads their book top to bottom.
func sortRows(rows []model.ReconciledRow) []model.ReconciledRow {
	sorted := make([]model.ReconciledRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.DistributorID != b.DistributorID {
			return a.DistributorID < b.DistributorID
		}
		if a.SalespersonID != b.SalespersonID {
			return a.SalespersonID < b.SalespersonID
		}
		return a.CustomerName < b.CustomerName
	})
	return sorted
}

// column is one output column: its caption and how to render a cell.
type column struct {
	caption string
	render  func(model.ReconciledRow) string
}

func columnsFor(mode model.Mode, labels PeriodLabels) []column {
	identity := func(r model.ReconciledRow) model.Record { return r.Record }

	str := func(caption string, get func(model.Record) string) column {
		return column{caption: caption, render: func(r model.ReconciledRow) string { return get(identity(r)) }}
	}
	num := func(caption string, get func(model.ReconciledRow) float64) column {
		return column{caption: caption, render: func(r model.ReconciledRow) string { return formatNumber(get(r)) }}
	}

	var cols []column
	if mode == model.ModeFieldSales {
		cols = []column{
			str(capLevel, func(r model.Record) string { return r.Level }),
			str(capDistributorName, func(r model.Record) string { return r.DistributorName }),
		}
	} else {
		cols = []column{
			str(capLevel, func(r model.Record) string { return r.Level }),
			str(capRegion, func(r model.Record) string { return r.Region }),
			str(capSubRegion, func(r model.Record) string { return r.SubRegion }),
			str(capDistributorID, func(r model.Record) string { return r.DistributorID }),
			str(capDistributorName, func(r model.Record) string { return r.DistributorName }),
		}
	}

	cols = append(cols,
		str(capSalespersonID, func(r model.Record) string { return r.SalespersonID }),
		str(capSalespersonName, func(r model.Record) string { return r.SalespersonName }),
		str(capCustomerID, func(r model.Record) string { return r.CustomerID }),
		str(capCustomerName, func(r model.Record) string { return r.CustomerName }),
		str(capSaleDay, func(r model.Record) string { return r.SaleDay }),
	)

	// Marketing carries the T0 figures when three periods exist; the
	// field-sales view only ever shows the latest two pairs.
	if mode == model.ModeMarketing && labels.Earliest != "" {
		cols = append(cols,
			num(quotaCaption(labels.Earliest), func(r model.ReconciledRow) float64 {
				if r.Earliest == nil {
					return 0
				}
				return r.Earliest.Quota
			}),
			num(salesCaption(labels.Earliest), func(r model.ReconciledRow) float64 {
				if r.Earliest == nil {
					return 0
				}
				return r.Earliest.Sales
			}),
		)
	}

	cols = append(cols,
		num(quotaCaption(labels.Prior), func(r model.ReconciledRow) float64 { return r.Prior.Quota }),
		num(quotaCaption(labels.Current), func(r model.ReconciledRow) float64 { return r.Current.Quota }),
		num(salesCaption(labels.Prior), func(r model.ReconciledRow) float64 { return r.Prior.Sales }),
		num(salesCaption(labels.Current), func(r model.ReconciledRow) float64 { return r.Current.Sales }),
		num(capThreshold, func(r model.ReconciledRow) float64 { return r.Current.Threshold }),
		column{caption: capOutcome, render: func(r model.ReconciledRow) string { return r.Outcome.Label() }},
		column{caption: capNote, render: func(r model.ReconciledRow) string { return r.Rationale }},
	)
	return cols
}

func captions(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.caption
	}
	return out
}

// renderRows renders rows against the column set. withShortfall
// replaces Fail rows' note with the amount still owed against the
// current-period threshold; the removed sheet keeps raw rationales.
func renderRows(rows []model.ReconciledRow, cols []column, withShortfall bool) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if withShortfall && row.Outcome == model.OutcomeFail {
			remain := row.Current.Threshold - row.Current.Sales
			if remain < 0 {
				remain = 0
			}
			row.Rationale = fmt.Sprintf("Thiếu: %s", FormatMoney(remain))
		}
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = c.render(row)
		}
		out = append(out, cells)
	}
	return out
}

// formatNumber renders a figure cell: whole numbers without a decimal
// point, everything else in minimal form.
func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
