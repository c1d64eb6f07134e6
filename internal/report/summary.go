package report

import (
	"fmt"
	"strconv"

	"github.com/taitdna2/cholimex-display-checker/internal/model"
)

// Sheet names for the per-region summary tables.
const (
	SummarySheetName    = "BaoCao_TongHop"
	WithdrawalSheetName = "BaoCao_Huy"
)

// SummaryEntry aggregates one program's result for the summary sheets.
type SummaryEntry struct {
	Program        string
	DisplayName    string
	BaseMinimum    float64
	TotalSlots     float64 // Σ current-period quota over kept rows
	FailedSlots    float64 // Σ current-period quota over Fail rows
	WithdrawnSlots float64 // Σ prior-period quota over Withdrawn rows
}

// FailRatio renders the failed/total ratio as a one-decimal percent,
// "0%" when nothing was registered.
func (e SummaryEntry) FailRatio() string {
	if e.TotalSlots <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", e.FailedSlots/e.TotalSlots*100)
}

// Summarize aggregates one program's kept and removed rows. Only rows
// actually classified Withdrawn count toward the withdrawal total;
// dedup casualties in the removed set do not.
func Summarize(program, displayName string, baseMinimum float64, kept, removed []model.ReconciledRow) SummaryEntry {
	e := SummaryEntry{
		Program:     program,
		DisplayName: displayName,
		BaseMinimum: baseMinimum,
	}
	for _, row := range kept {
		e.TotalSlots += row.Current.Quota
		if row.Outcome == model.OutcomeFail {
			e.FailedSlots += row.Current.Quota
		}
	}
	for _, row := range removed {
		if row.Outcome == model.OutcomeWithdrawn {
			e.WithdrawnSlots += row.Prior.Quota
		}
	}
	return e
}

// SummaryTable builds the per-region totals sheet.
func SummaryTable(entries []SummaryEntry) model.Table {
	t := model.Table{
		Name: SummarySheetName,
		Columns: []string{
			"STT",
			"Tên chương trình",
			"DOANH SỐ TỐI THIỂU PHÁT SINH/ SUẤT/ THÁNG (VND)",
			"TỔNG SỐ SUẤT TRƯNG BÀY",
			"SỐ SUẤT KHÔNG ĐẠT",
			"TỈ LỆ",
		},
	}
	for i, e := range entries {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			e.DisplayName,
			formatNumber(e.BaseMinimum),
			formatNumber(e.TotalSlots),
			formatNumber(e.FailedSlots),
			e.FailRatio(),
		})
	}
	return t
}

// WithdrawalTable builds the Marketing-only withdrawal counts sheet.
func WithdrawalTable(entries []SummaryEntry) model.Table {
	t := model.Table{
		Name: WithdrawalSheetName,
		Columns: []string{
			"STT",
			"Tên chương trình",
			"TỔNG SỐ SUẤT HỦY TRƯNG BÀY TRÊN HT DMS",
		},
	}
	for i, e := range entries {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			e.DisplayName,
			formatNumber(e.WithdrawnSlots),
		})
	}
	return t
}
