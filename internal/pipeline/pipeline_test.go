package pipeline

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/taitdna2/cholimex-display-checker/internal/config"
	"github.com/taitdna2/cholimex-display-checker/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseMinimums: map[string]float64{
			"NMCD": 150000,
			"DHLM": 100000,
		},
		ProgramNames: map[string]string{
			"NMCD": "Trưng bày Nước mắm",
			"DHLM": "Trưng bày Dầu hào",
		},
		RegionMap: map[string][]string{
			"HCME":      {"HCM", "MD"},
			"MBAC":      {"MB"},
			"TOAN_QUOC": {config.RegionAll},
		},
	}
}

var snapshotHeader = []string{
	"Mức đăng ký", "Miền", "Vùng", "Mã NPP", "Tên NPP", "Giai đoạn",
	"Mã NVBH", "Tên NVBH", "Mã khách hàng", "Tên khách hàng",
	"Thứ bán hàng", "Tuyến", "Số suất đăng kí", "Doanh số tích lũy hiện tại",
}

type snapRow struct {
	level, region, customer, quota, sales string
}

func buildSnapshot(t *testing.T, periodLabel string, rows []snapRow) []byte {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)

	sheet.AddRow().AddCell().SetString("BÁO CÁO TRƯNG BÀY")
	header := sheet.AddRow()
	for _, caption := range snapshotHeader {
		header.AddCell().SetString(caption)
	}
	for _, r := range rows {
		row := sheet.AddRow()
		for _, cell := range []string{
			r.level, r.region, "V1", "NPP01", "NPP Một", periodLabel,
			"NV01", "Trần A", r.customer, "KH " + r.customer, "Thứ 2", "", r.quota, r.sales,
		} {
			row.AddCell().SetString(cell)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func runOpts(mode model.Mode, regions ...string) Options {
	return Options{
		Regions: regions,
		Mode:    mode,
		Now:     time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC),
	}
}

func findTable(t *testing.T, wb []model.Table, name string) model.Table {
	t.Helper()
	for _, table := range wb {
		if table.Name == name {
			return table
		}
	}
	t.Fatalf("no table %q", name)
	return model.Table{}
}

func TestRun_EndToEndFailShortfall(t *testing.T) {
	// base 150000, quota 2 both periods: threshold
	// 300000; sales 250000 then 100000 is a Fail, short by 200000.
	t1 := buildSnapshot(t, "Tháng 10/2025", []snapRow{
		{"NMCD", "HCM", "KH001", "2", "250000"},
	})
	t2 := buildSnapshot(t, "Tháng 11/2025", []snapRow{
		{"NMCD", "HCM", "KH001", "2", "100000"},
	})

	res, err := Run(testConfig(), []Input{
		{Name: "t1.xlsx", Data: t1},
		{Name: "t2.xlsx", Data: t2},
	}, runOpts(model.ModeFieldSales, "HCME"))
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Diagnostics)

	// Field-sales mode: one workbook, no removed-rows book.
	require.Len(t, res.Workbooks, 1)
	wb := res.Workbooks[0]
	assert.Equal(t, "TongHop_HCME_GSBH.xlsx", wb.Filename)

	kept := findTable(t, wb.Tables, "NMCD")
	require.Len(t, kept.Rows, 1)
	row := kept.Rows[0]
	assert.Equal(t, "Không đạt", row[len(row)-2])
	assert.Equal(t, "Thiếu: 200.000", row[len(row)-1])

	summary := findTable(t, wb.Tables, "BaoCao_TongHop")
	require.Len(t, summary.Rows, 1)
	// 2 slots registered, 2 failed, 100%.
	assert.Equal(t, []string{"1", "Trưng bày Nước mắm", "150000", "2", "2", "100.0%"}, summary.Rows[0])
}

func TestRun_MarketingProducesRemovedWorkbook(t *testing.T) {
	t1 := buildSnapshot(t, "Tháng 10/2025", []snapRow{
		{"NMCD", "HCM", "KH001", "2", "300000"},
		{"NMCD", "HCM", "KH002", "5", "750000"},
	})
	t2 := buildSnapshot(t, "Tháng 11/2025", []snapRow{
		{"NMCD", "HCM", "KH001", "2", "300000"},
		// KH002 gone, so withdrawn.
	})

	res, err := Run(testConfig(), []Input{
		{Name: "t1.xlsx", Data: t1},
		{Name: "t2.xlsx", Data: t2},
	}, runOpts(model.ModeMarketing, "HCME"))
	require.NoError(t, err)
	require.Len(t, res.Workbooks, 2)

	main := res.Workbooks[0]
	assert.Equal(t, "TongHop_HCME.xlsx", main.Filename)
	findTable(t, main.Tables, "BaoCao_Huy")

	removedWB := res.Workbooks[1]
	assert.Equal(t, "TongHop_Xoa_HCME.xlsx", removedWB.Filename)
	removed := findTable(t, removedWB.Tables, "NMCD")
	require.Len(t, removed.Rows, 1)
	assert.Equal(t, "XOA", removed.Rows[0][len(removed.Rows[0])-2])

	// Withdrawal summary counts KH002's 5 prior slots.
	huy := findTable(t, main.Tables, "BaoCao_Huy")
	require.Len(t, huy.Rows, 1)
	assert.Equal(t, "5", huy.Rows[0][2])
}

func TestRun_RegionSegmentation(t *testing.T) {
	t1 := buildSnapshot(t, "Tháng 10/2025", []snapRow{
		{"NMCD", "HCM", "KH001", "1", "150000"},
		{"NMCD", "MB", "KH002", "1", "150000"},
	})
	t2 := buildSnapshot(t, "Tháng 11/2025", []snapRow{
		{"NMCD", "HCM", "KH001", "1", "150000"},
		{"NMCD", "MB", "KH002", "1", "150000"},
	})

	res, err := Run(testConfig(), []Input{
		{Name: "t1.xlsx", Data: t1},
		{Name: "t2.xlsx", Data: t2},
	}, runOpts(model.ModeFieldSales, "HCME", "MBAC", "TOAN_QUOC"))
	require.NoError(t, err)
	require.Len(t, res.Workbooks, 3)

	assert.Len(t, findTable(t, res.Workbooks[0].Tables, "NMCD").Rows, 1)
	assert.Len(t, findTable(t, res.Workbooks[1].Tables, "NMCD").Rows, 1)
	assert.Len(t, findTable(t, res.Workbooks[2].Tables, "NMCD").Rows, 2)
}

func TestRun_SkipsSinglePeriodProgram(t *testing.T) {
	t1 := buildSnapshot(t, "Tháng 10/2025", []snapRow{{"NMCD", "HCM", "KH001", "1", "150000"}})
	t2 := buildSnapshot(t, "Tháng 11/2025", []snapRow{{"NMCD", "HCM", "KH001", "1", "150000"}})
	lone := buildSnapshot(t, "Tháng 11/2025", []snapRow{{"DHLM", "HCM", "KH009", "1", "100000"}})

	res, err := Run(testConfig(), []Input{
		{Name: "t1.xlsx", Data: t1},
		{Name: "t2.xlsx", Data: t2},
		{Name: "dhlm.xlsx", Data: lone},
	}, runOpts(model.ModeFieldSales, "HCME"))
	require.NoError(t, err)

	assert.Equal(t, []string{"DHLM"}, res.Skipped)
	assert.Empty(t, res.Diagnostics)
	// Only NMCD made it into the workbook.
	tables := res.Workbooks[0].Tables
	require.Len(t, tables, 2) // NMCD + summary
	assert.Equal(t, "NMCD", tables[0].Name)
}

func TestRun_BrokenFileIsolated(t *testing.T) {
	t1 := buildSnapshot(t, "Tháng 10/2025", []snapRow{{"NMCD", "HCM", "KH001", "1", "150000"}})
	t2 := buildSnapshot(t, "Tháng 11/2025", []snapRow{{"NMCD", "HCM", "KH001", "1", "150000"}})

	res, err := Run(testConfig(), []Input{
		{Name: "t1.xlsx", Data: t1},
		{Name: "t2.xlsx", Data: t2},
		{Name: "junk.xlsx", Data: []byte("not a workbook")},
	}, runOpts(model.ModeFieldSales, "HCME"))
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "junk.xlsx", res.Diagnostics[0].Scope)
	// NMCD still processed.
	assert.Len(t, findTable(t, res.Workbooks[0].Tables, "NMCD").Rows, 1)
}

func TestRun_UnknownRegionDiagnostic(t *testing.T) {
	t1 := buildSnapshot(t, "Tháng 10/2025", []snapRow{{"NMCD", "HCM", "KH001", "1", "150000"}})
	t2 := buildSnapshot(t, "Tháng 11/2025", []snapRow{{"NMCD", "HCM", "KH001", "1", "150000"}})

	res, err := Run(testConfig(), []Input{
		{Name: "t1.xlsx", Data: t1},
		{Name: "t2.xlsx", Data: t2},
	}, runOpts(model.ModeFieldSales, "NOWHERE", "HCME"))
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "NOWHERE", res.Diagnostics[0].Scope)
	require.Len(t, res.Workbooks, 1)
	assert.Equal(t, "TongHop_HCME_GSBH.xlsx", res.Workbooks[0].Filename)
}

func TestRun_NoRegionsFails(t *testing.T) {
	_, err := Run(testConfig(), []Input{{Name: "x", Data: nil}}, Options{Mode: model.ModeMarketing})
	assert.Error(t, err)
}

func TestRun_ThreePeriodNewEnrolleePasses(t *testing.T) {
	t0 := buildSnapshot(t, "Tháng 9/2025", []snapRow{
		{"NMCD", "HCM", "KH001", "1", "150000"},
	})
	t1 := buildSnapshot(t, "Tháng 10/2025", []snapRow{
		{"NMCD", "HCM", "KH001", "1", "0"},
		{"NMCD", "HCM", "KH002", "2", "0"}, // absent in T0, new enrollee
	})
	t2 := buildSnapshot(t, "Tháng 11/2025", []snapRow{
		{"NMCD", "HCM", "KH001", "1", "0"},
		{"NMCD", "HCM", "KH002", "2", "0"},
	})

	res, err := Run(testConfig(), []Input{
		{Name: "t0.xlsx", Data: t0},
		{Name: "t1.xlsx", Data: t1},
		{Name: "t2.xlsx", Data: t2},
	}, runOpts(model.ModeMarketing, "HCME"))
	require.NoError(t, err)

	kept := findTable(t, res.Workbooks[0].Tables, "NMCD")
	assert.Contains(t, kept.Columns, "Số suất đăng ký Tháng 9/2025")
	require.Len(t, kept.Rows, 2)

	outcomeByCustomer := map[string]string{}
	for _, row := range kept.Rows {
		// customer id sits before customer name, sale day; outcome 2nd last.
		outcomeByCustomer[row[7]] = row[len(row)-2]
	}
	assert.Equal(t, "Không đạt", outcomeByCustomer["KH001"])
	assert.Equal(t, "Đạt", outcomeByCustomer["KH002"])
}
