package loader

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/taitdna2/cholimex-display-checker/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseMinimums: map[string]float64{
			"NMCD":   150000,
			"XBM_MN": 36000,
		},
		Aliases: map[string]string{
			"M70": "XBM_MN",
		},
	}
}

// buildSnapshot renders rows into xlsx bytes the way the DMS exports
// them: a title row, then the header at row index 1, then data.
func buildSnapshot(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)

	title := sheet.AddRow()
	title.AddCell().SetString("BÁO CÁO TRƯNG BÀY")
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

var fullHeader = []string{
	"Mức đăng ký", "Miền", "Vùng", "Mã NPP", "Tên NPP", "Giai đoạn",
	"Mã NVBH", "Tên NVBH", "Mã khách hàng", "Tên khách hàng",
	"Thứ bán hàng", "Tuyến", "Số suất đăng kí", "Doanh số tích lũy hiện tại",
}

func TestParseSnapshot_FullRow(t *testing.T) {
	data := buildSnapshot(t, [][]string{
		fullHeader,
		{"NMCD", "HCM", "HCM1", "NPP01", "NPP Quận 1", "Tháng 11/2025",
			"NV01", "Trần A", "KH001", "Tạp hóa Bình", "Thứ 2", "T2-01", "3", "450000"},
	})

	snap, err := ParseSnapshot(data, testConfig())
	require.NoError(t, err)
	assert.Equal(t, "Tháng 11/2025", snap.PeriodLabel)
	require.Len(t, snap.Records, 1)

	r := snap.Records[0]
	assert.Equal(t, "NMCD", r.Level)
	assert.Equal(t, "NMCD", r.Program)
	assert.Equal(t, "HCM", r.Region)
	assert.Equal(t, "NPP01", r.DistributorID)
	assert.Equal(t, "KH001", r.CustomerID)
	assert.Equal(t, "Thứ 2", r.SaleDay)
	assert.Equal(t, 3.0, r.Quota)
	assert.Equal(t, 450000.0, r.Sales)
	// base 150000 times quota 3
	assert.Equal(t, 450000.0, r.Threshold)
}

func TestParseSnapshot_AliasResolvesThreshold(t *testing.T) {
	data := buildSnapshot(t, [][]string{
		fullHeader,
		{"M70", "HCM", "", "", "", "Tháng 11/2025", "", "", "KH001", "", "", "", "2", "50000"},
	})

	snap, err := ParseSnapshot(data, testConfig())
	require.NoError(t, err)
	r := snap.Records[0]
	assert.Equal(t, "M70", r.Level)
	assert.Equal(t, "XBM_MN", r.Program)
	assert.Equal(t, 72000.0, r.Threshold) // 36000 times 2
}

func TestParseSnapshot_UnknownLevelZeroThreshold(t *testing.T) {
	data := buildSnapshot(t, [][]string{
		fullHeader,
		{"MYSTERY", "", "", "", "", "11/2025", "", "", "KH001", "", "", "", "4", "100000"},
	})

	snap, err := ParseSnapshot(data, testConfig())
	require.NoError(t, err)
	assert.Zero(t, snap.Records[0].Threshold)
}

func TestParseSnapshot_NonNumericQuotaBecomesZero(t *testing.T) {
	data := buildSnapshot(t, [][]string{
		fullHeader,
		{"NMCD", "", "", "", "", "11/2025", "", "", "KH001", "", "", "", "n/a", "abc"},
	})

	snap, err := ParseSnapshot(data, testConfig())
	require.NoError(t, err)
	assert.Zero(t, snap.Records[0].Quota)
	assert.Zero(t, snap.Records[0].Sales)
	assert.Zero(t, snap.Records[0].Threshold)
}

func TestParseSnapshot_MissingOptionalColumnsTolerated(t *testing.T) {
	header := []string{"Mức đăng ký", "Giai đoạn", "Mã khách hàng", "Số suất đăng kí", "Doanh số tích lũy hiện tại"}
	data := buildSnapshot(t, [][]string{
		header,
		{"NMCD", "Tháng 11/2025", "KH001", "1", "150000"},
	})

	snap, err := ParseSnapshot(data, testConfig())
	require.NoError(t, err)
	r := snap.Records[0]
	assert.Empty(t, r.Route)
	assert.Empty(t, r.SaleDay)
	assert.Empty(t, r.DistributorID)
}

func TestParseSnapshot_MissingRequiredColumn(t *testing.T) {
	header := []string{"Mức đăng ký", "Giai đoạn", "Số suất đăng kí", "Doanh số tích lũy hiện tại"}
	data := buildSnapshot(t, [][]string{
		header,
		{"NMCD", "Tháng 11/2025", "1", "150000"},
	})

	_, err := ParseSnapshot(data, testConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestParseSnapshot_NotASpreadsheet(t *testing.T) {
	_, err := ParseSnapshot([]byte("not a workbook"), testConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestParseSnapshot_SkipsBlankTrailingRows(t *testing.T) {
	data := buildSnapshot(t, [][]string{
		fullHeader,
		{"NMCD", "", "", "", "", "11/2025", "", "", "KH001", "", "", "", "1", "0"},
		{"", "", "", "", "", "", "", "", "", "", "", "", "", ""},
	})

	snap, err := ParseSnapshot(data, testConfig())
	require.NoError(t, err)
	assert.Len(t, snap.Records, 1)
}
