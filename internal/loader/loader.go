package loader

import (
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/taitdna2/cholimex-display-checker/internal/config"
	"github.com/taitdna2/cholimex-display-checker/internal/model"
)

// ErrSchema: the file is not parseable as a snapshot, or the required
// identity columns are entirely absent. Fatal to that one file only.
var ErrSchema = eris.New("loader: snapshot schema")

// Source column captions as exported by the DMS. The sheet has a title
// row at index 0; the real header sits at row index 1.
const (
	colLevel           = "Mức đăng ký"
	colRegion          = "Miền"
	colSubRegion       = "Vùng"
	colDistributorID   = "Mã NPP"
	colDistributorName = "Tên NPP"
	colPeriod          = "Giai đoạn"
	colSalespersonID   = "Mã NVBH"
	colSalespersonName = "Tên NVBH"
	colCustomerID      = "Mã khách hàng"
	colCustomerName    = "Tên khách hàng"
	colSaleDay         = "Thứ bán hàng"
	colRoute           = "Tuyến"
	colQuota           = "Số suất đăng kí"
	colSales           = "Doanh số tích lũy hiện tại"
)

// headerRowIndex is where the real header lives (zero-based).
const headerRowIndex = 1

// requiredColumns must all be present for a snapshot to be usable.
// Route and sale-day are optional and default to empty.
var requiredColumns = []string{colLevel, colPeriod, colCustomerID, colQuota, colSales}

// ParseSnapshot parses one uploaded snapshot into normalized records
// plus the period label shared by every row of the file.
func ParseSnapshot(data []byte, cfg *config.Config) (model.Snapshot, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return model.Snapshot{}, eris.Wrap(ErrSchema, err.Error())
	}
	return parseFile(f, cfg)
}

// LoadFile reads and parses a snapshot from disk. The whole file is
// buffered; snapshots are small monthly extracts.
func LoadFile(path string, cfg *config.Config) (model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Snapshot{}, eris.Wrapf(err, "loader: read %s", path)
	}
	return ParseSnapshot(data, cfg)
}

func parseFile(f *xlsx.File, cfg *config.Config) (model.Snapshot, error) {
	if len(f.Sheets) == 0 {
		return model.Snapshot{}, eris.Wrap(ErrSchema, "no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) <= headerRowIndex {
		return model.Snapshot{}, eris.Wrap(ErrSchema, "no header row")
	}

	cols := indexHeader(rowToStrings(sheet.Rows[headerRowIndex]))
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return model.Snapshot{}, eris.Wrapf(ErrSchema, "missing column %q", name)
		}
	}

	var snap model.Snapshot
	for _, row := range sheet.Rows[headerRowIndex+1:] {
		cells := rowToStrings(row)
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[i])
		}

		customerID := get(colCustomerID)
		level := get(colLevel)
		if customerID == "" && level == "" {
			continue // trailing blank row
		}

		quota := parseNumber(get(colQuota))
		rec := model.Record{
			Level:           level,
			Program:         cfg.ResolveProgram(level),
			Region:          get(colRegion),
			SubRegion:       get(colSubRegion),
			DistributorID:   get(colDistributorID),
			DistributorName: get(colDistributorName),
			SalespersonID:   get(colSalespersonID),
			SalespersonName: get(colSalespersonName),
			CustomerID:      customerID,
			CustomerName:    get(colCustomerName),
			SaleDay:         get(colSaleDay),
			Route:           get(colRoute),
			Quota:           quota,
			Sales:           parseNumber(get(colSales)),
			Threshold:       cfg.BaseMinimum(level) * quota,
		}

		if snap.PeriodLabel == "" {
			snap.PeriodLabel = get(colPeriod)
		}
		snap.Records = append(snap.Records, rec)
	}

	if len(snap.Records) == 0 {
		return model.Snapshot{}, eris.Wrap(ErrSchema, "no data rows")
	}

	zap.L().Debug("loader: parsed snapshot",
		zap.String("period", snap.PeriodLabel),
		zap.Int("records", len(snap.Records)),
	)
	return snap, nil
}

// indexHeader maps trimmed header captions to their column index.
// The first occurrence wins when a caption repeats.
func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	return cols
}

// parseNumber coerces a cell to a float. DMS exports sometimes carry
// comma grouping; anything non-numeric becomes 0, matching how the
// registry treats blank quota/sales cells.
func parseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
