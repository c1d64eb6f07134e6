package export

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/taitdna2/cholimex-display-checker/internal/model"
)

// Workbook is one output file: an ordered list of tables, one sheet
// each. Cells are written as plain values; styling stays with the
// office template downstream.
type Workbook struct {
	Filename string
	Tables   []model.Table
}

// Write renders the workbook under dir and returns the written path.
func Write(dir string, wb Workbook) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "export: create output dir")
	}

	f := xlsx.NewFile()
	for _, table := range wb.Tables {
		sheet, err := f.AddSheet(table.Name)
		if err != nil {
			return "", eris.Wrapf(err, "export: add sheet %q", table.Name)
		}
		writeTable(sheet, table)
	}

	path := filepath.Join(dir, wb.Filename)
	if err := f.Save(path); err != nil {
		return "", eris.Wrapf(err, "export: save %s", path)
	}

	zap.L().Info("export: wrote workbook",
		zap.String("path", path),
		zap.Int("sheets", len(wb.Tables)),
	)
	return path, nil
}

func writeTable(sheet *xlsx.Sheet, table model.Table) {
	header := sheet.AddRow()
	for _, caption := range table.Columns {
		header.AddCell().SetString(caption)
	}
	for _, row := range table.Rows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}
}
