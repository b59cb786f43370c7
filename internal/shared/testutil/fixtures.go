package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// OrderHeaders mirrors the column layout of the commercial order export
var OrderHeaders = []any{"Nº PEDIDO", "TIPO DE PEDIDO", "DATA", "VALOR COM IPI", "KG", "TOTAL M²"}

// Date builds a UTC midnight date
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// WriteWorkbook writes a single-sheet workbook into a temp dir and returns its path.
// time.Time cells are stored as date-formatted serials, like a real export.
func WriteWorkbook(t *testing.T, name string, headers []any, rows [][]any) string {
	t.Helper()
	return WriteWorkbookSheet(t, name, "Sheet1", headers, rows)
}

// WriteWorkbookSheet is WriteWorkbook with an explicit sheet name
func WriteWorkbookSheet(t *testing.T, name, sheet string, headers []any, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}

	all := append([][]any{headers}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("write row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
