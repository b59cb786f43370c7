package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// sheetReader recovers typed values from raw cell text using the cell's
// type and number format.
type sheetReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newSheetReader(f *excelize.File, sheet string) *sheetReader {
	r := &sheetReader{
		f:          f,
		sheet:      sheet,
		dateStyles: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}
	return r
}

// value returns float64 for numeric cells, time.Time for date-formatted
// numeric cells and the raw text otherwise. Empty cells are nil.
func (r *sheetReader) value(col, row int, raw string) any {
	if col < 0 || raw == "" {
		return nil
	}

	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return raw
	}

	typ, err := r.f.GetCellType(r.sheet, cell)
	if err != nil {
		return raw
	}
	if typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset {
		return raw
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}

	if r.isDateCell(cell) {
		if t, err := excelize.ExcelDateToTime(n, r.date1904); err == nil {
			return t
		}
	}
	return n
}

// firstSerial1901 is the serial of 1901-01-01 in the 1900 date system.
const firstSerial1901 = 367

// number reads a quantity column. A date-styled cell below the first 1901
// serial keeps the number it stores, whatever the workbook's date system.
func (r *sheetReader) number(col, row int, raw string) any {
	v := r.value(col, row, raw)
	if _, ok := v.(time.Time); !ok {
		return v
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil && n < firstSerial1901 {
		return n
	}
	return v
}

// date reads the order date; any numeric cell in the date column is a serial
func (r *sheetReader) date(col, row int, raw string) (time.Time, bool) {
	switch v := r.value(col, row, raw).(type) {
	case float64:
		return fromSerial(v, r.date1904)
	default:
		return ParseDate(v)
	}
}

func (r *sheetReader) isDateCell(cell string) bool {
	idx, err := r.f.GetCellStyle(r.sheet, cell)
	if err != nil || idx == 0 {
		return false
	}
	if isDate, ok := r.dateStyles[idx]; ok {
		return isDate
	}

	isDate := false
	if style, err := r.f.GetStyle(idx); err == nil && style != nil {
		isDate = isDateNumFmt(style.NumFmt)
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	r.dateStyles[idx] = isDate
	return isDate
}

// isDateNumFmt reports whether a built-in number format id renders a date or time
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

var (
	quotedLiteral = regexp.MustCompile(`"[^"]*"`)
	bracketed     = regexp.MustCompile(`\[[^\]]*\]`)
)

// isDateFormatCode reports whether a custom format code carries date or time tokens
func isDateFormatCode(code string) bool {
	code = quotedLiteral.ReplaceAllString(code, "")
	code = bracketed.ReplaceAllString(code, "")
	code = strings.ToLower(code)
	if code == "general" || code == "@" {
		return false
	}
	return strings.ContainsAny(code, "dmyhs")
}
