package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"kpicli/pkg/contracts/domain"
)

// dayFirstLayouts are tried in order; day always precedes month
var dayFirstLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2-1-2006 15:04:05",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate reads an order date from a cell value. Numbers are spreadsheet
// serials in the 1900 date system. The result is truncated to the day.
// ok is false when the value is not a date.
func ParseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return domain.TruncateDay(x), true
	case float64:
		return fromSerial(x, false)
	case int:
		return fromSerial(float64(x), false)
	case int64:
		return fromSerial(float64(x), false)
	case string:
		return parseDateText(x)
	default:
		return time.Time{}, false
	}
}

func fromSerial(serial float64, date1904 bool) (time.Time, bool) {
	if serial <= 0 || math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return time.Time{}, false
	}
	return domain.TruncateDay(t), true
}

func parseDateText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.TruncateDay(t), true
		}
	}

	// Exports sometimes keep the serial as text
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return fromSerial(serial, false)
	}

	return time.Time{}, false
}
