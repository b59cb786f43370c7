package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// excelEpoch is day zero of the 1900 date system as spreadsheet tools count it
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// NumberPolicy turns dirty spreadsheet values into float64.
// Clean never fails; anything it cannot read yields Fallback.
type NumberPolicy struct {
	Fallback float64
}

// DefaultNumberPolicy falls back to zero
func DefaultNumberPolicy() NumberPolicy {
	return NumberPolicy{Fallback: 0}
}

// Clean converts v using, in order:
//
//	numbers pass through
//	date/time values near the 1899/1900 epoch become their serial number
//	"1.234,56" is Brazilian notation
//	"1234,56" uses a decimal comma
//	"1.234" with three digits after the last dot is a thousands separator
//	anything else is parsed as a plain decimal
func (p NumberPolicy) Clean(v any) float64 {
	switch x := v.(type) {
	case nil:
		return p.Fallback
	case float64:
		return p.finite(x)
	case float32:
		return p.finite(float64(x))
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case uint:
		return float64(x)
	case uint64:
		return float64(x)
	case uint32:
		return float64(x)
	case time.Time:
		return p.fromTime(x)
	case string:
		return p.fromText(x)
	case fmt.Stringer:
		return p.fromText(x.String())
	default:
		return p.fromText(fmt.Sprint(x))
	}
}

func (p NumberPolicy) finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return p.Fallback
	}
	return f
}

// fromTime reverses the editor artifact that renders a plain number as a
// timestamp a few hundred days after 1899-12-30.
func (p NumberPolicy) fromTime(t time.Time) float64 {
	if t.IsZero() || t.Year() > 1900 {
		return p.Fallback
	}

	t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	days := int64(midnight.Sub(excelEpoch) / (24 * time.Hour))
	seconds := t.Sub(midnight).Seconds()

	return float64(days) + seconds/86400
}

func (p NumberPolicy) fromText(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), "R$", "")

	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)

	if s == "" || s == "-" {
		return p.Fallback
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	case hasDot:
		if len(s)-strings.LastIndex(s, ".")-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return p.Fallback
	}
	return p.finite(f)
}
