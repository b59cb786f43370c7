// Package period decides which dates a report covers.
package period

import (
	"fmt"
	"time"

	apperrors "kpicli/internal/errors"
	"kpicli/pkg/contracts/domain"
)

// Policy selects where the automatic current window starts
type Policy string

const (
	// PolicyMonthStart starts the current window on the first day of the reference month
	PolicyMonthStart Policy = "month_start"
	// PolicyFirstOrder starts it on the first order date inside the reference month
	PolicyFirstOrder Policy = "first_order"
)

// ParsePolicy validates a policy name; empty means PolicyMonthStart
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyMonthStart:
		return PolicyMonthStart, nil
	case PolicyFirstOrder:
		return PolicyFirstOrder, nil
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unknown period policy %q", s))
}

// Resolve computes the current window and its prior-year comparison.
//
// Without an override the current window ends on the latest order date in
// records. The prior window is the current one moved back a year; when no
// order falls exactly on the shifted start, or the shifted month is empty,
// it falls back to the first of that month through the latest order date
// not after the shifted end.
func Resolve(records []domain.OrderRecord, override *domain.Window, policy Policy) (domain.Periods, error) {
	if len(records) == 0 {
		return domain.Periods{}, apperrors.ErrNoValidDateRows
	}

	latest := records[0].Date
	for _, r := range records[1:] {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	latest = domain.TruncateDay(latest)

	var current domain.Window
	switch {
	case override != nil:
		current = domain.NewWindow(override.Start, override.End)
		if !current.Valid() {
			return domain.Periods{}, apperrors.NewValidationError(
				fmt.Sprintf("invalid window %s: start must not be after end", current))
		}
	case policy == PolicyFirstOrder:
		current = domain.Window{Start: firstOrderInMonth(records, latest), End: latest}
	default:
		current = domain.Window{Start: MonthStart(latest), End: latest}
	}

	prior, fallback := priorWindow(records, current)

	return domain.Periods{
		Reference:     current.End,
		Current:       current,
		Prior:         prior,
		PriorFallback: fallback,
	}, nil
}

func priorWindow(records []domain.OrderRecord, current domain.Window) (domain.Window, bool) {
	shifted := domain.Window{
		Start: ShiftYears(current.Start, -1),
		End:   ShiftYears(current.End, -1),
	}

	month := domain.Window{Start: MonthStart(shifted.Start), End: MonthEnd(shifted.Start)}

	onStart, inMonth := false, false
	for _, r := range records {
		d := domain.TruncateDay(r.Date)
		if d.Equal(shifted.Start) {
			onStart = true
		}
		if month.Contains(d) {
			inMonth = true
		}
	}
	if onStart && inMonth {
		return shifted, false
	}

	fallback := domain.Window{Start: month.Start, End: shifted.End}
	var latest time.Time
	for _, r := range records {
		d := domain.TruncateDay(r.Date)
		if fallback.Contains(d) && d.After(latest) {
			latest = d
		}
	}
	if !latest.IsZero() {
		fallback.End = latest
	}
	return fallback, true
}

func firstOrderInMonth(records []domain.OrderRecord, reference time.Time) time.Time {
	month := domain.Window{Start: MonthStart(reference), End: reference}
	first := reference
	for _, r := range records {
		d := domain.TruncateDay(r.Date)
		if month.Contains(d) && d.Before(first) {
			first = d
		}
	}
	return first
}

// MonthStart returns the first day of t's month
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last day of t's month
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// ShiftYears moves t by n years; Feb 29 lands on Feb 28 in non-leap years
func ShiftYears(t time.Time, n int) time.Time {
	year := t.Year() + n
	day := t.Day()
	if t.Month() == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, t.Month(), day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
