// Package kpi computes the commercial indicators for a window and compares
// two windows.
package kpi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "kpicli/internal/errors"
	"kpicli/pkg/contracts/domain"
)

// CountMode defines what one "order" is
type CountMode string

const (
	// CountRows counts every spreadsheet row as one order
	CountRows CountMode = "rows"
	// CountDistinct counts distinct order ids; rows without an id count individually
	CountDistinct CountMode = "distinct"
)

// ParseCountMode validates a count mode name; empty means CountRows
func ParseCountMode(s string) (CountMode, error) {
	switch CountMode(s) {
	case "", CountRows:
		return CountRows, nil
	case CountDistinct:
		return CountDistinct, nil
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unknown count mode %q", s))
}

// Decimal places applied to every published figure
const (
	MoneyPlaces    int32 = 2
	QuantityPlaces int32 = 2
	VariancePlaces int32 = 1
)

// Options tunes aggregation
type Options struct {
	CountMode CountMode
}

// Summarize aggregates the records inside window (both ends inclusive)
func Summarize(records []domain.OrderRecord, window domain.Window, opts Options) domain.Metrics {
	var (
		value, kg, m2 float64
		rows          int
		ids           = make(map[string]struct{})
		anonymous     int
	)

	for _, r := range records {
		if !window.Contains(r.Date) {
			continue
		}
		rows++
		value += r.Value
		kg += r.WeightKg
		m2 += r.AreaM2

		if id := strings.TrimSpace(r.OrderID); id != "" {
			ids[id] = struct{}{}
		} else {
			anonymous++
		}
	}

	orders := rows
	if opts.CountMode == CountDistinct {
		orders = len(ids) + anonymous
	}

	return domain.Metrics{
		Orders:     orders,
		Value:      Round(value, MoneyPlaces),
		WeightKg:   Round(kg, QuantityPlaces),
		AreaM2:     Round(m2, QuantityPlaces),
		Ticket:     Round(ratio(value, float64(orders)), MoneyPlaces),
		PricePerKg: Round(ratio(value, kg), MoneyPlaces),
		PricePerM2: Round(ratio(value, m2), MoneyPlaces),
	}
}

// Compare summarizes both periods and computes the variances
func Compare(records []domain.OrderRecord, periods domain.Periods, opts Options) domain.Comparison {
	current := Summarize(records, periods.Current, opts)
	prior := Summarize(records, periods.Prior, opts)

	return domain.Comparison{
		Current:        current,
		Prior:          prior,
		ValueVariance:  Variance(current.Value, prior.Value),
		OrdersVariance: Variance(float64(current.Orders), float64(prior.Orders)),
		WeightVariance: Variance(current.WeightKg, prior.WeightKg),
		TicketVariance: Variance(current.Ticket, prior.Ticket),
	}
}

// Variance is the percent change from prior to current, rounded to one
// decimal. A zero prior yields 0.
func Variance(current, prior float64) float64 {
	if prior == 0 {
		return 0
	}
	return Round((current/prior-1)*100, VariancePlaces)
}

// Round rounds half away from zero on the decimal representation of v
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// DailyBreakdown totals the records inside window per day, oldest first
func DailyBreakdown(records []domain.OrderRecord, window domain.Window) []domain.DailyTotal {
	byDay := make(map[int64]*domain.DailyTotal)

	for _, r := range records {
		if !window.Contains(r.Date) {
			continue
		}
		d := domain.TruncateDay(r.Date)
		total, ok := byDay[d.Unix()]
		if !ok {
			total = &domain.DailyTotal{Date: d}
			byDay[d.Unix()] = total
		}
		total.Orders++
		total.Value += r.Value
		total.WeightKg += r.WeightKg
		total.AreaM2 += r.AreaM2
	}

	out := make([]domain.DailyTotal, 0, len(byDay))
	for _, total := range byDay {
		total.Value = Round(total.Value, MoneyPlaces)
		total.WeightKg = Round(total.WeightKg, QuantityPlaces)
		total.AreaM2 = Round(total.AreaM2, QuantityPlaces)
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	return out
}
