package domain

import (
	"time"
)

// DateLayout is the dd/mm/yyyy format used by every document and CLI argument.
const DateLayout = "02/01/2006"

// OrderRecord represents one cleaned row of the order spreadsheet.
// Date is truncated to midnight UTC; numeric fields are already normalized.
type OrderRecord struct {
	Source    string    `json:"source"`
	Row       int       `json:"row"`
	OrderID   string    `json:"order_id,omitempty"`
	OrderType string    `json:"order_type,omitempty"`
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
	WeightKg  float64   `json:"weight_kg"`
	AreaM2    float64   `json:"area_m2"`
}

// Window is a closed date interval [Start, End].
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow builds a window from two dates, dropping any time-of-day.
func NewWindow(start, end time.Time) Window {
	return Window{Start: TruncateDay(start), End: TruncateDay(end)}
}

// Contains reports whether t falls inside the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	d := TruncateDay(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Valid reports whether the window is non-empty.
func (w Window) Valid() bool {
	return !w.Start.IsZero() && !w.End.IsZero() && !w.End.Before(w.Start)
}

// String formats the window as "dd/mm/yyyy - dd/mm/yyyy".
func (w Window) String() string {
	return w.Start.Format(DateLayout) + " - " + w.End.Format(DateLayout)
}

// Periods holds the current reporting window and its prior-year comparison.
type Periods struct {
	Reference time.Time `json:"reference"`
	Current   Window    `json:"current"`
	Prior     Window    `json:"prior"`
	// PriorFallback is set when the prior window fell back to the
	// first day of the month instead of the shifted start date.
	PriorFallback bool `json:"prior_fallback"`
}

// Metrics is the summary of one dataset over one window.
type Metrics struct {
	Orders     int     `json:"orders"`
	Value      float64 `json:"value"`
	WeightKg   float64 `json:"weight_kg"`
	AreaM2     float64 `json:"area_m2"`
	Ticket     float64 `json:"ticket"`
	PricePerKg float64 `json:"price_per_kg"`
	PricePerM2 float64 `json:"price_per_m2"`
}

// Comparison pairs current and prior-year metrics with their variances in percent.
type Comparison struct {
	Current        Metrics `json:"current"`
	Prior          Metrics `json:"prior"`
	ValueVariance  float64 `json:"value_variance"`
	OrdersVariance float64 `json:"orders_variance"`
	WeightVariance float64 `json:"weight_variance"`
	TicketVariance float64 `json:"ticket_variance"`
}

// DailyTotal is the per-day breakdown used by the audit CSV.
type DailyTotal struct {
	Date     time.Time
	Orders   int
	Value    float64
	WeightKg float64
	AreaM2   float64
}

// TruncateDay drops the time-of-day and normalizes to UTC.
func TruncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
