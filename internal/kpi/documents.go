package kpi

import (
	"time"

	"kpicli/pkg/contracts/domain"
)

// BuildDocuments renders the dashboard documents for a comparison
func BuildDocuments(periods domain.Periods, cmp domain.Comparison) domain.Documents {
	return domain.Documents{
		Revenue: domain.RevenueDocument{
			Current:           cmp.Current.Value,
			Prior:             cmp.Prior.Value,
			Variance:          cmp.ValueVariance,
			CurrentDate:       formatDate(periods.Current.End),
			PriorDate:         formatDate(periods.Prior.End),
			CurrentMonthStart: formatDate(periods.Current.Start),
			PriorMonthStart:   formatDate(periods.Prior.Start),
		},
		OrderCount: domain.OrderCountDocument{
			Current:  cmp.Current.Orders,
			Prior:    cmp.Prior.Orders,
			Variance: cmp.OrdersVariance,
		},
		Weight: domain.ComparisonDocument{
			Current:  cmp.Current.WeightKg,
			Prior:    cmp.Prior.WeightKg,
			Variance: cmp.WeightVariance,
		},
		Ticket: domain.ComparisonDocument{
			Current:  cmp.Current.Ticket,
			Prior:    cmp.Prior.Ticket,
			Variance: cmp.TicketVariance,
		},
		AvgPrice: domain.AvgPriceDocument{
			Current: snapshot(cmp.Current, periods.Current.End),
			Prior:   snapshot(cmp.Prior, periods.Prior.End),
		},
	}
}

func snapshot(m domain.Metrics, date time.Time) domain.PriceSnapshot {
	return domain.PriceSnapshot{
		PricePerKg: m.PricePerKg,
		PricePerM2: m.PricePerM2,
		TotalKg:    m.WeightKg,
		TotalM2:    m.AreaM2,
		Date:       formatDate(date),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}
