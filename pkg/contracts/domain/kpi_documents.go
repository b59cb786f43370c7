package domain

// File names of the dashboard documents.
const (
	RevenueFile     = "kpi_faturamento.json"
	OrderCountFile  = "kpi_quantidade_pedidos.json"
	WeightTotalFile = "kpi_kg_total.json"
	TicketFile      = "kpi_ticket_medio.json"
	AvgPriceFile    = "kpi_preco_medio.json"
)

// RevenueDocument is kpi_faturamento.json.
type RevenueDocument struct {
	Current           float64 `json:"atual"`
	Prior             float64 `json:"ano_anterior"`
	Variance          float64 `json:"variacao"`
	CurrentDate       string  `json:"data_atual"`
	PriorDate         string  `json:"data_ano_anterior"`
	CurrentMonthStart string  `json:"inicio_mes"`
	PriorMonthStart   string  `json:"inicio_mes_anterior"`
}

// OrderCountDocument is kpi_quantidade_pedidos.json.
type OrderCountDocument struct {
	Current  int     `json:"atual"`
	Prior    int     `json:"ano_anterior"`
	Variance float64 `json:"variacao"`
}

// ComparisonDocument is the shape shared by kpi_kg_total.json and kpi_ticket_medio.json.
type ComparisonDocument struct {
	Current  float64 `json:"atual"`
	Prior    float64 `json:"ano_anterior"`
	Variance float64 `json:"variacao"`
}

// PriceSnapshot is one side of kpi_preco_medio.json.
type PriceSnapshot struct {
	PricePerKg float64 `json:"preco_medio_kg"`
	PricePerM2 float64 `json:"preco_medio_m2"`
	TotalKg    float64 `json:"total_kg"`
	TotalM2    float64 `json:"total_m2"`
	Date       string  `json:"data"`
}

// AvgPriceDocument is kpi_preco_medio.json.
type AvgPriceDocument struct {
	Current PriceSnapshot `json:"atual"`
	Prior   PriceSnapshot `json:"ano_anterior"`
}

// Documents is the full set published on every run.
type Documents struct {
	Revenue    RevenueDocument
	OrderCount OrderCountDocument
	Weight     ComparisonDocument
	Ticket     ComparisonDocument
	AvgPrice   AvgPriceDocument
}

// NamedDocument pairs a file name with its payload.
type NamedDocument struct {
	Name    string
	Payload any
}

// Ordered returns the documents in a fixed publication order.
func (d Documents) Ordered() []NamedDocument {
	return []NamedDocument{
		{Name: RevenueFile, Payload: d.Revenue},
		{Name: OrderCountFile, Payload: d.OrderCount},
		{Name: WeightTotalFile, Payload: d.Weight},
		{Name: TicketFile, Payload: d.Ticket},
		{Name: AvgPriceFile, Payload: d.AvgPrice},
	}
}
