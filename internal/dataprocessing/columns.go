package dataprocessing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	apperrors "kpicli/internal/errors"
)

// Field is a logical column of the order sheet
type Field string

const (
	FieldDate      Field = "date"
	FieldValue     Field = "value"
	FieldWeight    Field = "weight"
	FieldArea      Field = "area"
	FieldOrderType Field = "order_type"
	FieldOrderID   Field = "order_id"
)

// columnSynonyms lists accepted headers per field, in priority order,
// already in normalized form.
var columnSynonyms = map[Field][]string{
	FieldDate:      {"DATA", "DT", "DATA PEDIDO", "DATA DO PEDIDO", "DATA EMISSAO"},
	FieldValue:     {"VALOR COM IPI", "VALOR TOTAL", "VALOR", "VLR COM IPI", "TOTAL COM IPI"},
	FieldWeight:    {"KG", "PESO", "PESO KG", "KG TOTAL", "TOTAL KG"},
	FieldArea:      {"TOTAL M2", "M2", "AREA", "AREA M2"},
	FieldOrderType: {"TIPO DE PEDIDO", "TIPO PEDIDO", "TIPO"},
	FieldOrderID:   {"PEDIDO", "NUMERO PEDIDO", "NO PEDIDO", "N PEDIDO", "NUM PEDIDO"},
}

var requiredFields = []Field{FieldDate, FieldValue}

// ColumnMap holds the zero-based column index of each field, -1 when absent
type ColumnMap struct {
	Date      int
	Value     int
	Weight    int
	Area      int
	OrderType int
	OrderID   int
}

// Has reports whether the field was found
func (m ColumnMap) Has(f Field) bool {
	return m.index(f) >= 0
}

func (m ColumnMap) index(f Field) int {
	switch f {
	case FieldDate:
		return m.Date
	case FieldValue:
		return m.Value
	case FieldWeight:
		return m.Weight
	case FieldArea:
		return m.Area
	case FieldOrderType:
		return m.OrderType
	case FieldOrderID:
		return m.OrderID
	}
	return -1
}

// NormalizeHeader upper-cases a header, strips accents and punctuation and
// collapses whitespace: " Nº  Pedido " becomes "NO PEDIDO", "M²" becomes "M2".
func NormalizeHeader(h string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, h)
	if err != nil {
		folded = h
	}

	folded = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return ' '
	}, folded)

	return strings.Join(strings.Fields(folded), " ")
}

// ResolveColumns maps a header row onto the logical fields.
// A missing date or value column yields a *MissingColumnError.
func ResolveColumns(header []string) (ColumnMap, error) {
	positions := make(map[string]int, len(header))
	present := make([]string, 0, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			continue
		}
		present = append(present, strings.TrimSpace(h))
		key := NormalizeHeader(h)
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	find := func(f Field) int {
		for _, synonym := range columnSynonyms[f] {
			if idx, ok := positions[synonym]; ok {
				return idx
			}
		}
		return -1
	}

	cols := ColumnMap{
		Date:      find(FieldDate),
		Value:     find(FieldValue),
		Weight:    find(FieldWeight),
		Area:      find(FieldArea),
		OrderType: find(FieldOrderType),
		OrderID:   find(FieldOrderID),
	}

	for _, f := range requiredFields {
		if !cols.Has(f) {
			return cols, &apperrors.MissingColumnError{Field: string(f), Present: present}
		}
	}

	return cols, nil
}
