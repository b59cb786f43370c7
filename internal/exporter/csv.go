package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"

	"kpicli/internal/files"
	"kpicli/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DailyHeaders are the columns of the daily audit CSV.
var DailyHeaders = []string{"data", "pedidos", "valor", "kg", "m2"}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	files *files.Manager
	// Comma is the field delimiter; ';' opens cleanly in pt-BR Excel.
	Comma rune
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(manager *files.Manager) *CSVWriter {
	if manager == nil {
		manager = files.NewManager(nil)
	}
	return &CSVWriter{files: manager, Comma: ';'}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// Render encodes headers and records into CSV bytes.
func (w *CSVWriter) Render(options WriteOptions) ([]byte, error) {
	var buf bytes.Buffer

	if options.BOMPrefix {
		buf.Write(utf8BOM)
	}

	writer := csv.NewWriter(&buf)
	writer.Comma = w.Comma

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV writes data to filePath atomically
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	data, err := w.Render(options)
	if err != nil {
		return err
	}
	return w.files.WriteFileAtomic(filePath, data)
}

// WriteDaily writes the per-day breakdown with a UTF-8 BOM.
func (w *CSVWriter) WriteDaily(filePath string, totals []domain.DailyTotal) error {
	records := make([][]string, 0, len(totals))
	for _, t := range totals {
		records = append(records, []string{
			formatDate(t.Date),
			formatInt(int64(t.Orders)),
			formatFloat(t.Value),
			formatFloat(t.WeightKg),
			formatFloat(t.AreaM2),
		})
	}

	return w.WriteCSV(filePath, WriteOptions{
		Headers:   DailyHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}
