package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/xuri/excelize/v2"

	apperrors "kpicli/internal/errors"
	"kpicli/pkg/contracts/domain"
)

// Drop reasons reported in LoadStats and metrics
const (
	DropReasonDate      = "invalid_date"
	DropReasonOrderType = "order_type"
	DropReasonOrderID   = "order_id_range"
)

// LoadOptions controls how workbooks are read and filtered
type LoadOptions struct {
	// Sheet to read; empty means the first sheet
	Sheet string
	// AcceptedOrderType keeps only rows of this type when the column exists; empty disables
	AcceptedOrderType string
	// OrderIDMin and OrderIDMax bound numeric order ids; both zero disables
	OrderIDMin int64
	OrderIDMax int64
	Numbers    NumberPolicy
	// Progress receives a progress bar when non-nil
	Progress io.Writer
	Logger   *slog.Logger
}

// LoadStats describes what happened to the rows of one workbook
type LoadStats struct {
	Source          string
	RowsRead        int
	Loaded          int
	DroppedDate     int
	DroppedCategory int
	DroppedOrderID  int
}

// Dropped returns the dropped row counts keyed by reason, omitting zeros
func (s LoadStats) Dropped() map[string]int {
	out := make(map[string]int, 3)
	if s.DroppedDate > 0 {
		out[DropReasonDate] = s.DroppedDate
	}
	if s.DroppedCategory > 0 {
		out[DropReasonOrderType] = s.DroppedCategory
	}
	if s.DroppedOrderID > 0 {
		out[DropReasonOrderID] = s.DroppedOrderID
	}
	return out
}

// Loader reads order workbooks into cleaned records
type Loader struct {
	opts   LoadOptions
	logger *slog.Logger
}

// NewLoader creates a loader
func NewLoader(opts LoadOptions) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		opts:   opts,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// LoadDataset loads every workbook and returns the records sorted by date,
// then by sheet row. Duplicate paths are read once.
func (l *Loader) LoadDataset(ctx context.Context, paths ...string) ([]domain.OrderRecord, []LoadStats, error) {
	var (
		records []domain.OrderRecord
		stats   []LoadStats
		seen    = make(map[string]bool, len(paths))
	)

	for _, path := range paths {
		if path == "" || seen[filepath.Clean(path)] {
			continue
		}
		seen[filepath.Clean(path)] = true

		recs, st, err := l.LoadFile(ctx, path)
		stats = append(stats, st)
		if err != nil {
			return nil, stats, err
		}
		records = append(records, recs...)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].Row < records[j].Row
	})

	return records, stats, nil
}

// LoadFile reads one workbook. It fails when the date or value column is
// missing or when no row carries a readable date.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]domain.OrderRecord, LoadStats, error) {
	stats := LoadStats{Source: filepath.Base(path)}
	logger := l.logger.With(slog.String("file", stats.Source))

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, stats, apperrors.NewParsingError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()

	sheet, err := l.pickSheet(f)
	if err != nil {
		return nil, stats, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, stats, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}

	headerIdx := firstNonEmptyRow(rows)
	if headerIdx < 0 {
		return nil, stats, fmt.Errorf("%s: %w", stats.Source, apperrors.ErrNoValidDateRows)
	}

	cols, err := ResolveColumns(rows[headerIdx])
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", stats.Source, err)
	}

	for _, field := range []Field{FieldWeight, FieldArea} {
		if !cols.Has(field) {
			logger.Warn("Optional column not found, using zero", slog.String("field", string(field)))
		}
	}

	reader := newSheetReader(f, sheet)
	bar := l.newProgressBar(len(rows)-headerIdx-1, stats.Source)

	records := make([]domain.OrderRecord, 0, len(rows)-headerIdx-1)
	validDates := 0

	for i := headerIdx + 1; i < len(rows); i++ {
		if bar != nil {
			_ = bar.Add(1)
		}
		if (i-headerIdx)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		stats.RowsRead++

		dateRaw := cellText(row, cols.Date)
		date, ok := reader.date(cols.Date, i, dateRaw)
		if !ok {
			stats.DroppedDate++
			logger.Debug("Row dropped, unreadable date",
				slog.Int("row", i+1),
				slog.String("value", dateRaw))
			continue
		}
		validDates++

		orderType := cellText(row, cols.OrderType)
		if cols.Has(FieldOrderType) && !l.acceptsType(orderType) {
			stats.DroppedCategory++
			continue
		}

		orderID := cellText(row, cols.OrderID)
		if cols.Has(FieldOrderID) && !l.acceptsOrderID(orderID) {
			stats.DroppedOrderID++
			continue
		}

		records = append(records, domain.OrderRecord{
			Source:    stats.Source,
			Row:       i + 1,
			OrderID:   orderID,
			OrderType: orderType,
			Date:      date,
			Value:     l.opts.Numbers.Clean(reader.number(cols.Value, i, cellText(row, cols.Value))),
			WeightKg:  l.opts.Numbers.Clean(reader.number(cols.Weight, i, cellText(row, cols.Weight))),
			AreaM2:    l.opts.Numbers.Clean(reader.number(cols.Area, i, cellText(row, cols.Area))),
		})
	}

	if bar != nil {
		_ = bar.Finish()
	}

	stats.Loaded = len(records)

	if validDates == 0 {
		return nil, stats, fmt.Errorf("%s: %w", stats.Source, apperrors.ErrNoValidDateRows)
	}

	logger.Info("Workbook loaded",
		slog.String("sheet", sheet),
		slog.Int("rows_read", stats.RowsRead),
		slog.Int("records", stats.Loaded),
		slog.Int("dropped_date", stats.DroppedDate),
		slog.Int("dropped_category", stats.DroppedCategory),
		slog.Int("dropped_order_id", stats.DroppedOrderID))

	return records, stats, nil
}

func (l *Loader) pickSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", apperrors.NewNotFoundError("worksheet")
	}
	if l.opts.Sheet == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(l.opts.Sheet)) {
			return s, nil
		}
	}
	return "", apperrors.NewNotFoundError(fmt.Sprintf("sheet %q", l.opts.Sheet)).
		WithContext("sheets", sheets)
}

func (l *Loader) acceptsType(orderType string) bool {
	if l.opts.AcceptedOrderType == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(orderType), strings.TrimSpace(l.opts.AcceptedOrderType))
}

func (l *Loader) acceptsOrderID(id string) bool {
	if l.opts.OrderIDMin == 0 && l.opts.OrderIDMax == 0 {
		return true
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(id), 64)
	if err != nil || math.IsNaN(n) {
		return false
	}
	if n < float64(l.opts.OrderIDMin) {
		return false
	}
	if l.opts.OrderIDMax > 0 && n > float64(l.opts.OrderIDMax) {
		return false
	}
	return true
}

func (l *Loader) newProgressBar(total int, description string) *progressbar.ProgressBar {
	if l.opts.Progress == nil || total <= 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(l.opts.Progress),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func firstNonEmptyRow(rows [][]string) int {
	for i, row := range rows {
		if !isEmptyRow(row) {
			return i
		}
	}
	return -1
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cellText(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
