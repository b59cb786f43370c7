package dataprocessing

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "kpicli/internal/errors"
	"kpicli/internal/shared/testutil"
)

func newTestLoader(t *testing.T, opts LoadOptions) (*Loader, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	opts.Logger = logger
	if opts.AcceptedOrderType == "" {
		opts.AcceptedOrderType = "NORMAL"
	}
	return NewLoader(opts), logs
}

func TestLoader_LoadFile(t *testing.T) {
	path := testutil.WriteWorkbook(t, "PEDIDOS ONDA.xlsx", testutil.OrderHeaders, [][]any{
		{30001, "Normal", testutil.Date(2026, 2, 1), 1000.50, 120.5, 10},
		{30002, " NORMAL ", "02/02/2026", "1.234,56", "80,25", "5,5"},
		{30003, "Teste", testutil.Date(2026, 2, 3), 999, 1, 1},
		{},
		{30004, "normal", "sem data", 50, 1, 1},
		{30005, "Normal", testutil.Date(2026, 2, 5), "R$ 2.000,00", "-", nil},
	})

	loader, logs := newTestLoader(t, LoadOptions{Numbers: DefaultNumberPolicy()})
	records, stats, err := loader.LoadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, LoadStats{
		Source:          "PEDIDOS ONDA.xlsx",
		RowsRead:        5,
		Loaded:          3,
		DroppedDate:     1,
		DroppedCategory: 1,
	}, stats)
	assert.Equal(t, map[string]int{DropReasonDate: 1, DropReasonOrderType: 1}, stats.Dropped())

	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, "30001", first.OrderID)
	assert.Equal(t, "Normal", first.OrderType)
	assert.True(t, testutil.Date(2026, 2, 1).Equal(first.Date))
	assert.InDelta(t, 1000.50, first.Value, 1e-9)
	assert.InDelta(t, 120.5, first.WeightKg, 1e-9)
	assert.InDelta(t, 10, first.AreaM2, 1e-9)

	second := records[1]
	assert.True(t, testutil.Date(2026, 2, 2).Equal(second.Date))
	assert.InDelta(t, 1234.56, second.Value, 1e-9)
	assert.InDelta(t, 80.25, second.WeightKg, 1e-9)
	assert.InDelta(t, 5.5, second.AreaM2, 1e-9)

	last := records[2]
	assert.Equal(t, 7, last.Row)
	assert.InDelta(t, 2000, last.Value, 1e-9)
	assert.Zero(t, last.WeightKg)
	assert.Zero(t, last.AreaM2)

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Workbook loaded")
	testutil.AssertLogContains(t, logs, slog.LevelDebug, "unreadable date")
}

func TestLoader_EpochArtifactInNumericColumn(t *testing.T) {
	path := testutil.WriteWorkbook(t, "artefato.xlsx", testutil.OrderHeaders, [][]any{
		{30001, "NORMAL", testutil.Date(2026, 2, 1), 100, time.Date(1900, time.October, 29, 1, 12, 0, 0, time.UTC), 0},
	})

	loader, _ := newTestLoader(t, LoadOptions{Numbers: DefaultNumberPolicy()})
	records, _, err := loader.LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.InDelta(t, 303.05, records[0].WeightKg, 1e-6)
}

func TestLoader_DateStyledNumbersIgnoreDateSystem(t *testing.T) {
	for _, date1904 := range []bool{false, true} {
		t.Run(map[bool]string{false: "1900", true: "1904"}[date1904], func(t *testing.T) {
			f := excelize.NewFile()
			defer f.Close()

			require.NoError(t, f.SetWorkbookProps(&excelize.WorkbookPropsOptions{Date1904: &date1904}))
			require.NoError(t, f.SetSheetRow("Sheet1", "A1", &testutil.OrderHeaders))
			require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{30001, "NORMAL", "01/02/2026", 100, 303.05, 46054}))

			style, err := f.NewStyle(&excelize.Style{NumFmt: 22})
			require.NoError(t, err)
			require.NoError(t, f.SetCellStyle("Sheet1", "E2", "F2", style))

			path := filepath.Join(t.TempDir(), "pedidos.xlsx")
			require.NoError(t, f.SaveAs(path))

			loader, _ := newTestLoader(t, LoadOptions{Numbers: DefaultNumberPolicy()})
			records, _, err := loader.LoadFile(context.Background(), path)
			require.NoError(t, err)
			require.Len(t, records, 1)

			assert.True(t, testutil.Date(2026, 2, 1).Equal(records[0].Date))
			assert.InDelta(t, 303.05, records[0].WeightKg, 1e-9)
			assert.Zero(t, records[0].AreaM2, "a real date in a quantity column is not a number")
		})
	}
}

func TestLoader_OptionalColumnsAndNoTypeFilter(t *testing.T) {
	path := testutil.WriteWorkbook(t, "minimo.xlsx", []any{"Data do Pedido", "Valor"}, [][]any{
		{"10/03/2026", "10,00"},
		{"11/03/2026", "20,00"},
	})

	loader, logs := newTestLoader(t, LoadOptions{Numbers: DefaultNumberPolicy()})
	records, stats, err := loader.LoadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Len(t, records, 2)
	assert.Equal(t, 2, stats.Loaded)
	assert.Empty(t, records[0].OrderID)
	testutil.AssertLogAttr(t, logs, "field", "weight")
	testutil.AssertLogAttr(t, logs, "field", "area")
}

func TestLoader_OrderIDRange(t *testing.T) {
	path := testutil.WriteWorkbook(t, "ids.xlsx", testutil.OrderHeaders, [][]any{
		{29999, "NORMAL", "01/02/2026", 10, 0, 0},
		{30000, "NORMAL", "01/02/2026", 20, 0, 0},
		{"ABC", "NORMAL", "01/02/2026", 30, 0, 0},
		{50000, "NORMAL", "01/02/2026", 40, 0, 0},
		{50001, "NORMAL", "01/02/2026", 50, 0, 0},
	})

	loader, _ := newTestLoader(t, LoadOptions{
		Numbers:    DefaultNumberPolicy(),
		OrderIDMin: 30000,
		OrderIDMax: 50000,
	})
	records, stats, err := loader.LoadFile(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "30000", records[0].OrderID)
	assert.Equal(t, "50000", records[1].OrderID)
	assert.Equal(t, 3, stats.DroppedOrderID)
}

func TestLoader_SheetSelection(t *testing.T) {
	path := testutil.WriteWorkbookSheet(t, "abas.xlsx", "Pedidos", testutil.OrderHeaders, [][]any{
		{1, "NORMAL", "01/02/2026", 10, 0, 0},
	})

	loader, _ := newTestLoader(t, LoadOptions{Sheet: "pedidos", Numbers: DefaultNumberPolicy()})
	records, _, err := loader.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	loader, _ = newTestLoader(t, LoadOptions{Sheet: "Resumo", Numbers: DefaultNumberPolicy()})
	_, _, err = loader.LoadFile(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Resumo" not found`)
}

func TestLoader_Failures(t *testing.T) {
	t.Run("missing required column", func(t *testing.T) {
		path := testutil.WriteWorkbook(t, "sem_valor.xlsx", []any{"DATA", "CLIENTE"}, [][]any{
			{"01/02/2026", "ACME"},
		})
		loader, _ := newTestLoader(t, LoadOptions{})
		_, _, err := loader.LoadFile(context.Background(), path)
		assert.True(t, apperrors.IsMissingColumn(err))
	})

	t.Run("no readable dates", func(t *testing.T) {
		path := testutil.WriteWorkbook(t, "sem_datas.xlsx", testutil.OrderHeaders, [][]any{
			{1, "NORMAL", "ontem", 10, 0, 0},
			{2, "NORMAL", "", 10, 0, 0},
		})
		loader, _ := newTestLoader(t, LoadOptions{})
		_, stats, err := loader.LoadFile(context.Background(), path)
		assert.True(t, errors.Is(err, apperrors.ErrNoValidDateRows))
		assert.Equal(t, 2, stats.DroppedDate)
	})

	t.Run("header only", func(t *testing.T) {
		path := testutil.WriteWorkbook(t, "vazio.xlsx", testutil.OrderHeaders, nil)
		loader, _ := newTestLoader(t, LoadOptions{})
		_, _, err := loader.LoadFile(context.Background(), path)
		assert.True(t, errors.Is(err, apperrors.ErrNoValidDateRows))
	})

	t.Run("missing file", func(t *testing.T) {
		loader, _ := newTestLoader(t, LoadOptions{})
		_, _, err := loader.LoadFile(context.Background(), "nao-existe.xlsx")
		require.Error(t, err)
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		loader, _ := newTestLoader(t, LoadOptions{})
		_, _, err := loader.LoadFile(ctx, "qualquer.xlsx")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoader_LoadDataset(t *testing.T) {
	current := testutil.WriteWorkbook(t, "PEDIDOS_2026.xlsx", testutil.OrderHeaders, [][]any{
		{40002, "NORMAL", "03/02/2026", 30, 0, 0},
		{40001, "NORMAL", "01/02/2026", 10, 0, 0},
	})
	prior := testutil.WriteWorkbook(t, "PEDIDOS_2025.xlsx", testutil.OrderHeaders, [][]any{
		{30001, "NORMAL", "02/02/2025", 5, 0, 0},
		{30002, "TESTE", "03/02/2025", 7, 0, 0},
	})

	var progress bytes.Buffer
	loader, _ := newTestLoader(t, LoadOptions{Numbers: DefaultNumberPolicy(), Progress: &progress})

	records, stats, err := loader.LoadDataset(context.Background(), current, prior, current, "")
	require.NoError(t, err)

	require.Len(t, stats, 2, "duplicate and empty paths are skipped")
	require.Len(t, records, 3)

	var ids []string
	for _, r := range records {
		ids = append(ids, r.OrderID)
	}
	assert.Equal(t, []string{"30001", "40001", "40002"}, ids)
	assert.NotEmpty(t, progress.String())
}
