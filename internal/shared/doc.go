// Package shared holds helpers used by several packages of the KPI
// generator without belonging to any of them.
//
// The testutil subpackage provides:
//
//	- a buffered slog handler with log assertions
//	- order workbook fixtures generated with excelize
//
// Example usage:
//
//	func TestLoader(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteWorkbook(t, testutil.OrderHeaders, rows)
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "Workbook loaded")
//	}
//
// Nothing in this package may import business packages.
package shared
