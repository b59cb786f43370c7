// Package dataprocessing turns the commercial order workbook into cleaned
// order records.
//
// # Pipeline
//
//	Workbook → header resolution → date parsing → number cleaning → filters → []domain.OrderRecord
//
// Headers are matched through fixed synonym lists after accent folding, so
// "Nº PEDIDO", "nº pedido" and "NO PEDIDO" are the same column. The date and
// value columns are required; weight, area, order type and order id are
// optional.
//
// Dates are read day-first. Rows whose date cannot be read are dropped and
// counted in LoadStats; a workbook without a single readable date fails
// with ErrNoValidDateRows.
//
// Numbers go through NumberPolicy, which never fails:
//
//	p := dataprocessing.DefaultNumberPolicy()
//	p.Clean("1.234,56") // 1234.56
//	p.Clean("R$ 10,5")  // 10.5
//	p.Clean("-")        // 0
//
// # Usage
//
//	loader := dataprocessing.NewLoader(dataprocessing.LoadOptions{
//	    AcceptedOrderType: "NORMAL",
//	    Numbers:           dataprocessing.DefaultNumberPolicy(),
//	})
//	records, stats, err := loader.LoadDataset(ctx, current, prior)
package dataprocessing
