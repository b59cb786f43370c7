// Package exporter writes the dashboard documents and the daily audit CSV.
//
// Publisher renders the five KPI documents in memory and then writes them
// to every sink directory, each file through a temp file and a rename.
// A sink that fails is reported in the PublishResult while the remaining
// sinks are still written:
//
//	publisher := exporter.NewPublisher(sinks, files.NewManager(paths), metrics, logger)
//	result := publisher.Publish(ctx, docs)
//	if err := result.Err(); err != nil {
//		// at least one sink is stale
//	}
//
// CSVWriter produces resumo_diario.csv, one line per day of the current
// window, with a UTF-8 BOM so spreadsheet tools detect the encoding.
package exporter
