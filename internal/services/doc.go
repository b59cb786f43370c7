// Package services runs the KPI report pipeline.
//
// ReportService ties the packages together for one run: it picks the
// input workbooks, loads and filters the orders, resolves the current and
// prior-year windows, computes the comparison, writes the daily audit CSV
// and publishes the dashboard documents to both data directories. When
// sync is enabled the directories are then pushed with git.
//
// Failures before publishing leave every output untouched. A sink that
// cannot be written fails the run after the other sink was attempted.
// A push failure is logged as a warning and recorded in the RunSummary.
//
//	svc, err := services.NewReportService(cfg, paths, services.ReportDeps{
//		Logger:  logger,
//		Tracer:  providers.Tracer,
//		Metrics: metrics,
//	})
//	summary, err := svc.Run(ctx, nil)
package services
