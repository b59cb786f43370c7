package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"kpicli/internal/config"
	"kpicli/internal/dataprocessing"
	"kpicli/internal/exporter"
	"kpicli/internal/files"
	"kpicli/internal/gitsync"
	"kpicli/internal/infrastructure"
	"kpicli/internal/kpi"
	"kpicli/internal/period"
	"kpicli/internal/validation"
	"kpicli/pkg/contracts/domain"
)

// Sink names used in logs, metrics and SinkWriteError.
const (
	SinkRaw  = "raw"
	SinkSite = "site"
)

// Pusher publishes the written directories to a remote.
type Pusher interface {
	Push(ctx context.Context, paths ...string) (gitsync.Outcome, error)
}

// ReportDeps carries the optional collaborators of a ReportService.
type ReportDeps struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *infrastructure.BusinessMetrics
	// Pusher overrides the git pusher built from the sync config
	Pusher Pusher
	// Progress receives the loader progress bar when output.progress is on
	Progress io.Writer
}

// RunSummary describes one completed or failed run
type RunSummary struct {
	Inputs     []string
	Stats      []dataprocessing.LoadStats
	Periods    domain.Periods
	Comparison domain.Comparison
	Documents  domain.Documents
	Publish    exporter.PublishResult
	DailyCSV   string
	Push       *gitsync.Outcome
	PushErr    error
	Duration   time.Duration
}

// ReportService runs the load, compute and publish pipeline
type ReportService struct {
	cfg       *config.Config
	paths     *config.Paths
	policy    period.Policy
	opts      kpi.Options
	discovery *files.Discovery
	validator *validation.FileValidator
	loader    *dataprocessing.Loader
	csv       *exporter.CSVWriter
	publisher *exporter.Publisher
	pusher    Pusher
	tracer    trace.Tracer
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NewReportService wires a service from configuration
func NewReportService(cfg *config.Config, paths *config.Paths, deps ReportDeps) (*ReportService, error) {
	if cfg == nil || paths == nil {
		return nil, fmt.Errorf("report service requires config and paths")
	}

	policy, err := period.ParsePolicy(cfg.Period.Policy)
	if err != nil {
		return nil, err
	}
	countMode, err := kpi.ParseCountMode(cfg.Metrics.CountMode)
	if err != nil {
		return nil, err
	}

	base := deps.Logger
	if base == nil {
		base = slog.Default()
	}
	logger := infrastructure.WithComponent(base, "report")

	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.ServiceName)
	}

	var progress io.Writer
	if cfg.Output.Progress {
		progress = deps.Progress
	}

	manager := files.NewManager(paths)
	sinkDirs := paths.SinkDirs()
	sinks := []exporter.Sink{
		{Name: SinkRaw, Dir: sinkDirs[0]},
		{Name: SinkSite, Dir: sinkDirs[1]},
	}

	pusher := deps.Pusher
	if pusher == nil && cfg.Sync.Enabled {
		pusher = gitsync.NewPusher(cfg.Sync, paths.RepoDir, nil, infrastructure.WithComponent(base, "gitsync"))
	}

	return &ReportService{
		cfg:       cfg,
		paths:     paths,
		policy:    policy,
		opts:      kpi.Options{CountMode: countMode},
		discovery: files.NewDiscovery(paths.BaseDir),
		validator: validation.NewFileValidator(logger),
		loader: dataprocessing.NewLoader(dataprocessing.LoadOptions{
			Sheet:             cfg.Input.Sheet,
			AcceptedOrderType: cfg.Input.AcceptedOrderType,
			OrderIDMin:        cfg.Input.OrderIDMin,
			OrderIDMax:        cfg.Input.OrderIDMax,
			Numbers:           dataprocessing.DefaultNumberPolicy(),
			Progress:          progress,
			Logger:            base,
		}),
		csv:       exporter.NewCSVWriter(manager),
		publisher: exporter.NewPublisher(sinks, manager, deps.Metrics, infrastructure.WithComponent(base, "publisher")),
		pusher:    pusher,
		tracer:    tracer,
		metrics:   deps.Metrics,
		logger:    logger,
	}, nil
}

// Run executes one report. override selects an explicit current window;
// nil applies the configured period policy. Nothing is written when
// loading or period resolution fails. A failed push is reported in the
// summary and does not fail the run.
func (s *ReportService) Run(ctx context.Context, override *domain.Window) (summary *RunSummary, err error) {
	start := time.Now()
	summary = &RunSummary{}

	ctx, span := s.tracer.Start(ctx, "kpi.run")
	defer func() {
		summary.Duration = time.Since(start)
		s.metrics.RecordRun(ctx, summary.Duration, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	logger := s.logger.With(slog.String("trace_id", infrastructure.GetTraceID(ctx)))

	records, err := s.load(ctx, summary)
	if err != nil {
		logger.Error("Failed to load workbooks", slog.String("error", err.Error()))
		return summary, err
	}

	summary.Periods, err = period.Resolve(records, override, s.policy)
	if err != nil {
		return summary, fmt.Errorf("resolve periods: %w", err)
	}
	if summary.Periods.PriorFallback {
		logger.Info("Prior window fell back to month start",
			slog.String("prior", summary.Periods.Prior.String()))
	}

	summary.Comparison = kpi.Compare(records, summary.Periods, s.opts)
	summary.Documents = kpi.BuildDocuments(summary.Periods, summary.Comparison)
	s.recordKPIs(ctx, summary.Comparison)

	logger.Info("KPIs computed",
		slog.String("current", summary.Periods.Current.String()),
		slog.String("prior", summary.Periods.Prior.String()),
		slog.Int("orders", summary.Comparison.Current.Orders),
		slog.Float64("value", summary.Comparison.Current.Value),
		slog.Float64("value_variance", summary.Comparison.ValueVariance))

	if s.cfg.Output.DailyCSV {
		s.writeDaily(ctx, records, summary)
	}

	summary.Publish = s.publish(ctx, summary.Documents)
	if perr := summary.Publish.Err(); perr != nil {
		return summary, fmt.Errorf("%w: %w", ErrPublishFailed, perr)
	}

	if s.pusher != nil {
		s.push(ctx, summary)
	}

	logger.Info("Report completed", slog.Duration("duration", time.Since(start)))
	return summary, nil
}

// inputs returns the configured workbooks, or the newest one in the excel
// directory when none is configured.
func (s *ReportService) inputs() ([]string, error) {
	var out []string
	if s.cfg.Input.CurrentFile != "" {
		out = append(out, s.paths.GetExcelPath(s.cfg.Input.CurrentFile))
	} else {
		latest, err := s.discovery.LatestWorkbook(s.paths.ExcelDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoInputWorkbook, err)
		}
		out = append(out, latest.Path)
	}
	if s.cfg.Input.PriorFile != "" {
		out = append(out, s.paths.GetExcelPath(s.cfg.Input.PriorFile))
	}
	return out, nil
}

func (s *ReportService) load(ctx context.Context, summary *RunSummary) ([]domain.OrderRecord, error) {
	ctx, span := s.tracer.Start(ctx, "kpi.load")
	defer span.End()

	inputs, err := s.inputs()
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	summary.Inputs = inputs

	for _, in := range inputs {
		if err := s.validator.ValidateWorkbook(in); err != nil {
			infrastructure.RecordError(ctx, err)
			return nil, err
		}
	}

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = filepath.Base(in)
	}
	span.SetAttributes(attribute.StringSlice("kpi.inputs", names))

	records, stats, err := s.loader.LoadDataset(ctx, inputs...)
	summary.Stats = stats
	for _, st := range stats {
		s.metrics.RecordRows(ctx, st.Source, st.RowsRead, st.Dropped())
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("kpi.records", len(records)))
	return records, nil
}

func (s *ReportService) recordKPIs(ctx context.Context, cmp domain.Comparison) {
	for _, side := range []struct {
		period string
		m      domain.Metrics
	}{
		{"current", cmp.Current},
		{"prior", cmp.Prior},
	} {
		s.metrics.RecordKPI(ctx, "revenue", side.period, side.m.Value)
		s.metrics.RecordKPI(ctx, "orders", side.period, float64(side.m.Orders))
		s.metrics.RecordKPI(ctx, "weight_kg", side.period, side.m.WeightKg)
		s.metrics.RecordKPI(ctx, "ticket", side.period, side.m.Ticket)
		s.metrics.RecordKPI(ctx, "price_per_kg", side.period, side.m.PricePerKg)
		s.metrics.RecordKPI(ctx, "price_per_m2", side.period, side.m.PricePerM2)
	}
}

// writeDaily writes the audit CSV; a failure is logged and does not stop
// the dashboard documents.
func (s *ReportService) writeDaily(ctx context.Context, records []domain.OrderRecord, summary *RunSummary) {
	_, span := s.tracer.Start(ctx, "kpi.daily_csv")
	defer span.End()

	path := s.paths.GetRawDataPath(config.DailyCSVFileName)
	totals := kpi.DailyBreakdown(records, summary.Periods.Current)
	if err := s.csv.WriteDaily(path, totals); err != nil {
		span.RecordError(err)
		s.logger.Warn("Failed to write daily summary",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}
	summary.DailyCSV = path
}

func (s *ReportService) publish(ctx context.Context, docs domain.Documents) exporter.PublishResult {
	ctx, span := s.tracer.Start(ctx, "kpi.publish")
	defer span.End()

	result := s.publisher.Publish(ctx, docs)
	span.SetAttributes(attribute.Int("kpi.files_written", len(result.Written())))
	if err := result.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sink write failed")
	}
	return result
}

func (s *ReportService) push(ctx context.Context, summary *RunSummary) {
	ctx, span := s.tracer.Start(ctx, "kpi.push")
	defer span.End()

	outcome, err := s.pusher.Push(ctx, s.paths.SinkDirs()...)
	s.metrics.RecordPush(ctx, err)
	if err != nil {
		span.RecordError(err)
		summary.PushErr = err
		s.logger.Warn("Push failed; local files are up to date",
			slog.String("error", err.Error()))
		return
	}
	summary.Push = &outcome
}
