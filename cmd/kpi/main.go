package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"kpicli/internal/config"
	apperrors "kpicli/internal/errors"
	"kpicli/internal/infrastructure"
	"kpicli/internal/services"
	"kpicli/internal/validation"
	"kpicli/pkg/contracts"
	"kpicli/pkg/contracts/domain"
)

const usage = `uso: kpi [data_inicio data_fim]

  Sem argumentos o período atual vai do início do mês até o último pedido.
  Com duas datas (dd/mm/aaaa) o período informado é usado.
`

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one report and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	override, err := parseWindow(args)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "erro: %v\n", err)
		}
		fmt.Fprint(stderr, usage)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "erro de configuração: %v\n", err)
		return 1
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		fmt.Fprintf(stderr, "erro de configuração: %v\n", err)
		return 1
	}
	// sink failures are reported per directory by the publisher
	dirErr := paths.EnsureDirectories()

	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = paths.GetLogPath(config.DefaultLogFile)
	}
	if cfg.Logging.Output != "console" {
		logDir := filepath.Dir(cfg.Logging.FilePath)
		if err := validation.NewFileValidator(slog.Default()).ValidateOutputDirectory(logDir); err != nil {
			fmt.Fprintf(stderr, "aviso: log em arquivo indisponível: %v\n", err)
			cfg.Logging.Output = "console"
		}
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "aviso: log em arquivo indisponível: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()
	if dirErr != nil {
		logger.Warn("Failed to prepare directories", slog.String("error", dirErr.Error()))
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	logger.Info("Starting KPI run",
		slog.String("version", contracts.GetFullVersionString()),
		slog.String("trace_id", infrastructure.GetTraceID(ctx)),
		slog.Any("args", args))
	paths.LogPathResolution(logger)

	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry)
	otelCfg.TraceWriter = stderr
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		logger.Warn("Business metrics unavailable", slog.String("error", err.Error()))
	}

	svc, err := services.NewReportService(cfg, paths, services.ReportDeps{
		Logger:   logger,
		Tracer:   providers.Tracer,
		Metrics:  metrics,
		Progress: stderr,
	})
	if err != nil {
		logger.Error("Invalid report settings", slog.String("error", err.Error()))
		return 1
	}

	summary, runErr := svc.Run(ctx, override)

	if cfg.Telemetry.MetricsFile != "" {
		path := cfg.Telemetry.MetricsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(paths.BaseDir, path)
		}
		if err := providers.WriteMetricsTextfile(path); err != nil {
			logger.Warn("Failed to write metrics file", slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		logger.Error("KPI run failed", slog.String("error", runErr.Error()))
		fmt.Fprintln(stderr, failureMessage(runErr))
		return 1
	}

	printSummary(stdout, summary)
	return 0
}

// parseWindow accepts no arguments or a start and end date in dd/mm/yyyy
func parseWindow(args []string) (*domain.Window, error) {
	switch len(args) {
	case 0:
		return nil, nil
	case 2:
	default:
		return nil, errUsage
	}

	start, err := time.Parse(domain.DateLayout, args[0])
	if err != nil {
		return nil, fmt.Errorf("data inicial inválida %q", args[0])
	}
	end, err := time.Parse(domain.DateLayout, args[1])
	if err != nil {
		return nil, fmt.Errorf("data final inválida %q", args[1])
	}

	window := domain.NewWindow(start, end)
	if !window.Valid() {
		return nil, fmt.Errorf("data inicial %s posterior à data final %s", args[0], args[1])
	}
	return &window, nil
}

// failureMessage renders a failed run for the operator
func failureMessage(err error) string {
	if apperrors.IsMissingColumn(err) {
		return fmt.Sprintf("erro: a planilha não tem uma coluna obrigatória: %v", err)
	}
	return fmt.Sprintf("erro: %v", err)
}

// printSummary writes the pt-BR run summary
func printSummary(w io.Writer, s *services.RunSummary) {
	p := message.NewPrinter(language.BrazilianPortuguese)

	p.Fprintf(w, "Período atual:    %s\n", s.Periods.Current)
	p.Fprintf(w, "Ano anterior:     %s\n", s.Periods.Prior)
	p.Fprintln(w)

	cur, prior := s.Comparison.Current, s.Comparison.Prior
	p.Fprintf(w, "%-16s %16s %16s %10s\n", "", "Atual", "Ano anterior", "Variação")
	p.Fprintf(w, "%-16s %16.2f %16.2f %9.1f%%\n", "Faturamento", cur.Value, prior.Value, s.Comparison.ValueVariance)
	p.Fprintf(w, "%-16s %16d %16d %9.1f%%\n", "Pedidos", cur.Orders, prior.Orders, s.Comparison.OrdersVariance)
	p.Fprintf(w, "%-16s %16.2f %16.2f %9.1f%%\n", "Ticket médio", cur.Ticket, prior.Ticket, s.Comparison.TicketVariance)
	p.Fprintf(w, "%-16s %16.2f %16.2f %9.1f%%\n", "Kg total", cur.WeightKg, prior.WeightKg, s.Comparison.WeightVariance)
	p.Fprintf(w, "%-16s %16.2f %16.2f\n", "Preço médio/kg", cur.PricePerKg, prior.PricePerKg)
	p.Fprintf(w, "%-16s %16.2f %16.2f\n", "Preço médio/m²", cur.PricePerM2, prior.PricePerM2)

	switch {
	case apperrors.IsPushError(s.PushErr):
		p.Fprintf(w, "\naviso: o git recusou o envio; os arquivos locais foram gravados: %v\n", s.PushErr)
	case s.PushErr != nil:
		p.Fprintf(w, "\naviso: envio ao repositório falhou: %v\n", s.PushErr)
	case s.Push != nil:
		p.Fprintf(w, "\nDados enviados ao repositório.\n")
	}
}
