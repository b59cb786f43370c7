package exporter

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"

	apperrors "kpicli/internal/errors"
	"kpicli/internal/files"
	"kpicli/internal/infrastructure"
	"kpicli/pkg/contracts/domain"
)

// Sink is one publication destination.
type Sink struct {
	Name string
	Dir  string
}

// SinkResult is the outcome of publishing to one sink.
type SinkResult struct {
	Sink  Sink
	Files []string
	Err   error
}

// PublishResult collects the outcome of every sink.
type PublishResult struct {
	Sinks []SinkResult
}

// Err joins the sink failures, or returns nil when every sink succeeded.
func (r PublishResult) Err() error {
	var errs []error
	for _, s := range r.Sinks {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return stderrors.Join(errs...)
}

// Written returns the paths of every file written successfully.
func (r PublishResult) Written() []string {
	var out []string
	for _, s := range r.Sinks {
		out = append(out, s.Files...)
	}
	return out
}

// Publisher writes the document set to each sink.
type Publisher struct {
	sinks   []Sink
	writer  *JSONWriter
	files   *files.Manager
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewPublisher creates a publisher for sinks. metrics may be nil.
func NewPublisher(sinks []Sink, manager *files.Manager, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Publisher {
	if manager == nil {
		manager = files.NewManager(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		sinks:   sinks,
		writer:  NewJSONWriter(),
		files:   manager,
		metrics: metrics,
		logger:  logger,
	}
}

type rendered struct {
	name string
	data []byte
}

// Publish renders every document, then writes them to each sink in turn.
// A failing sink does not stop the others. If rendering fails nothing is
// written and the error is reported against every sink.
func (p *Publisher) Publish(ctx context.Context, docs domain.Documents) PublishResult {
	var result PublishResult

	payloads, err := p.render(docs)
	if err != nil {
		for _, sink := range p.sinks {
			result.Sinks = append(result.Sinks, SinkResult{
				Sink: sink,
				Err:  &apperrors.SinkWriteError{Sink: sink.Name, Err: err},
			})
		}
		return result
	}

	for _, sink := range p.sinks {
		sr := p.publishSink(ctx, sink, payloads)
		p.metrics.RecordSinkWrite(ctx, sink.Name, sr.Err)
		result.Sinks = append(result.Sinks, sr)
	}

	return result
}

func (p *Publisher) render(docs domain.Documents) ([]rendered, error) {
	ordered := docs.Ordered()
	out := make([]rendered, 0, len(ordered))
	for _, doc := range ordered {
		data, err := p.writer.Encode(doc.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered{name: doc.Name, data: data})
	}
	return out, nil
}

func (p *Publisher) publishSink(ctx context.Context, sink Sink, payloads []rendered) SinkResult {
	sr := SinkResult{Sink: sink}

	if err := ctx.Err(); err != nil {
		sr.Err = &apperrors.SinkWriteError{Sink: sink.Name, Err: err}
		return sr
	}

	if err := p.files.EnsureDir(sink.Dir); err != nil {
		sr.Err = &apperrors.SinkWriteError{Sink: sink.Name, Err: err}
		p.logger.Error("Sink unavailable",
			slog.String("sink", sink.Name),
			slog.String("dir", sink.Dir),
			slog.String("error", err.Error()))
		return sr
	}

	for _, payload := range payloads {
		path := filepath.Join(sink.Dir, payload.name)
		if err := p.files.WriteFileAtomic(path, payload.data); err != nil {
			sr.Err = &apperrors.SinkWriteError{Sink: sink.Name, File: payload.name, Err: err}
			p.logger.Error("Failed to write document",
				slog.String("sink", sink.Name),
				slog.String("file", payload.name),
				slog.String("error", err.Error()))
			return sr
		}
		sr.Files = append(sr.Files, path)
	}

	p.logger.Info("Documents published",
		slog.String("sink", sink.Name),
		slog.String("dir", sink.Dir),
		slog.Int("files", len(sr.Files)))

	return sr
}
