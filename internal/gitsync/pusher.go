package gitsync

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"time"

	"kpicli/internal/config"
	apperrors "kpicli/internal/errors"
)

// Push steps, as reported in PushError.Step.
const (
	StepAdd    = "add"
	StepDiff   = "diff"
	StepCommit = "commit"
	StepPush   = "push"
)

// Outcome describes what a push run did.
type Outcome struct {
	Committed bool
	Pushed    bool
}

// Pusher stages, commits and pushes files of a git working tree.
type Pusher struct {
	cfg     config.SyncConfig
	repoDir string
	runner  Runner
	logger  *slog.Logger
}

// NewPusher creates a pusher for the repository at repoDir.
// runner defaults to ExecRunner.
func NewPusher(cfg config.SyncConfig, repoDir string, runner Runner, logger *slog.Logger) *Pusher {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GitBinary == "" {
		cfg.GitBinary = "git"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultSyncTimeout
	}
	return &Pusher{cfg: cfg, repoDir: repoDir, runner: runner, logger: logger}
}

// Push stages paths, commits them when the index changed and pushes the
// configured branch. The push runs even without a new commit so that a
// commit left behind by an earlier failed push still goes out.
func (p *Pusher) Push(ctx context.Context, paths ...string) (Outcome, error) {
	var outcome Outcome

	if len(paths) == 0 {
		return outcome, apperrors.NewSyncError("git push skipped",
			&apperrors.PushError{Step: StepAdd, Err: stderrors.New("nothing to stage")})
	}

	addArgs := append([]string{"add", "--"}, p.relative(paths)...)
	if _, err := p.run(ctx, StepAdd, addArgs...); err != nil {
		return outcome, err
	}

	changed, err := p.hasStagedChanges(ctx)
	if err != nil {
		return outcome, err
	}

	if changed {
		if _, err := p.run(ctx, StepCommit, "commit", "-m", p.cfg.CommitMessage); err != nil {
			return outcome, err
		}
		outcome.Committed = true
	} else {
		p.logger.Info("No data changes to commit")
	}

	if _, err := p.run(ctx, StepPush, "push", p.cfg.Remote, p.cfg.Branch); err != nil {
		return outcome, err
	}
	outcome.Pushed = true

	p.logger.Info("Dashboard data pushed",
		slog.String("remote", p.cfg.Remote),
		slog.String("branch", p.cfg.Branch),
		slog.Bool("committed", outcome.Committed))

	return outcome, nil
}

// hasStagedChanges runs "git diff --cached --quiet", which exits 1 when the
// index differs from HEAD.
func (p *Pusher) hasStagedChanges(ctx context.Context) (bool, error) {
	out, err := p.exec(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}

	var ec exitCoder
	if stderrors.As(err, &ec) && ec.ExitCode() == 1 {
		return true, nil
	}
	return false, p.fail(StepDiff, out, err)
}

func (p *Pusher) run(ctx context.Context, step string, args ...string) ([]byte, error) {
	out, err := p.exec(ctx, args...)
	if err != nil {
		return out, p.fail(step, out, err)
	}
	return out, nil
}

func (p *Pusher) exec(ctx context.Context, args ...string) ([]byte, error) {
	stepCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	out, err := p.runner.Run(stepCtx, p.repoDir, p.cfg.GitBinary, args...)

	p.logger.Debug("git command finished",
		slog.String("command", args[0]),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("ok", err == nil))

	if err != nil && stepCtx.Err() == context.DeadlineExceeded {
		err = context.DeadlineExceeded
	}
	return out, err
}

func (p *Pusher) fail(step string, out []byte, err error) error {
	p.logger.Warn("git step failed",
		slog.String("step", step),
		slog.String("error", err.Error()),
		slog.String("output", string(out)))
	return apperrors.NewSyncError("git "+step+" failed", &apperrors.PushError{Step: step, Output: string(out), Err: err}).
		WithContext("repo", p.repoDir)
}

// relative makes paths relative to the repository when they live inside it.
func (p *Pusher) relative(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if filepath.IsAbs(path) && p.repoDir != "" {
			if rel, err := filepath.Rel(p.repoDir, path); err == nil && !startsWithParent(rel) {
				path = rel
			}
		}
		out = append(out, filepath.ToSlash(path))
	}
	return out
}

func startsWithParent(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}
