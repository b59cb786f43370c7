package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for every file location used by a run.
type Paths struct {
	BaseDir     string
	ExcelDir    string
	RawDataDir  string
	SiteDataDir string
	LogsDir     string
	RepoDir     string
}

// GetPaths resolves the configured directories. An empty base directory
// means the directory holding the executable, never the working directory.
//
// Directory structure:
//
//	base/
//	  ├── excel/          (order workbooks)
//	  ├── dados/          (raw copy of the KPI documents + daily CSV)
//	  ├── site/dados/     (documents served by the dashboard)
//	  └── logs/
func GetPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		exeDir, err := executableDir()
		if err != nil {
			return nil, err
		}
		base = exeDir
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	paths := &Paths{
		BaseDir:     base,
		ExcelDir:    resolve(base, cfg.ExcelDir),
		RawDataDir:  resolve(base, cfg.RawDataDir),
		SiteDataDir: resolve(base, cfg.SiteDataDir),
		LogsDir:     resolve(base, cfg.LogsDir),
		RepoDir:     base,
	}
	if cfg.RepoDir != "" {
		paths.RepoDir = resolve(base, cfg.RepoDir)
	}

	return paths, nil
}

// executableDir returns the directory containing the running binary
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return filepath.Dir(exe), nil
}

func resolve(base, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(base, dir)
}

// SinkDirs returns the publication destinations: raw data first, then site data.
func (p *Paths) SinkDirs() []string {
	return []string{p.RawDataDir, p.SiteDataDir}
}

// EnsureDirectories creates the output directories if they don't exist.
// The excel directory is input only and is never created.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.RawDataDir, p.SiteDataDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetExcelPath returns the path of a workbook; absolute names are kept as-is
func (p *Paths) GetExcelPath(filename string) string {
	return resolve(p.ExcelDir, filename)
}

// GetRawDataPath returns the path for a file in the raw data directory
func (p *Paths) GetRawDataPath(filename string) string {
	return filepath.Join(p.RawDataDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs the resolved directories for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("excel", p.ExcelDir),
			slog.String("raw_data", p.RawDataDir),
			slog.String("site_data", p.SiteDataDir),
			slog.String("logs", p.LogsDir),
			slog.String("repo", p.RepoDir),
		))
}
