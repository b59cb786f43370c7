package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	t.Run("relative directories resolve against base", func(t *testing.T) {
		base := t.TempDir()
		cfg := Default().Paths
		cfg.BaseDir = base

		paths, err := GetPaths(cfg)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(base, "excel"), paths.ExcelDir)
		assert.Equal(t, filepath.Join(base, "dados"), paths.RawDataDir)
		assert.Equal(t, filepath.Join(base, "site", "dados"), paths.SiteDataDir)
		assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
		assert.Equal(t, base, paths.RepoDir)
	})

	t.Run("absolute directories are kept", func(t *testing.T) {
		base := t.TempDir()
		site := filepath.Join(t.TempDir(), "public")
		cfg := Default().Paths
		cfg.BaseDir = base
		cfg.SiteDataDir = site
		cfg.RepoDir = "site"

		paths, err := GetPaths(cfg)
		require.NoError(t, err)

		assert.Equal(t, site, paths.SiteDataDir)
		assert.Equal(t, filepath.Join(base, "site"), paths.RepoDir)
	})

	t.Run("empty base uses executable directory", func(t *testing.T) {
		paths, err := GetPaths(Default().Paths)
		require.NoError(t, err)

		exeDir, err := executableDir()
		require.NoError(t, err)
		assert.Equal(t, exeDir, paths.BaseDir)
		assert.True(t, filepath.IsAbs(paths.ExcelDir))
	})
}

func TestPaths_SinkDirs(t *testing.T) {
	paths := &Paths{RawDataDir: "/srv/dados", SiteDataDir: "/srv/site/dados"}
	assert.Equal(t, []string{"/srv/dados", "/srv/site/dados"}, paths.SinkDirs())
}

func TestPaths_EnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default().Paths
	cfg.BaseDir = base

	paths, err := GetPaths(cfg)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.RawDataDir, paths.SiteDataDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
	assert.NoDirExists(t, paths.ExcelDir, "input directory must not be created")
}

func TestPaths_Helpers(t *testing.T) {
	paths := &Paths{
		ExcelDir:   filepath.Join("base", "excel"),
		RawDataDir: filepath.Join("base", "dados"),
		LogsDir:    filepath.Join("base", "logs"),
	}

	assert.Equal(t, filepath.Join("base", "excel", "PEDIDOS ONDA.xlsx"), paths.GetExcelPath("PEDIDOS ONDA.xlsx"))
	abs := filepath.Join(t.TempDir(), "outro.xlsx")
	assert.Equal(t, abs, paths.GetExcelPath(abs))
	assert.Equal(t, filepath.Join("base", "dados", DailyCSVFileName), paths.GetRawDataPath(DailyCSVFileName))
	assert.Equal(t, filepath.Join("base", "logs", DefaultLogFile), paths.GetLogPath(DefaultLogFile))
}
