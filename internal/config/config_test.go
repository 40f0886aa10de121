package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试会频繁修改 HOME，关闭 go-homedir 的缓存。
func init() {
	homedir.DisableCache = true
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".gocda.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("language", "", "")
	flags.Int("minimum-tokens", 0, "")
	flags.String("format", "", "")
	flags.String("log-level", "", "")
	flags.StringSlice("exclude", nil, "")
	flags.Bool("no-install", false, "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultLanguage, cfg.Language)
	assert.Equal(t, 50, cfg.MinimumTokens)
	assert.Equal(t, DefaultCountMode, cfg.CountMode)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, "report.txt", cfg.ReportName)
	assert.Equal(t, "pmd", cfg.Detector.Binary)
	assert.Equal(t, []string{"brew", "install", "pmd"}, cfg.Detector.InstallCommand)
	assert.True(t, cfg.Detector.AutoInstall)
	assert.Empty(t, cfg.Scan.Exclude)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
language: kotlin
minimum_tokens: 120
count_mode: code
detector:
  binary: /opt/pmd/bin/pmd
  auto_install: false
scan:
  exclude:
    - "Pods/**"
log:
  level: debug
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "kotlin", cfg.Language)
	assert.Equal(t, 120, cfg.MinimumTokens)
	assert.Equal(t, "code", cfg.CountMode)
	assert.Equal(t, "/opt/pmd/bin/pmd", cfg.Detector.Binary)
	assert.False(t, cfg.Detector.AutoInstall)
	assert.Equal(t, []string{"Pods/**"}, cfg.Scan.Exclude)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "minimum_tokens: 120\n")
	t.Setenv("GOCDA_MINIMUM_TOKENS", "75")
	t.Setenv("GOCDA_LOG_LEVEL", "warn")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.MinimumTokens)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvPaths(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GOCDA_ROOT", "/work")
	t.Setenv("GOCDA_SOURCE", "/work/src")
	t.Setenv("GOCDA_DESTINATION", "/work/dest")
	t.Setenv("GOCDA_OUTPUT", "/tmp/result.json")
	t.Setenv("GOCDA_METRICS_FILE", "/tmp/gocda.prom")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "/work", cfg.Root)
	assert.Equal(t, "/work/src", cfg.Source)
	assert.Equal(t, "/work/dest", cfg.Destination)
	assert.Equal(t, "/tmp/result.json", cfg.Output)
	assert.Equal(t, "/tmp/gocda.prom", cfg.MetricsFile)
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "language: java\nminimum_tokens: 120\n")
	flags := newFlags(t, "--minimum-tokens=30", "--exclude=vendor/**", "--log-level=error", "--no-install")

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "java", cfg.Language, "unset flag must not override the file")
	assert.Equal(t, 30, cfg.MinimumTokens)
	assert.Equal(t, []string{"vendor/**"}, cfg.Scan.Exclude)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.False(t, cfg.Detector.AutoInstall)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "tokens", content: "minimum_tokens: 0\n"},
		{name: "count mode", content: "count_mode: lines\n"},
		{name: "format", content: "format: xml\n"},
		{name: "language", content: "language: \"  \"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	path := filepath.Join(home, "gocda.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: ~/projects/app\nmetrics_file: ~/gocda.prom\n"), 0o644))

	cfg, err := Load("~/gocda.yaml", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "projects", "app"), cfg.Root)
	assert.Equal(t, filepath.Join(home, "gocda.prom"), cfg.MetricsFile)
	assert.Empty(t, cfg.Output)
}
