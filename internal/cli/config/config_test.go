package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("base-url", "", "")
	fs.String("state", "", "")
	fs.String("log-file", "", "")
	fs.String("output", "", "")
	fs.Bool("verbose", false, "")
	fs.Int("port", 0, "")
	return fs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, DefaultPageSize, cfg.Details.PageSize)
	assert.Equal(t, DefaultCachePages, cfg.Details.CachePages)
	assert.Equal(t, DefaultSessionKey, cfg.Chat.SessionKey)
	assert.Equal(t, DefaultUIPort, cfg.UI.Port)
	assert.Equal(t, DefaultSessionTTL, cfg.UI.SessionTTL)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, filepath.Join(dir, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, filepath.Join(dir, DefaultLogFile), cfg.Log.File)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_FileFoundUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ageview.yaml"), `
api:
  base_url: http://backend:9000/
  timeout: 5s
details:
  page_size: 250
state_path: data/chat.db
`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", cfg.API.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 250, cfg.Details.PageSize)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, "data", "chat.db"), cfg.StatePath)
	assert.Equal(t, filepath.Join(root, "ageview.yaml"), GetConfigFileUsed())
}

func TestLoadConfig_Precedence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ageview.yaml"), `
api:
  base_url: http://from-file:1
details:
  page_size: 10
  cache_pages: 4
`)
	writeFile(t, filepath.Join(root, ".env"), "AGEVIEW_DETAILS__CACHE_PAGES=6\nAGEVIEW_DETAILS__PAGE_SIZE=20\n")
	t.Chdir(root)
	t.Setenv("AGEVIEW_DETAILS__PAGE_SIZE", "30")
	t.Setenv("AGEVIEW_API__BASE_URL", "http://from-env:2")
	t.Cleanup(func() { _ = os.Unsetenv("AGEVIEW_DETAILS__CACHE_PAGES") })
	ResetConfig()

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--base-url", "http://from-flag:3", "--verbose"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "http://from-flag:3", cfg.API.BaseURL, "flag beats env")
	assert.Equal(t, 30, cfg.Details.PageSize, "env beats .env")
	assert.Equal(t, 6, cfg.Details.CachePages, ".env beats file")
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_UnchangedFlagsIgnored(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ageview.yaml"), "output: json\n")
	t.Chdir(root)
	ResetConfig()

	flags := newFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, DefaultUIPort, cfg.UI.Port)
}

func TestLoadConfig_StateFlagRelativeToCWD(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ageview.yaml"), "verbose: false\n")
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	t.Chdir(sub)
	ResetConfig()

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--state", "mine.db", "--port", "9999"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sub, "mine.db"), cfg.StatePath)
	assert.Equal(t, 9999, cfg.UI.Port)
}

func TestLoadConfig_MemoryState(t *testing.T) {
	t.Chdir(t.TempDir())
	ResetConfig()

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--state", ":memory:"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.StatePath)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "chat:\n  session_key: team\n")
	t.Chdir(t.TempDir())
	ResetConfig()

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "team", cfg.Chat.SessionKey)
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		ResetConfig()
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("invalid values", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "ageview.yaml"), `
api:
  base_url: not a url
details:
  page_size: 20000
output: fancy
`)
		t.Chdir(root)
		ResetConfig()

		_, err := LoadConfig("", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api.base_url")
		assert.Contains(t, err.Error(), "details.page_size: must be <= 10000")
		assert.Contains(t, err.Error(), "output: must be one of")
	})

	t.Run("bad duration", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "ageview.yaml"), "api:\n  timeout: soon\n")
		t.Chdir(root)
		ResetConfig()

		_, err := LoadConfig("", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unable to decode config")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{name: "defaults valid", mutate: func(*Config) {}},
		{name: "zero page size", mutate: func(c *Config) { c.Details.PageSize = 0 }, errSubstr: "details.page_size: must be >= 1"},
		{name: "zero cache pages", mutate: func(c *Config) { c.Details.CachePages = 0 }, errSubstr: "details.cache_pages: must be >= 1"},
		{name: "missing base url", mutate: func(c *Config) { c.API.BaseURL = "" }, errSubstr: "api.base_url: is required"},
		{name: "missing session key", mutate: func(c *Config) { c.Chat.SessionKey = "" }, errSubstr: "chat.session_key: is required"},
		{name: "port out of range", mutate: func(c *Config) { c.UI.Port = 70000 }, errSubstr: "ui.port: must be <= 65535"},
		{name: "empty output allowed", mutate: func(c *Config) { c.OutputFormat = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "api.base_url", envKey("AGEVIEW_API__BASE_URL"))
	assert.Equal(t, "state_path", envKey("AGEVIEW_STATE_PATH"))
	assert.Equal(t, "verbose", envKey("AGEVIEW_VERBOSE"))
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "discard fallback")

	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}
