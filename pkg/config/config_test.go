package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scoped "github.com/pumped-fn/scoped-go"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.AllowRemount)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "human", cfg.Log.Format)
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestParse(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		cfg, err := Parse([]byte(`
allow_remount: true
log:
  level: DEBUG
  format: json
metrics:
  enabled: true
  namespace: app
`))
		require.NoError(t, err)

		assert.True(t, cfg.AllowRemount)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, "app", cfg.Metrics.Namespace)
		assert.Equal(t, "scoped", cfg.Tracing.ServiceName)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		_, err := Parse([]byte("log:\n  format: xml\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config.log.format must be one of: human json text zap")
	})

	t.Run("requires namespace when metrics are enabled", func(t *testing.T) {
		_, err := Parse([]byte("metrics:\n  enabled: true\n  namespace: \"\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config.metrics.namespace is required")
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("log: [unclosed"))
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Run("file then env file then environment", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "scoped.yaml", "log:\n  level: warn\n  format: text\n")
		envFile := writeFile(t, dir, "test.env", "SCOPED_LOG_FORMAT=json\nSCOPED_TRACING_ENABLED=true\n")

		t.Setenv("SCOPED_LOG_LEVEL", "error")
		t.Setenv("SCOPED_TRACING_SERVICE_NAME", "counter")
		// godotenv never overrides variables that are already set
		t.Setenv("SCOPED_LOG_FORMAT", "")
		os.Unsetenv("SCOPED_LOG_FORMAT")
		t.Setenv("SCOPED_TRACING_ENABLED", "")
		os.Unsetenv("SCOPED_TRACING_ENABLED")

		cfg, err := Load(path, envFile)
		require.NoError(t, err)

		assert.Equal(t, "error", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.True(t, cfg.Tracing.Enabled)
		assert.Equal(t, "counter", cfg.Tracing.ServiceName)
	})

	t.Run("missing explicit env file", func(t *testing.T) {
		_, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("invalid boolean", func(t *testing.T) {
		t.Setenv("SCOPED_ALLOW_REMOUNT", "maybe")

		_, err := Load("", writeFile(t, t.TempDir(), "empty.env", ""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SCOPED_ALLOW_REMOUNT")
	})
}

func TestScopeOptions(t *testing.T) {
	t.Run("human logging with graph debug", func(t *testing.T) {
		cfg := Default()
		cfg.Log.Level = "debug"

		var buf bytes.Buffer
		opts, err := cfg.ScopeOptions(&buf, prometheus.NewRegistry())
		require.NoError(t, err)

		scope := scoped.NewScope(opts...)
		broken := scoped.Provide(func(*scoped.Ref) (int, error) {
			return 0, errors.New("boom")
		}, scoped.WithLabel("broken"))

		_, err = scoped.Read(scope, broken)
		require.Error(t, err)

		out := buf.String()
		assert.Contains(t, out, "[DEBUG] scope operation starting")
		assert.Contains(t, out, "[GraphDebug] Provider Build Error")
		assert.Contains(t, out, "Failed Provider: broken")
	})

	t.Run("zap logging", func(t *testing.T) {
		cfg := Default()
		cfg.Log.Format = "zap"
		cfg.Log.Level = "debug"

		var buf bytes.Buffer
		opts, err := cfg.ScopeOptions(&buf, nil)
		require.NoError(t, err)

		scope := scoped.NewScope(opts...)
		scoped.MustRead(scope, scoped.Value(func(*scoped.Ref) int { return 1 }, scoped.WithLabel("one")))

		assert.Contains(t, buf.String(), `"logger":"scoped"`)
		assert.Contains(t, buf.String(), `"provider":"one"`)
	})

	t.Run("remount and metrics", func(t *testing.T) {
		cfg := Default()
		cfg.AllowRemount = true
		cfg.Metrics.Enabled = true
		cfg.Metrics.Namespace = "cfgtest"

		reg := prometheus.NewRegistry()
		opts, err := cfg.ScopeOptions(&bytes.Buffer{}, reg)
		require.NoError(t, err)

		scope := scoped.NewScope(opts...)
		require.NoError(t, scope.Dispose())
		require.NoError(t, scope.Remount())
		assert.True(t, scope.Mounted())

		count, err := testutil.GatherAndCount(reg, "cfgtest_scope_disposals_total")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("duplicate metrics registration", func(t *testing.T) {
		cfg := Default()
		cfg.Metrics.Enabled = true

		reg := prometheus.NewRegistry()
		_, err := cfg.ScopeOptions(&bytes.Buffer{}, reg)
		require.NoError(t, err)

		_, err = cfg.ScopeOptions(&bytes.Buffer{}, reg)
		assert.Error(t, err)
	})

	t.Run("tracing", func(t *testing.T) {
		cfg := Default()
		cfg.Tracing.Enabled = true

		opts, err := cfg.ScopeOptions(&bytes.Buffer{}, nil)
		require.NoError(t, err)

		scope := scoped.NewScope(opts...)
		assert.Equal(t, 2, scoped.MustRead(scope, scoped.Value(func(*scoped.Ref) int { return 2 })))
	})
}
