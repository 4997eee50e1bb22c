package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	p := filepath.Join(t.TempDir(), "content.toml")
	require.NoError(t, os.WriteFile(p, []byte(`
root-directory = "assets"
log-level = "debug"
watch = true
`), 0o644))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		RootDirectory: "assets",
		LogLevel:      "debug",
		RawFallback:   true,
		Watch:         true,
	}, cfg)
}

func TestApplyLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyLogLevel())

	cfg.LogLevel = ""
	require.NoError(t, cfg.ApplyLogLevel())

	cfg.LogLevel = "loud"
	assert.ErrorContains(t, cfg.ApplyLogLevel(), `log level "loud"`)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	p := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(p, []byte("root-directory = [1,"), 0o644))
	_, err = LoadConfig(p)
	assert.ErrorContains(t, err, "parse config")
}
