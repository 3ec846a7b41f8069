package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	require.NoError(t, err)

	assert.Equal(t, "geoprofile.db", cfg.Database)
	assert.Equal(t, 0.1, cfg.MinInterval)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Empty(t, cfg.SoilTypes)
	assert.False(t, cfg.LinearSearch)
}

func TestOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"GEOPROFILE_DB":            " /data/profiles.db ",
		"GEOPROFILE_MIN_INTERVAL":  "0.25",
		"GEOPROFILE_WORKERS":       "3",
		"GEOPROFILE_SOILTYPES":     "soil.yaml",
		"GEOPROFILE_LINEAR_SEARCH": "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, Config{
		Database:     "/data/profiles.db",
		MinInterval:  0.25,
		Workers:      3,
		SoilTypes:    "soil.yaml",
		LinearSearch: true,
	}, cfg)
}

func TestInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"interval not a number": {"GEOPROFILE_MIN_INTERVAL": "tenth"},
		"interval zero":         {"GEOPROFILE_MIN_INTERVAL": "0"},
		"workers not a number":  {"GEOPROFILE_WORKERS": "many"},
		"workers zero":          {"GEOPROFILE_WORKERS": "0"},
		"linear not a bool":     {"GEOPROFILE_LINEAR_SEARCH": "sometimes"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(env(vars))
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GEOPROFILE_WORKERS=5\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	t.Setenv("GEOPROFILE_DB", "from-env.db")
	// Setenv restores the variable after the test; .env only fills unset ones
	t.Setenv("GEOPROFILE_WORKERS", "")
	require.NoError(t, os.Unsetenv("GEOPROFILE_WORKERS"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, "from-env.db", cfg.Database)
}

// chdir moves into dir for the rest of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadWithoutDotEnv(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load()
	assert.NoError(t, err)
}

func TestLoadMalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GEOPROFILE_DB=\"unterminated\n"), 0o644))
	chdir(t, dir)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load .env")
}
