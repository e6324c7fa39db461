package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1024, cfg.Scanner.MaxFileSizeKB)
	assert.Equal(t, 15, cfg.Reducer.ComplexityThreshold)
	assert.Equal(t, "mu", cfg.Output.Format)
}

func TestLoadOverlaysProjectFile(t *testing.T) {
	root := t.TempDir()
	toml := `
[scanner]
max_file_size_kb = 2048

[output]
format = "json"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".murc.toml"), []byte(toml), 0o644))

	cfg, err := Load(root, nil)
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.Scanner.MaxFileSizeKB)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadMalformedProjectFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".murc.toml"), []byte("not valid [[[ toml"), 0o644))

	_, err := Load(root, nil)
	assert.Error(t, err)
}

func TestLoadAppliesEnvOverride(t *testing.T) {
	root := t.TempDir()
	t.Setenv("MU_OUTPUT_FORMAT", "md")
	t.Setenv("MU_REDUCER_COMPLEXITY_THRESHOLD", "42")

	cfg, err := Load(root, nil)
	require.NoError(t, err)
	assert.Equal(t, "md", cfg.Output.Format)
	assert.Equal(t, 42, cfg.Reducer.ComplexityThreshold)
}

func TestLoadCLIOverridesWinLast(t *testing.T) {
	root := t.TempDir()
	t.Setenv("MU_OUTPUT_FORMAT", "md")

	cfg, err := Load(root, func(c *Config) {
		c.Output.Format = "json"
	})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestValidateRejectsBadFormat(t *testing.T) {
	root := t.TempDir()
	_, err := Load(root, func(c *Config) {
		c.Output.Format = "xml"
	})
	assert.Error(t, err)
}

func TestValidateRejectsNegativeMaxFileSize(t *testing.T) {
	root := t.TempDir()
	_, err := Load(root, func(c *Config) {
		c.Scanner.MaxFileSizeKB = -1
	})
	assert.Error(t, err)
}
