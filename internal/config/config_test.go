package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"api_key": "file-key",
		"input_path": "in.xlsx",
		"output_path": "out.xlsx",
		"column": 2,
		"request_delay": 1.5
	}`)

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, "in.xlsx", cfg.InputPath)
	assert.Equal(t, "out.xlsx", cfg.OutputPath)
	assert.Equal(t, 2, cfg.Column)
	assert.Equal(t, 1.5, cfg.RequestDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.Delay())
	assert.Equal(t, 1000, cfg.ChunkSize, "chunk size defaults to 1000")
}

func TestLoad_OverridesWin(t *testing.T) {
	path := writeConfigFile(t, `{
		"api_key": "file-key",
		"input_path": "file-in.xlsx",
		"column": 1,
		"request_delay": 2.0
	}`)

	column := 4
	delay := 0.25
	chunk := 50
	cfg, err := Load(path, Overrides{
		APIKey:       "flag-key",
		InputPath:    "flag-in.csv",
		OutputPath:   "flag-out.csv",
		Column:       &column,
		RequestDelay: &delay,
		ChunkSize:    &chunk,
	})
	require.NoError(t, err)
	assert.Equal(t, "flag-key", cfg.APIKey)
	assert.Equal(t, "flag-in.csv", cfg.InputPath)
	assert.Equal(t, "flag-out.csv", cfg.OutputPath)
	assert.Equal(t, 4, cfg.Column)
	assert.Equal(t, 0.25, cfg.RequestDelay)
	assert.Equal(t, 50, cfg.ChunkSize)
}

func TestLoad_OverridesAlone(t *testing.T) {
	cfg, err := Load("", Overrides{APIKey: "k", InputPath: "in.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, 0, cfg.Column)
	assert.Equal(t, 0.5, cfg.RequestDelay, "request delay defaults to 0.5s")
	assert.Equal(t, "geocoding_result.xlsx", cfg.OutputPath)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	path := writeConfigFile(t, `{"input_path": "in.xlsx"}`)

	_, err := Load(path, Overrides{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoad_MissingInputPath(t *testing.T) {
	_, err := Load("", Overrides{APIKey: "k"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestLoad_NegativeColumn(t *testing.T) {
	path := writeConfigFile(t, `{"api_key": "k", "input_path": "in.xlsx", "column": -1}`)

	_, err := Load(path, Overrides{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "column")
}

func TestLoad_NegativeDelay(t *testing.T) {
	delay := -0.5
	_, err := Load("", Overrides{APIKey: "k", InputPath: "in.xlsx", RequestDelay: &delay})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "request_delay")
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), Overrides{APIKey: "k", InputPath: "in.xlsx"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeConfigFile(t, `{"api_key": `)

	_, err := Load(path, Overrides{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
