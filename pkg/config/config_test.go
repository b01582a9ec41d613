package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Check())
	assert.Equal(t, 20.0, cfg.CellSize)
	assert.Equal(t, 5, cfg.MaxStoreys)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cell_size: 25\nmax_storeys: 8\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25.0, cfg.CellSize)
	assert.Equal(t, 8, cfg.MaxStoreys)
	// Untouched fields keep defaults.
	assert.Equal(t, 3.0, cfg.MinWidth)
}

func TestLoadRejectsBadRanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_width: 10\nmax_width: 3\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestCRSOffset(t *testing.T) {
	cfg := Default()

	off, err := cfg.CRSOffset("")
	require.NoError(t, err)
	assert.Equal(t, [2]float64{}, off)

	off, err = cfg.CRSOffset("Nordoostpolder")
	require.NoError(t, err)
	assert.Equal(t, [2]float64{173469.0, 526427.0}, off)

	_, err = cfg.CRSOffset("Atlantis")
	assert.Error(t, err)
}
