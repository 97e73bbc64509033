package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avolkov/gridmem/internal/model"
)

func TestDetectDurableWhenDataDirWritable(t *testing.T) {
	t.Setenv(EnvStorageOverride, "")
	env := Detect(Options{
		DataDir: filepath.Join(t.TempDir(), "data"),
		FlatDir: filepath.Join(t.TempDir(), "flat"),
	})
	require.True(t, env.Durable)
	require.True(t, env.HasStructured)
	require.True(t, env.HasFlat)
	require.Equal(t, model.StorageStructured, env.Kind)
}

func TestDetectFlatWhenDataDirUnavailable(t *testing.T) {
	t.Setenv(EnvStorageOverride, "")
	env := Detect(Options{
		DataDir: "",
		FlatDir: filepath.Join(t.TempDir(), "flat"),
	})
	require.False(t, env.Durable)
	require.False(t, env.HasStructured)
	require.Equal(t, model.StorageFlat, env.Kind)
}

func TestDetectHonorsForcedKind(t *testing.T) {
	env := Detect(Options{
		DataDir:   filepath.Join(t.TempDir(), "data"),
		FlatDir:   filepath.Join(t.TempDir(), "flat"),
		ForceKind: model.StorageFlat,
	})
	require.False(t, env.Durable)
	require.Equal(t, model.StorageFlat, env.Kind)
	// The capability probes still run under an override.
	require.True(t, env.HasStructured)
}

func TestDetectHonorsEnvOverride(t *testing.T) {
	t.Setenv(EnvStorageOverride, "flat")
	env := Detect(Options{
		DataDir: filepath.Join(t.TempDir(), "data"),
		FlatDir: filepath.Join(t.TempDir(), "flat"),
	})
	require.Equal(t, model.StorageFlat, env.Kind)
}

func TestDetectLeavesNoProbeFiles(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	Detect(Options{DataDir: dataDir, FlatDir: filepath.Join(t.TempDir(), "flat")})
	entries, err := filepath.Glob(filepath.Join(dataDir, "*"))
	require.NoError(t, err)
	require.Empty(t, entries)
}
