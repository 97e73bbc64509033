package store

import (
	"os"
	"path/filepath"

	"github.com/avolkov/gridmem/internal/model"
)

// EnvStorageOverride names the environment variable forcing a backend
// kind ("structured" or "flat") regardless of probing.
const EnvStorageOverride = "GRIDMEM_STORAGE"

// Detect classifies the runtime's storage capabilities. Durable mode
// is declared iff the structured store's data directory is writable;
// the flat store only needs its own directory. An explicit override
// (option or GRIDMEM_STORAGE) wins over probing. Probing leaves no
// files behind. The result is memoized by the manager: capabilities do
// not change mid-session in practice.
func Detect(opts Options) model.Environment {
	env := model.Environment{
		HasStructured: dirWritable(opts.DataDir),
		HasFlat:       dirWritable(opts.FlatDir),
	}

	force := opts.ForceKind
	if force == "" {
		force = model.StorageKind(os.Getenv(EnvStorageOverride))
	}
	switch force {
	case model.StorageStructured:
		env.Durable = true
		env.Kind = model.StorageStructured
		return env
	case model.StorageFlat:
		env.Durable = false
		env.Kind = model.StorageFlat
		return env
	}

	if env.HasStructured {
		env.Durable = true
		env.Kind = model.StorageStructured
	} else {
		env.Durable = false
		env.Kind = model.StorageFlat
	}
	return env
}

// dirWritable reports whether the directory can be created and written.
func dirWritable(dir string) bool {
	if dir == "" {
		return false
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	if cerr := probe.Close(); cerr != nil {
		// Best-effort close before removal.
		_ = cerr
	}
	if rerr := os.Remove(name); rerr != nil {
		// Best-effort probe cleanup.
		_ = rerr
	}
	return true
}

// DefaultDBPath returns the SQLite file path inside the data dir.
func DefaultDBPath(dataDir string) string {
	return filepath.Join(dataDir, "gridmem.db")
}
