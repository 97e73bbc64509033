package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avolkov/gridmem/internal/model"
)

const (
	flatStatsFile    = "stats.json"
	flatSettingsFile = "settings.json"
)

// FlatStore is the fallback adapter: the whole stats map lives in one
// serialized blob, the settings envelope in another, both under a
// well-known directory. Every mutation is a read-modify-write of the
// full blob; there are no partial updates and no transactions.
type FlatStore struct {
	dir string
}

var _ Backend = (*FlatStore)(nil)

// NewFlatStore returns an adapter rooted at dir.
func NewFlatStore(dir string) *FlatStore {
	return &FlatStore{dir: dir}
}

// Init ensures the directory exists. Idempotent.
func (f *FlatStore) Init(context.Context) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create flat store dir: %w", err)
	}
	return nil
}

// Close implements Backend; the flat store holds no handle.
func (f *FlatStore) Close() error {
	return nil
}

// Kind implements Backend.
func (f *FlatStore) Kind() model.StorageKind {
	return model.StorageFlat
}

func (f *FlatStore) statsPath() string {
	return filepath.Join(f.dir, flatStatsFile)
}

func (f *FlatStore) settingsPath() string {
	return filepath.Join(f.dir, flatSettingsFile)
}

// readMap loads and normalizes the whole stats blob. A missing blob is
// an empty map.
func (f *FlatStore) readMap() (model.StatsMap, error) {
	data, err := os.ReadFile(f.statsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return model.StatsMap{}, nil
		}
		return nil, fmt.Errorf("failed to read flat stats: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode flat stats: %w", err)
	}
	out := make(model.StatsMap, len(raw))
	for fingerprint, payload := range raw {
		rec, err := decodeRecord(schemaVersion, payload)
		if err != nil {
			return nil, err
		}
		out[fingerprint] = rec
	}
	return out, nil
}

func (f *FlatStore) writeMap(m model.StatsMap) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode flat stats: %w", err)
	}
	return writeFileAtomic(f.statsPath(), data)
}

// Get implements Backend.
func (f *FlatStore) Get(_ context.Context, fingerprint string) (model.StatsRecord, bool, error) {
	m, err := f.readMap()
	if err != nil {
		return model.StatsRecord{}, false, err
	}
	rec, ok := m[fingerprint]
	return rec, ok, nil
}

// Put implements Backend via read-modify-write of the whole blob.
func (f *FlatStore) Put(ctx context.Context, fingerprint string, rec model.StatsRecord) error {
	if err := f.Init(ctx); err != nil {
		return err
	}
	m, err := f.readMap()
	if err != nil {
		return err
	}
	m[fingerprint] = rec
	return f.writeMap(m)
}

// GetAll implements Backend.
func (f *FlatStore) GetAll(context.Context) (model.StatsMap, error) {
	return f.readMap()
}

// Delete implements Backend. Missing keys are not an error.
func (f *FlatStore) Delete(_ context.Context, fingerprint string) error {
	m, err := f.readMap()
	if err != nil {
		return err
	}
	if _, ok := m[fingerprint]; !ok {
		return nil
	}
	delete(m, fingerprint)
	return f.writeMap(m)
}

// Clear removes the entire stats blob.
func (f *FlatStore) Clear(context.Context) error {
	if err := os.Remove(f.statsPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear flat stats: %w", err)
	}
	return nil
}

// Count implements Backend.
func (f *FlatStore) Count(context.Context) (int, error) {
	m, err := f.readMap()
	if err != nil {
		return 0, err
	}
	return len(m), nil
}

// PutSettings stores the settings envelope in its own blob.
func (f *FlatStore) PutSettings(ctx context.Context, env model.SettingsEnvelope) error {
	if err := f.Init(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return writeFileAtomic(f.settingsPath(), data)
}

// GetSettings loads the settings envelope, reporting whether one was
// ever stored.
func (f *FlatStore) GetSettings(context.Context) (model.SettingsEnvelope, bool, error) {
	data, err := os.ReadFile(f.settingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return model.SettingsEnvelope{}, false, nil
		}
		return model.SettingsEnvelope{}, false, fmt.Errorf("failed to read settings: %w", err)
	}
	var env model.SettingsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return model.SettingsEnvelope{}, false, fmt.Errorf("failed to decode settings: %w", err)
	}
	return env, true, nil
}

// writeFileAtomic writes via a temp file and rename so a crash never
// leaves a truncated blob.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
