package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avolkov/gridmem/internal/model"
	"github.com/avolkov/gridmem/internal/settings"
	"github.com/avolkov/gridmem/internal/stats"
)

// Options configures a Manager.
type Options struct {
	// DataDir holds the structured store (SQLite file).
	DataDir string
	// FlatDir holds the flat store blobs.
	FlatDir string
	// ForceKind overrides environment detection when non-empty.
	ForceKind model.StorageKind
}

// Manager is the facade over both adapters. It detects the
// environment once, lazily initializes the selected backend, and
// routes every statistics and settings call through it. Construct one
// at the composition point and pass it down; there is no package-level
// instance.
type Manager struct {
	opts Options

	env         *model.Environment
	backend     Backend
	initialized bool
}

// NewManager returns an uninitialized manager. Init runs lazily on
// first use of any operation.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts}
}

// Init detects the environment and initializes the active backend.
// Idempotent: repeated calls after a successful one are no-ops.
func (m *Manager) Init(ctx context.Context) error {
	if m.initialized {
		return nil
	}
	if m.env == nil {
		env := Detect(m.opts)
		m.env = &env
	}
	var backend Backend
	if m.env.Durable {
		backend = NewSQLiteStore(DefaultDBPath(m.opts.DataDir))
	} else {
		backend = NewFlatStore(m.opts.FlatDir)
	}
	if err := backend.Init(ctx); err != nil {
		return fmt.Errorf("failed to init %s store: %w", backend.Kind(), err)
	}
	m.backend = backend
	m.initialized = true
	return nil
}

// Close releases the active backend. The manager can be re-initialized
// afterwards.
func (m *Manager) Close() error {
	if m.backend == nil {
		return nil
	}
	err := m.backend.Close()
	m.backend = nil
	m.initialized = false
	return err
}

// SaveStats grades one answer into the record for the configuration's
// fingerprint and persists the result. This is a monotonic append:
// retrying a failed call after a partial success double-counts the
// answer.
func (m *Manager) SaveStats(ctx context.Context, s model.Settings, correct bool) (model.StatsRecord, error) {
	if err := m.Init(ctx); err != nil {
		return model.StatsRecord{}, err
	}
	fingerprint := settings.Fingerprint(s)
	rec, _, err := m.backend.Get(ctx, fingerprint)
	if err != nil {
		return model.StatsRecord{}, err
	}
	rec = stats.Update(rec, correct)
	if err := m.backend.Put(ctx, fingerprint, rec); err != nil {
		return model.StatsRecord{}, err
	}
	return rec, nil
}

// GetStats returns the stored record for the configuration, or a
// zeroed one when none exists. Callers always get a usable record; a
// read failure returns the zero record alongside the error so the game
// stays playable.
func (m *Manager) GetStats(ctx context.Context, s model.Settings) (model.StatsRecord, error) {
	if err := m.Init(ctx); err != nil {
		return model.StatsRecord{}, err
	}
	rec, _, err := m.backend.Get(ctx, settings.Fingerprint(s))
	if err != nil {
		return model.StatsRecord{}, err
	}
	return rec, nil
}

// GetAllStats re-reads the full map from the active backend. The
// manager never caches it across calls.
func (m *Manager) GetAllStats(ctx context.Context) (model.StatsMap, error) {
	if err := m.Init(ctx); err != nil {
		return nil, err
	}
	return m.backend.GetAll(ctx)
}

// ClearAllStats bulk-deletes every record. Individual records are
// never deleted through the game flow; this is the only removal path.
func (m *Manager) ClearAllStats(ctx context.Context) error {
	if err := m.Init(ctx); err != nil {
		return err
	}
	return m.backend.Clear(ctx)
}

// CountStats returns the number of stored configurations.
func (m *Manager) CountStats(ctx context.Context) (int, error) {
	if err := m.Init(ctx); err != nil {
		return 0, err
	}
	return m.backend.Count(ctx)
}

// ExportStats serializes the full map as indented JSON. Field names
// are authoritative; field order is not.
func (m *Manager) ExportStats(ctx context.Context) (string, error) {
	all, err := m.GetAllStats(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}
	return string(data), nil
}

// ImportStats parses an export payload and bulk-writes it into the
// active backend, overwriting per fingerprint (last write wins, no
// merge). Parsing is all-or-nothing: a malformed payload leaves the
// store untouched. Writes happen per key, so a failure partway through
// can leave a mixed state.
func (m *Manager) ImportStats(ctx context.Context, payload string) error {
	if err := m.Init(ctx); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return fmt.Errorf("failed to parse import payload: %w", err)
	}
	incoming := make(model.StatsMap, len(raw))
	for fingerprint, data := range raw {
		rec, err := decodeRecord(schemaVersion, data)
		if err != nil {
			return fmt.Errorf("failed to parse import payload: %w", err)
		}
		incoming[fingerprint] = rec
	}
	for fingerprint, rec := range incoming {
		if err := m.backend.Put(ctx, fingerprint, rec); err != nil {
			return err
		}
	}
	return nil
}

// CreateBackup wraps the export with provenance metadata.
func (m *Manager) CreateBackup(ctx context.Context) (model.BackupEnvelope, error) {
	data, err := m.ExportStats(ctx)
	if err != nil {
		return model.BackupEnvelope{}, err
	}
	return model.BackupEnvelope{
		Data:        data,
		Timestamp:   time.Now().Format(time.RFC3339),
		Environment: m.backend.Kind(),
	}, nil
}

// RestoreFromBackup replays a backup into whichever backend is
// currently active. The envelope's environment tag records where the
// data came from; it is deliberately not checked against the live
// environment.
func (m *Manager) RestoreFromBackup(ctx context.Context, env model.BackupEnvelope) error {
	return m.ImportStats(ctx, env.Data)
}

// SyncEnvironments copies statistics one way, best effort. In durable
// mode the full map is mirrored into the flat store so a later
// flat-only session still sees it. In flat mode the copy goes the
// other way when a structured store is reachable; if it is not, the
// failure is swallowed and flat data stays untouched.
func (m *Manager) SyncEnvironments(ctx context.Context) error {
	if err := m.Init(ctx); err != nil {
		return err
	}
	all, err := m.backend.GetAll(ctx)
	if err != nil {
		return err
	}

	if m.env.Durable {
		flat := NewFlatStore(m.opts.FlatDir)
		if err := flat.Init(ctx); err != nil {
			return err
		}
		return copyInto(ctx, flat, all)
	}

	structured := NewSQLiteStore(DefaultDBPath(m.opts.DataDir))
	if err := structured.Init(ctx); err != nil {
		// Structured store unreachable; flat data stays authoritative.
		return nil
	}
	defer func() {
		if cerr := structured.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()
	if err := copyInto(ctx, structured, all); err != nil {
		// Copy failure is swallowed; flat data stays authoritative.
		return nil
	}
	return nil
}

func copyInto(ctx context.Context, b Backend, m model.StatsMap) error {
	for fingerprint, rec := range m {
		if err := b.Put(ctx, fingerprint, rec); err != nil {
			return err
		}
	}
	return nil
}

// SaveSettings persists the applied configuration through the active
// backend.
func (m *Manager) SaveSettings(ctx context.Context, s model.Settings) error {
	if err := m.Init(ctx); err != nil {
		return err
	}
	return m.backend.PutSettings(ctx, model.SettingsEnvelope{
		Settings:    s,
		LastUpdated: time.Now(),
		Version:     schemaVersion,
	})
}

// LoadSettings recovers the persisted configuration, normalized, or
// the defaults when none was ever stored.
func (m *Manager) LoadSettings(ctx context.Context) (model.Settings, error) {
	if err := m.Init(ctx); err != nil {
		return settings.Defaults(), err
	}
	env, ok, err := m.backend.GetSettings(ctx)
	if err != nil || !ok {
		return settings.Defaults(), err
	}
	return settings.Normalize(settings.FromSettings(env.Settings)), nil
}

// EnvironmentInfo returns a diagnostics snapshot.
func (m *Manager) EnvironmentInfo() model.EnvironmentInfo {
	info := model.EnvironmentInfo{
		Initialized: m.initialized,
		DataDir:     m.opts.DataDir,
		FlatDir:     m.opts.FlatDir,
	}
	if m.env != nil {
		info.Environment = *m.env
	} else {
		info.Environment = Detect(m.opts)
	}
	return info
}
