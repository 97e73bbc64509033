// Package store implements the dual-backend persistence layer: a
// durable SQLite store, a flat JSON-file store, an environment probe
// that picks between them, and a manager facade routing every call to
// the active backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avolkov/gridmem/internal/model"
	"github.com/avolkov/gridmem/internal/stats"
)

// Current schema version for stored statistics records.
const schemaVersion = 1

// Fixed key for the single settings envelope.
const settingsKey = "current"

var (
	// ErrNotInitialized signals a backend call before Init. This is a
	// caller defect, not a storage failure.
	ErrNotInitialized = errors.New("store: not initialized")
)

// Backend is the capability interface both adapters implement. All
// operations are scoped to the call; no transaction survives a return.
type Backend interface {
	Init(ctx context.Context) error
	Get(ctx context.Context, fingerprint string) (model.StatsRecord, bool, error)
	Put(ctx context.Context, fingerprint string, rec model.StatsRecord) error
	GetAll(ctx context.Context) (model.StatsMap, error)
	Delete(ctx context.Context, fingerprint string) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)

	PutSettings(ctx context.Context, env model.SettingsEnvelope) error
	GetSettings(ctx context.Context) (model.SettingsEnvelope, bool, error)

	Kind() model.StorageKind
	Close() error
}

// decodeRecord deserializes a stored statistics record, normalizing
// legacy payloads to the current shape. Records written before schema
// version 1 lack the bestAccuracy field; the upgrade to 0 is one-way
// and idempotent, applied on every read and persisted only by the
// next write.
func decodeRecord(version int, data []byte) (model.StatsRecord, error) {
	var rec model.StatsRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.StatsRecord{}, fmt.Errorf("failed to decode stats record: %w", err)
	}
	return normalizeRecord(version, rec), nil
}

// normalizeRecord maps a record at the stored version onto the current
// shape. Missing numeric fields decode as zero, which is exactly the
// upgraded value, so each step reduces to clamping any corrupt
// negatives back into range.
func normalizeRecord(version int, rec model.StatsRecord) model.StatsRecord {
	_ = version // single upgrade step so far; future versions dispatch here
	if rec.TotalChallenges < 0 {
		rec.TotalChallenges = 0
	}
	if rec.MaxStreak < 0 {
		rec.MaxStreak = 0
	}
	if rec.CurrentStreak < 0 {
		rec.CurrentStreak = 0
	}
	if rec.BestAccuracy < 0 {
		rec.BestAccuracy = 0
	}
	if len(rec.RecentAnswers) > stats.WindowSize {
		rec.RecentAnswers = rec.RecentAnswers[len(rec.RecentAnswers)-stats.WindowSize:]
	}
	return rec
}

func encodeRecord(rec model.StatsRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stats record: %w", err)
	}
	return data, nil
}
