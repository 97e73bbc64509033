// Package model defines shared data structures.
package model

import "time"

// StorageKind identifies which backend holds the data.
type StorageKind string

// Backend kinds.
const (
	StorageStructured StorageKind = "structured"
	StorageFlat       StorageKind = "flat"
)

// Settings defines a game configuration. It is an immutable value:
// applying settings produces a new record, never mutates one in place.
type Settings struct {
	GridSize     int `json:"gridSize"`
	ShowTimeMs   int `json:"showTime"`
	AnswerTimeMs int `json:"answerTime"` // 0 means unlimited
	ActiveCells  int `json:"numActiveCells"`
	TargetStreak int `json:"targetConsecutive"`
}

// StatsRecord aggregates performance for one configuration fingerprint.
// RecentAnswers is a FIFO window of the last 100 graded answers;
// MaxStreak and BestAccuracy only ever grow.
type StatsRecord struct {
	TotalChallenges int    `json:"totalChallenges"`
	RecentAnswers   []bool `json:"recentAnswers"`
	MaxStreak       int    `json:"maxConsecutiveCorrect"`
	CurrentStreak   int    `json:"currentConsecutiveCorrect"`
	BestAccuracy    int    `json:"bestAccuracy"`
}

// StatsMap maps configuration fingerprints to their statistics.
type StatsMap map[string]StatsRecord

// SettingsEnvelope is the persisted shape of the current settings.
type SettingsEnvelope struct {
	Settings    Settings  `json:"settings"`
	LastUpdated time.Time `json:"lastUpdated"`
	Version     int       `json:"version"`
}

// BackupEnvelope wraps an exported StatsMap with provenance metadata.
// Data is the pretty-printed JSON serialization of the map.
type BackupEnvelope struct {
	Data        string      `json:"data"`
	Timestamp   string      `json:"timestamp"` // RFC3339
	Environment StorageKind `json:"environment"`
}

// Environment describes the detected storage capabilities.
type Environment struct {
	Durable       bool
	HasStructured bool
	HasFlat       bool
	Kind          StorageKind
}

// EnvironmentInfo is a diagnostic snapshot of the storage layer.
type EnvironmentInfo struct {
	Environment Environment
	Initialized bool
	DataDir     string
	FlatDir     string
}
