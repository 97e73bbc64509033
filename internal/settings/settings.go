// Package settings provides defaults, validation, and fingerprinting
// for game configurations.
package settings

import (
	"fmt"

	"github.com/avolkov/gridmem/internal/model"
)

// Field ranges.
const (
	MinGridSize     = 2
	MaxGridSize     = 8
	MinShowTimeMs   = 100
	MaxShowTimeMs   = 10000
	MinAnswerTimeMs = 0 // 0 keeps the recall phase open indefinitely
	MaxAnswerTimeMs = 30000
	MinActiveCells  = 1
	MinTargetStreak = 1
	MaxTargetStreak = 100
)

// Defaults returns the out-of-the-box configuration.
func Defaults() model.Settings {
	return model.Settings{
		GridSize:     4,
		ShowTimeMs:   1000,
		AnswerTimeMs: 0,
		ActiveCells:  4,
		TargetStreak: 10,
	}
}

// Partial carries possibly-absent settings input, e.g. from a config
// file or a half-filled form. Nil fields fall back to defaults.
type Partial struct {
	GridSize     *int
	ShowTimeMs   *int
	AnswerTimeMs *int
	ActiveCells  *int
	TargetStreak *int
}

// FromSettings wraps a full record as a Partial with every field set.
func FromSettings(s model.Settings) Partial {
	return Partial{
		GridSize:     &s.GridSize,
		ShowTimeMs:   &s.ShowTimeMs,
		AnswerTimeMs: &s.AnswerTimeMs,
		ActiveCells:  &s.ActiveCells,
		TargetStreak: &s.TargetStreak,
	}
}

// Normalize produces a fully populated, in-range Settings from
// arbitrary partial input. It is total: absent fields take defaults,
// present fields are clamped into range, and ActiveCells is bounded by
// the normalized grid area. It never fails and is idempotent.
func Normalize(p Partial) model.Settings {
	def := Defaults()
	out := model.Settings{
		GridSize:     clamp(orDefault(p.GridSize, def.GridSize), MinGridSize, MaxGridSize),
		ShowTimeMs:   clamp(orDefault(p.ShowTimeMs, def.ShowTimeMs), MinShowTimeMs, MaxShowTimeMs),
		AnswerTimeMs: clamp(orDefault(p.AnswerTimeMs, def.AnswerTimeMs), MinAnswerTimeMs, MaxAnswerTimeMs),
		TargetStreak: clamp(orDefault(p.TargetStreak, def.TargetStreak), MinTargetStreak, MaxTargetStreak),
	}
	out.ActiveCells = clamp(orDefault(p.ActiveCells, def.ActiveCells), MinActiveCells, out.GridSize*out.GridSize)
	return out
}

// Fingerprint derives the deterministic key partitioning statistics.
// TargetStreak is a session goal, not a difficulty axis, and is
// excluded: two configurations differing only in it share one record.
func Fingerprint(s model.Settings) string {
	return fmt.Sprintf("g%d-t%d-a%d-n%d", s.GridSize, s.ShowTimeMs, s.AnswerTimeMs, s.ActiveCells)
}

func orDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
