package settings

import (
	"testing"

	"github.com/avolkov/gridmem/internal/model"
)

func intPtr(v int) *int { return &v }

func TestNormalizeDefaults(t *testing.T) {
	got := Normalize(Partial{})
	if got != Defaults() {
		t.Fatalf("empty partial should yield defaults, got %+v", got)
	}
}

func TestNormalizeClampsRanges(t *testing.T) {
	tests := []struct {
		name string
		in   Partial
		want model.Settings
	}{
		{
			name: "below minimums",
			in: Partial{
				GridSize:     intPtr(1),
				ShowTimeMs:   intPtr(10),
				AnswerTimeMs: intPtr(-5),
				ActiveCells:  intPtr(0),
				TargetStreak: intPtr(0),
			},
			want: model.Settings{GridSize: 2, ShowTimeMs: 100, AnswerTimeMs: 0, ActiveCells: 1, TargetStreak: 1},
		},
		{
			name: "above maximums",
			in: Partial{
				GridSize:     intPtr(20),
				ShowTimeMs:   intPtr(99999),
				AnswerTimeMs: intPtr(99999),
				ActiveCells:  intPtr(999),
				TargetStreak: intPtr(500),
			},
			want: model.Settings{GridSize: 8, ShowTimeMs: 10000, AnswerTimeMs: 30000, ActiveCells: 64, TargetStreak: 100},
		},
		{
			name: "active cells bounded by grid area",
			in: Partial{
				GridSize:    intPtr(3),
				ActiveCells: intPtr(50),
			},
			want: model.Settings{GridSize: 3, ShowTimeMs: 1000, AnswerTimeMs: 0, ActiveCells: 9, TargetStreak: 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Fatalf("Normalize = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := Partial{
		GridSize:     intPtr(100),
		ShowTimeMs:   intPtr(1),
		AnswerTimeMs: intPtr(50000),
		ActiveCells:  intPtr(0),
		TargetStreak: intPtr(-3),
	}
	once := Normalize(in)
	twice := Normalize(FromSettings(once))
	if once != twice {
		t.Fatalf("Normalize not idempotent: %+v then %+v", once, twice)
	}
}

func TestNormalizeUnlimitedAnswerTime(t *testing.T) {
	got := Normalize(Partial{AnswerTimeMs: intPtr(0)})
	if got.AnswerTimeMs != 0 {
		t.Fatalf("answer time 0 must survive as unlimited, got %d", got.AnswerTimeMs)
	}
}

func TestFingerprintPartitioning(t *testing.T) {
	base := model.Settings{GridSize: 4, ShowTimeMs: 500, AnswerTimeMs: 0, ActiveCells: 5, TargetStreak: 10}

	sameDifficulty := base
	sameDifficulty.TargetStreak = 42
	if Fingerprint(base) != Fingerprint(sameDifficulty) {
		t.Fatalf("target streak must not affect the fingerprint: %q vs %q",
			Fingerprint(base), Fingerprint(sameDifficulty))
	}

	bigger := base
	bigger.GridSize = 5
	if Fingerprint(base) == Fingerprint(bigger) {
		t.Fatalf("grid size must affect the fingerprint: %q", Fingerprint(base))
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	s := model.Settings{GridSize: 4, ShowTimeMs: 500, AnswerTimeMs: 0, ActiveCells: 5, TargetStreak: 10}
	if got, want := Fingerprint(s), "g4-t500-a0-n5"; got != want {
		t.Fatalf("Fingerprint = %q, want %q", got, want)
	}
}
