package stats

import (
	"testing"

	"github.com/avolkov/gridmem/internal/model"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		answers []bool
		want    int
	}{
		{"empty window", nil, 0},
		{"two of three", []bool{true, false, true}, 67},
		{"all correct", []bool{true, true, true, true}, 100},
		{"all wrong", []bool{false, false}, 0},
		{"three of four", []bool{true, true, false, true}, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accuracy(tt.answers); got != tt.want {
				t.Fatalf("Accuracy(%v) = %d, want %d", tt.answers, got, tt.want)
			}
		})
	}
}

func TestUpdateScenario(t *testing.T) {
	var rec model.StatsRecord
	for _, outcome := range []bool{true, true, false, true} {
		rec = Update(rec, outcome)
	}
	if rec.TotalChallenges != 4 {
		t.Fatalf("TotalChallenges = %d, want 4", rec.TotalChallenges)
	}
	want := []bool{true, true, false, true}
	if len(rec.RecentAnswers) != len(want) {
		t.Fatalf("window length = %d, want %d", len(rec.RecentAnswers), len(want))
	}
	for i, v := range want {
		if rec.RecentAnswers[i] != v {
			t.Fatalf("window[%d] = %v, want %v", i, rec.RecentAnswers[i], v)
		}
	}
	if rec.CurrentStreak != 1 {
		t.Fatalf("CurrentStreak = %d, want 1", rec.CurrentStreak)
	}
	if rec.MaxStreak != 2 {
		t.Fatalf("MaxStreak = %d, want 2", rec.MaxStreak)
	}
	// The best-accuracy max is raised on every update; the two opening
	// correct answers already push it to 100.
	if rec.BestAccuracy != 100 {
		t.Fatalf("BestAccuracy = %d, want 100", rec.BestAccuracy)
	}
}

func TestUpdateMonotonic(t *testing.T) {
	outcomes := []bool{true, true, true, false, false, true, false, true, true, false}
	var rec model.StatsRecord
	prevBest, prevMax := 0, 0
	for i, outcome := range outcomes {
		rec = Update(rec, outcome)
		if rec.BestAccuracy < prevBest {
			t.Fatalf("step %d: BestAccuracy decreased %d -> %d", i, prevBest, rec.BestAccuracy)
		}
		if rec.MaxStreak < prevMax {
			t.Fatalf("step %d: MaxStreak decreased %d -> %d", i, prevMax, rec.MaxStreak)
		}
		prevBest, prevMax = rec.BestAccuracy, rec.MaxStreak
	}
}

func TestUpdateWindowEviction(t *testing.T) {
	var rec model.StatsRecord
	rec = Update(rec, false) // the answer that must be evicted
	for i := 0; i < WindowSize; i++ {
		rec = Update(rec, true)
	}
	if len(rec.RecentAnswers) != WindowSize {
		t.Fatalf("window length = %d, want %d", len(rec.RecentAnswers), WindowSize)
	}
	for i, v := range rec.RecentAnswers {
		if !v {
			t.Fatalf("window[%d] = false, first answer was not evicted", i)
		}
	}
	if rec.TotalChallenges != WindowSize+1 {
		t.Fatalf("TotalChallenges = %d, want %d", rec.TotalChallenges, WindowSize+1)
	}
}

func TestUpdateStreakReset(t *testing.T) {
	var rec model.StatsRecord
	rec = Update(rec, true)
	rec = Update(rec, true)
	rec = Update(rec, false)
	if rec.CurrentStreak != 0 {
		t.Fatalf("CurrentStreak = %d after a miss, want 0", rec.CurrentStreak)
	}
	if rec.MaxStreak != 2 {
		t.Fatalf("MaxStreak = %d, want 2", rec.MaxStreak)
	}
}

func TestUpdatePure(t *testing.T) {
	orig := model.StatsRecord{RecentAnswers: []bool{true, false}}
	_ = Update(orig, true)
	if len(orig.RecentAnswers) != 2 {
		t.Fatalf("input record mutated: window length %d", len(orig.RecentAnswers))
	}
}

func TestWindowFull(t *testing.T) {
	var rec model.StatsRecord
	if WindowFull(rec) {
		t.Fatal("empty record reported a full window")
	}
	for i := 0; i < WindowSize; i++ {
		rec = Update(rec, i%2 == 0)
	}
	if !WindowFull(rec) {
		t.Fatalf("window of %d answers not reported full", len(rec.RecentAnswers))
	}
}
