// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"

	"github.com/avolkov/gridmem/internal/model"
)

// WindowSize bounds the sliding window of recent answers.
const WindowSize = 100

// Accuracy returns the rounded percentage of correct answers in the
// window. An empty window counts as 0, not NaN.
func Accuracy(answers []bool) int {
	if len(answers) == 0 {
		return 0
	}
	correct := 0
	for _, ok := range answers {
		if ok {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(len(answers))))
}

// Update grades one answer into the record and returns the result.
// It is pure: the input record is not modified. The window keeps at
// most WindowSize entries, evicting the oldest first; MaxStreak and
// BestAccuracy never decrease; TotalChallenges grows without bound.
// Call exactly once per graded answer.
func Update(rec model.StatsRecord, correct bool) model.StatsRecord {
	window := make([]bool, 0, len(rec.RecentAnswers)+1)
	window = append(window, rec.RecentAnswers...)
	window = append(window, correct)
	if len(window) > WindowSize {
		window = window[len(window)-WindowSize:]
	}
	rec.RecentAnswers = window

	rec.TotalChallenges++
	if correct {
		rec.CurrentStreak++
	} else {
		rec.CurrentStreak = 0
	}
	if rec.CurrentStreak > rec.MaxStreak {
		rec.MaxStreak = rec.CurrentStreak
	}
	if acc := Accuracy(rec.RecentAnswers); acc > rec.BestAccuracy {
		rec.BestAccuracy = acc
	}
	return rec
}

// WindowFull reports whether the record has seen a complete window,
// the point at which the best-accuracy figure becomes meaningful to
// display.
func WindowFull(rec model.StatsRecord) bool {
	return len(rec.RecentAnswers) >= WindowSize
}
