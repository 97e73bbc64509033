// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/avolkov/gridmem/internal/model"
)

// Row is one rendered line of the per-configuration report.
type Row struct {
	Fingerprint     string
	TotalChallenges int
	WindowLen       int
	WindowAccuracy  int
	BestAccuracy    int
	HasBest         bool
	MaxStreak       int
	CurrentStreak   int
}

// BuildRows flattens a stats map into report rows sorted by total
// challenges descending, fingerprint ascending on ties.
func BuildRows(m model.StatsMap) []Row {
	rows := make([]Row, 0, len(m))
	for fp, rec := range m {
		rows = append(rows, Row{
			Fingerprint:     fp,
			TotalChallenges: rec.TotalChallenges,
			WindowLen:       len(rec.RecentAnswers),
			WindowAccuracy:  Accuracy(rec.RecentAnswers),
			BestAccuracy:    rec.BestAccuracy,
			HasBest:         WindowFull(rec),
			MaxStreak:       rec.MaxStreak,
			CurrentStreak:   rec.CurrentStreak,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalChallenges == rows[j].TotalChallenges {
			return rows[i].Fingerprint < rows[j].Fingerprint
		}
		return rows[i].TotalChallenges > rows[j].TotalChallenges
	})
	return rows
}

// RenderReport prints the per-configuration table. The best-accuracy
// column stays blank until a configuration has a full window.
func RenderReport(w io.Writer, m model.StatsMap) error {
	rows := BuildRows(m)
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No statistics recorded yet.")
		return err
	}

	headers := []string{"Config", "Challenges", "Accuracy", "Best", "Max Streak", "Streak"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		best := "-"
		if r.HasBest {
			best = fmt.Sprintf("%d%%", r.BestAccuracy)
		}
		tableRows = append(tableRows, []string{
			r.Fingerprint,
			fmt.Sprintf("%d", r.TotalChallenges),
			fmt.Sprintf("%d%% (%d)", r.WindowAccuracy, r.WindowLen),
			best,
			fmt.Sprintf("%d", r.MaxStreak),
			fmt.Sprintf("%d", r.CurrentStreak),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
