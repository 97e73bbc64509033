package stats

import (
	"strings"
	"testing"

	"github.com/avolkov/gridmem/internal/model"
)

func TestBuildRowsOrder(t *testing.T) {
	m := model.StatsMap{
		"g4-t500-a0-n5":  {TotalChallenges: 3, RecentAnswers: []bool{true, true, false}},
		"g5-t500-a0-n5":  {TotalChallenges: 10, RecentAnswers: []bool{true}},
		"g2-t100-a0-n1":  {TotalChallenges: 3, RecentAnswers: []bool{false, false, false}},
		"g8-t9000-a0-n9": {TotalChallenges: 0},
	}
	rows := BuildRows(m)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0].Fingerprint != "g5-t500-a0-n5" {
		t.Fatalf("most played config first, got %q", rows[0].Fingerprint)
	}
	if rows[1].Fingerprint != "g2-t100-a0-n1" || rows[2].Fingerprint != "g4-t500-a0-n5" {
		t.Fatalf("ties must sort by fingerprint: %q, %q", rows[1].Fingerprint, rows[2].Fingerprint)
	}
}

func TestRenderReportEmpty(t *testing.T) {
	var b strings.Builder
	if err := RenderReport(&b, model.StatsMap{}); err != nil {
		t.Fatalf("RenderReport failed: %v", err)
	}
	if !strings.Contains(b.String(), "No statistics") {
		t.Fatalf("unexpected empty-map output: %q", b.String())
	}
}

func TestRenderReportHidesBestUntilFullWindow(t *testing.T) {
	partial := model.StatsRecord{TotalChallenges: 3, RecentAnswers: []bool{true, true, false}, BestAccuracy: 100}
	full := model.StatsRecord{TotalChallenges: 150, BestAccuracy: 88}
	for i := 0; i < WindowSize; i++ {
		full.RecentAnswers = append(full.RecentAnswers, true)
	}
	m := model.StatsMap{"g4-t500-a0-n5": partial, "g5-t500-a0-n5": full}

	var b strings.Builder
	if err := RenderReport(&b, m); err != nil {
		t.Fatalf("RenderReport failed: %v", err)
	}
	out := b.String()
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "g4-t500-a0-n5") && strings.Contains(line, "100%") {
			t.Fatalf("partial window must not show its best accuracy: %q", line)
		}
	}
	if !strings.Contains(out, "88%") {
		t.Fatalf("full window should render its best accuracy: %q", out)
	}
}
