package tui

import (
	"testing"

	"github.com/avolkov/gridmem/internal/generator"
)

func TestSameCells(t *testing.T) {
	a := map[generator.Cell]struct{}{
		{Row: 0, Col: 1}: {},
		{Row: 2, Col: 2}: {},
	}
	b := map[generator.Cell]struct{}{
		{Row: 2, Col: 2}: {},
		{Row: 0, Col: 1}: {},
	}
	if !sameCells(a, b) {
		t.Fatal("identical sets reported unequal")
	}

	b[generator.Cell{Row: 1, Col: 1}] = struct{}{}
	if sameCells(a, b) {
		t.Fatal("different sizes reported equal")
	}

	delete(b, generator.Cell{Row: 1, Col: 1})
	delete(b, generator.Cell{Row: 2, Col: 2})
	b[generator.Cell{Row: 2, Col: 1}] = struct{}{}
	if sameCells(a, b) {
		t.Fatal("different cells reported equal")
	}

	if !sameCells(map[generator.Cell]struct{}{}, map[generator.Cell]struct{}{}) {
		t.Fatal("empty sets reported unequal")
	}
}

func TestTruncateToWidth(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "abc", 10, "abc"},
		{"unknown width", "abcdef", 0, "abcdef"},
		{"clipped", "abcdef", 4, "abc…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateToWidth(tt.in, tt.width); got != tt.want {
				t.Fatalf("truncateToWidth(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}
