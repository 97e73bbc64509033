// Package generator builds random cell patterns for rounds.
package generator

import (
	"math/rand"
	"time"
)

// Cell addresses one grid position.
type Cell struct {
	Row int
	Col int
}

// Generator produces randomized cell patterns.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded returns a Generator with a fixed seed, for tests.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Pattern selects count distinct cells on a gridSize x gridSize grid.
// Count is capped at the grid area.
func (g *Generator) Pattern(gridSize, count int) map[Cell]struct{} {
	area := gridSize * gridSize
	if count > area {
		count = area
	}
	out := make(map[Cell]struct{}, count)
	if count <= 0 || gridSize <= 0 {
		return out
	}
	// Partial Fisher-Yates over cell indices.
	indices := make([]int, area)
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < count; i++ {
		j := i + g.rnd.Intn(area-i)
		indices[i], indices[j] = indices[j], indices[i]
		out[Cell{Row: indices[i] / gridSize, Col: indices[i] % gridSize}] = struct{}{}
	}
	return out
}
