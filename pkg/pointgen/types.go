package pointgen

import "math/rand/v2"

// Generator produces point data for one kind of graph series
type Generator interface {
	// Init initializes the generator with a per-instance random source
	// This eliminates lock contention on the global rand source
	Init(r *rand.Rand)

	// Fill appends the points for the given size to sink
	Fill(sink Sink, size int) error

	// PointCount returns how many points Fill appends for size
	PointCount(size int) int

	// Description returns a human-readable description of the data shape
	Description() string

	// DefaultSize returns the suggested default size
	DefaultSize() int
}
