package pointgen

import (
	"fmt"
	"math/rand/v2"
)

// ScatterGenerator appends size*size points centered on the origin,
// each coordinate in [-1, 1)
type ScatterGenerator struct {
	rand *rand.Rand
}

func (g *ScatterGenerator) Init(r *rand.Rand) {
	g.rand = r
}

func (g *ScatterGenerator) Fill(sink Sink, size int) error {
	if sink == nil {
		return ErrNilSink
	}
	if g.rand == nil {
		g.rand = NewRand(rand.Uint64())
	}

	n := g.PointCount(size)
	for i := 0; i < n; i++ {
		p := Point{
			X: g.rand.Float64()*2 - 1,
			Y: g.rand.Float64()*2 - 1,
			Z: g.rand.Float64()*2 - 1,
		}
		if err := sink.Append(p); err != nil {
			return fmt.Errorf("append scatter point %d: %w", i, err)
		}
	}
	return nil
}

func (g *ScatterGenerator) PointCount(size int) int {
	if size <= 0 {
		return 0
	}
	return size * size
}

func (g *ScatterGenerator) Description() string {
	return "Scatter cloud: size*size points in [-1, 1)"
}

func (g *ScatterGenerator) DefaultSize() int {
	return 100
}
