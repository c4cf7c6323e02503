package pointgen

import "math/rand/v2"

// UniformGenerator appends size points with coordinates in [0, 1)
type UniformGenerator struct {
	rand *rand.Rand
}

func (g *UniformGenerator) Init(r *rand.Rand) {
	g.rand = r
}

func (g *UniformGenerator) Fill(sink Sink, size int) error {
	return Generate(sink, size, g.rand)
}

func (g *UniformGenerator) PointCount(size int) int {
	return max(size, 0)
}

func (g *UniformGenerator) Description() string {
	return "Uniform points: {x, y, z} in [0, 1)"
}

func (g *UniformGenerator) DefaultSize() int {
	return 1e4
}
