package pointgen

import (
	"fmt"
	"math/rand/v2"
)

// SurfaceGenerator appends a size x size height field.
// Row i, column j maps to X = j/size, Z = i/size with a random height Y in [0, 1).
type SurfaceGenerator struct {
	rand *rand.Rand
}

func (g *SurfaceGenerator) Init(r *rand.Rand) {
	g.rand = r
}

func (g *SurfaceGenerator) Fill(sink Sink, size int) error {
	if g.rand == nil {
		g.rand = NewRand(rand.Uint64())
	}
	return fillGrid(sink, size, g.rand, "surface", func(i, j int, y float64) Point {
		return Point{X: float64(j) / float64(size), Y: y, Z: float64(i) / float64(size)}
	})
}

func (g *SurfaceGenerator) PointCount(size int) int {
	return gridCount(size)
}

func (g *SurfaceGenerator) Description() string {
	return "Surface grid: size x size heights, x and z in [0, 1)"
}

func (g *SurfaceGenerator) DefaultSize() int {
	return 100
}

// BarGenerator appends a size x size grid of bar values.
// X is the column index, Z the row index and Y the bar value in [0, 1).
type BarGenerator struct {
	rand *rand.Rand
}

func (g *BarGenerator) Init(r *rand.Rand) {
	g.rand = r
}

func (g *BarGenerator) Fill(sink Sink, size int) error {
	if g.rand == nil {
		g.rand = NewRand(rand.Uint64())
	}
	return fillGrid(sink, size, g.rand, "bar", func(i, j int, y float64) Point {
		return Point{X: float64(j), Y: y, Z: float64(i)}
	})
}

func (g *BarGenerator) PointCount(size int) int {
	return gridCount(size)
}

func (g *BarGenerator) Description() string {
	return "Bar grid: size x size values in [0, 1)"
}

func (g *BarGenerator) DefaultSize() int {
	return 50
}

func gridCount(size int) int {
	if size <= 0 {
		return 0
	}
	return size * size
}

// fillGrid walks rows then columns, drawing one random value per cell
func fillGrid(sink Sink, size int, r *rand.Rand, kind string, at func(i, j int, y float64) Point) error {
	if sink == nil {
		return ErrNilSink
	}

	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if err := sink.Append(at(i, j, r.Float64())); err != nil {
				return fmt.Errorf("append %s point (%d, %d): %w", kind, i, j, err)
			}
		}
	}
	return nil
}
