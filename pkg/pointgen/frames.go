package pointgen

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// FrameCache holds precomputed animation frames for one series kind.
// Next cycles through the frames in order. It is not safe for concurrent use.
type FrameCache struct {
	kind   string
	frames [][]Point
	next   int
}

// frameFunc computes point idx of frame f out of frames on a side x side grid
type frameFunc func(f, frames, side, j, k int) Point

var frameFuncs = map[string]frameFunc{
	"scatter": torusPoint,
	"surface": surfacePoint,
	"bar":     barPoint,
	"uniform": func(f, frames, side, j, k int) Point {
		p := torusPoint(f, frames, side, j, k)
		// Torus spans [-1, 1]; fold it into the unit cube
		return Point{X: (p.X + 1) / 2, Y: (p.Y + 1) / 2, Z: (p.Z + 1) / 2}
	},
}

// BuildFrames precomputes frames animation frames for the named series kind.
// Every frame has as many points as the kind's generator produces for size.
// Frames are built concurrently; each one is deterministic.
func BuildFrames(ctx context.Context, kind string, size, frames int) (*FrameCache, error) {
	fn, ok := frameFuncs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGenerator, kind)
	}
	gen, err := Get(kind)
	if err != nil {
		return nil, err
	}

	n := gen.PointCount(size)
	side := size
	if kind == "uniform" {
		side = int(math.Ceil(math.Sqrt(float64(n))))
	}

	cache := &FrameCache{kind: kind, frames: make([][]Point, max(frames, 0))}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for f := range cache.frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pts := make([]Point, 0, n)
			for j := 0; j < side && len(pts) < n; j++ {
				for k := 0; k < side && len(pts) < n; k++ {
					pts = append(pts, fn(f, frames, side, j, k))
				}
			}
			cache.frames[f] = pts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build %s frames: %w", kind, err)
	}

	return cache, nil
}

// Kind returns the series kind the frames were built for
func (c *FrameCache) Kind() string {
	return c.kind
}

// Len returns the number of frames
func (c *FrameCache) Len() int {
	return len(c.frames)
}

// Frame returns frame i. The slice is shared; callers must not modify it.
func (c *FrameCache) Frame(i int) []Point {
	return c.frames[i]
}

// Next returns the next frame, wrapping around after the last one.
// An empty cache returns nil.
func (c *FrameCache) Next() []Point {
	if len(c.frames) == 0 {
		return nil
	}
	frame := c.frames[c.next]
	c.next++
	if c.next >= len(c.frames) {
		c.next = 0
	}
	return frame
}

// Replay appends every point of the next frame to sink
func (c *FrameCache) Replay(sink Sink) error {
	if sink == nil {
		return ErrNilSink
	}
	for i, p := range c.Next() {
		if err := sink.Append(p); err != nil {
			return fmt.Errorf("replay point %d: %w", i, err)
		}
	}
	return nil
}

// torusPoint places grid cell (j, k) on a breathing torus; time loops from 0 to 4
func torusPoint(f, frames, side, j, k int) Point {
	t := float64(f) * 4 / float64(frames)
	u := float64(j)/float64(side)*2 - 1
	v := float64(k)/float64(side)*2 - 1

	r1 := 0.7 + 0.1*math.Sin(math.Pi*(6*u+0.5*t))
	r2 := 0.15 + 0.05*math.Sin(math.Pi*(8*u+4*v+2*t))
	s := r1 + r2*math.Cos(math.Pi*v)

	return Point{
		X: s * math.Sin(math.Pi*u),
		Y: r2 * math.Sin(math.Pi*v),
		Z: s * math.Cos(math.Pi*u),
	}
}

func wave(x, z float64, f, frames int) float64 {
	step := float64(f) / float64(frames)
	return math.Sin(2*math.Pi*(x+z+step))*0.5 + 0.5
}

func surfacePoint(f, frames, side, j, k int) Point {
	x := float64(k) / float64(side)
	z := float64(j) / float64(side)
	return Point{X: x, Y: wave(x, z, f, frames), Z: z}
}

func barPoint(f, frames, side, j, k int) Point {
	x := float64(j) / float64(side)
	z := float64(k) / float64(side)
	return Point{X: float64(k), Y: wave(x, z, f, frames), Z: float64(j)}
}
