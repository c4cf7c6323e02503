package bench

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/google/uuid"
	"pkg.jsn.cam/pointgen/internal/config"
	"pkg.jsn.cam/pointgen/internal/report"
	"pkg.jsn.cam/pointgen/pkg/pointgen"
	"pkg.jsn.cam/pointgen/pkg/sink"
)

var graphTitles = map[string]string{
	"uniform": "Uniform Scatter Graph",
	"scatter": "Scatter Graph",
	"surface": "Surface Graph",
	"bar":     "Bar Graph",
}

// Result summarizes one generate or bench run
type Result struct {
	RunID     string
	Generator string
	Size      int
	Seed      uint64
	Points    int64
	Dataset   string

	// InitTime covers handing the points to the sink
	InitTime time.Duration

	Frames     int
	FrameP50   time.Duration
	FrameP90   time.Duration
	FrameP99   time.Duration
	AverageFPS float64
}

// Runner drives a generator into a sink as described by a Config
type Runner struct {
	cfg    *config.Config
	report *report.Reporter

	// Wrap, if set, decorates the output sink, e.g. with a progress bar.
	// total is the number of points that will be appended.
	Wrap func(s pointgen.Sink, total int) pointgen.Sink
}

// New creates a runner. rep may be nil to disable the report files.
func New(cfg *config.Config, rep *report.Reporter) *Runner {
	return &Runner{cfg: cfg, report: rep}
}

type prepared struct {
	gen  pointgen.Generator
	res  *Result
	size int
}

func (r *Runner) prepare() (*prepared, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	gen, err := pointgen.Get(r.cfg.Generator)
	if err != nil {
		return nil, err
	}

	seed := r.cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	gen.Init(pointgen.NewRand(seed))
	size := r.cfg.SizeFor(gen)

	res := &Result{
		RunID:     uuid.NewString(),
		Generator: r.cfg.Generator,
		Size:      size,
		Seed:      seed,
		Dataset:   r.cfg.Dataset,
	}
	if res.Dataset == "" && sink.IsBbolt(r.cfg.Output) {
		res.Dataset = res.RunID
	}

	return &prepared{gen: gen, res: res, size: size}, nil
}

func (r *Runner) open(res *Result) (sink.WriteCloser, error) {
	out, err := sink.Open(r.cfg.Output, sink.Options{Dataset: res.Dataset, BatchSize: r.cfg.BatchSize})
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return out, nil
}

func (r *Runner) wrap(s pointgen.Sink, total int) pointgen.Sink {
	if r.Wrap == nil {
		return s
	}
	return r.Wrap(s, total)
}

// finish records dataset metadata for bbolt outputs and closes the sink.
// Stores are flushed first so the metadata only counts points actually written.
func (r *Runner) finish(out sink.WriteCloser, res *Result) error {
	store, ok := out.(*sink.Store)
	if !ok {
		if err := out.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
		res.Points = out.Count()
		return nil
	}

	if err := store.Flush(); err != nil {
		abort(out)
		return err
	}
	res.Points = store.Count()

	err := sink.SaveDataset(store.Backend(), sink.Dataset{
		Name:      res.Dataset,
		Generator: res.Generator,
		Size:      res.Size,
		Seed:      res.Seed,
		Points:    res.Points,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		abort(out)
		return fmt.Errorf("save dataset %s: %w", res.Dataset, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// abort closes out after a failed run. Stores discard their partial dataset.
func abort(out sink.WriteCloser) {
	var err error
	if store, ok := out.(*sink.Store); ok {
		err = store.Abort()
	} else {
		err = out.Close()
	}
	if err != nil {
		log.Printf("[GENERATOR] Failed to clean up output: %v", err)
	}
}

// Generate fills the configured output directly from the generator
func (r *Runner) Generate(ctx context.Context) (*Result, error) {
	p, err := r.prepare()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := r.open(p.res)
	if err != nil {
		return nil, err
	}

	total := p.gen.PointCount(p.size)
	log.Printf("[GENERATOR] %s: generating %d points (size %d, seed %d)", p.res.Generator, total, p.size, p.res.Seed)

	start := time.Now()
	if err := p.gen.Fill(r.wrap(out, total), p.size); err != nil {
		abort(out)
		return nil, fmt.Errorf("fill %s: %w", p.res.Generator, err)
	}
	p.res.InitTime = time.Since(start)

	if err := r.finish(out, p.res); err != nil {
		return nil, err
	}

	log.Printf("[GENERATOR] %s: wrote %d points in %v", p.res.Generator, p.res.Points, p.res.InitTime)
	return p.res, nil
}

// Run generates the data up front, times handing it to the output sink,
// then replays precomputed frames and records frame-time statistics.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	p, err := r.prepare()
	if err != nil {
		return nil, err
	}
	res := p.res

	total := p.gen.PointCount(p.size)
	staging := pointgen.NewListModel(total)
	if err := p.gen.Fill(staging, p.size); err != nil {
		return nil, fmt.Errorf("fill %s: %w", res.Generator, err)
	}

	out, err := r.open(res)
	if err != nil {
		return nil, err
	}

	title := graphTitles[res.Generator]
	r.report.Linef("%s: setting %d points", title, total)

	// Only the hand-off to the sink is timed
	target := r.wrap(out, total)
	start := time.Now()
	for i := 0; i < staging.Len(); i++ {
		if err := target.Append(staging.At(i)); err != nil {
			abort(out)
			return nil, fmt.Errorf("load point %d: %w", i, err)
		}
	}
	res.InitTime = time.Since(start)

	if err := r.finish(out, res); err != nil {
		return nil, err
	}
	r.report.Linef("Took %d nanoseconds", res.InitTime.Nanoseconds())

	if err := r.replay(ctx, p, staging); err != nil {
		return nil, err
	}

	err = r.report.Measure(report.Measurement{
		GraphType:     title,
		Points:        total,
		Optimization:  r.cfg.Bench.Optimization,
		MSAASamples:   r.cfg.Bench.MSAASamples,
		ShadowQuality: r.cfg.Bench.ShadowQuality,
		InitTime:      res.InitTime,
		AverageFPS:    res.AverageFPS,
	})
	if err != nil {
		return nil, fmt.Errorf("write measurement: %w", err)
	}

	log.Printf("[BENCH] Run %s finished: %d frames, p50 %v, p99 %v, %.2f fps",
		res.RunID, res.Frames, res.FrameP50, res.FrameP99, res.AverageFPS)
	return res, nil
}

// replay cycles the frame cache through model, timing each full frame update
func (r *Runner) replay(ctx context.Context, p *prepared, model *pointgen.ListModel) error {
	bc := r.cfg.Bench
	if bc.Frames == 0 {
		return nil
	}

	cache, err := pointgen.BuildFrames(ctx, p.res.Generator, p.size, bc.CacheFrames)
	if err != nil {
		return err
	}
	log.Printf("[BENCH] Built %d cached frames for %s", cache.Len(), p.res.Generator)

	sketch, err := ddsketch.NewDefaultDDSketch(bc.Accuracy)
	if err != nil {
		return fmt.Errorf("create sketch: %w", err)
	}

	var elapsed time.Duration
	for i := 0; i < bc.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		model.Reset()
		if err := cache.Replay(model); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		d := time.Since(start)

		elapsed += d
		if err := sketch.Add(float64(d)); err != nil {
			return fmt.Errorf("record frame %d: %w", i, err)
		}
	}

	qs, err := sketch.GetValuesAtQuantiles([]float64{0.50, 0.90, 0.99})
	if err != nil {
		return fmt.Errorf("frame quantiles: %w", err)
	}

	res := p.res
	res.Frames = bc.Frames
	res.FrameP50 = time.Duration(qs[0])
	res.FrameP90 = time.Duration(qs[1])
	res.FrameP99 = time.Duration(qs[2])
	if elapsed > 0 {
		res.AverageFPS = float64(bc.Frames) / elapsed.Seconds()
	}
	return nil
}
