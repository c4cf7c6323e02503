package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"

	"pkg.jsn.cam/pointgen/internal/bench"
	"pkg.jsn.cam/pointgen/internal/config"
	"pkg.jsn.cam/pointgen/internal/report"
	"pkg.jsn.cam/pointgen/pkg/pointgen"
)

/*generates random 3D point data for rendering benchmarks*/

const usage = `usage: pointgen <command> [flags]

commands:
  generate   fill an output sink with generated points
  bench      time loading generated points and replaying animation frames
  list       show available generators
  datasets   list datasets stored in a bbolt file
  show       print points of a stored dataset
  drop       delete a stored dataset
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := os.Args[2:]
	switch os.Args[1] {
	case "generate":
		runGenerate(ctx, args)
	case "bench":
		runBench(ctx, args)
	case "list":
		listGenerators()
	case "datasets":
		runDatasets(args)
	case "show":
		runShow(args)
	case "drop":
		runDrop(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
}

// runFlags are shared by generate and bench; only flags set explicitly override the config file
type runFlags struct {
	fs         *flag.FlagSet
	configPath *string
	generator  *string
	size       *string
	seed       *uint64
	output     *string
	dataset    *string
	batch      *int
}

func newRunFlags(name string) *runFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &runFlags{
		fs:         fs,
		configPath: fs.String("config", "", "YAML run configuration"),
		generator:  fs.String("generator", "uniform", "Generator name (see 'pointgen list')"),
		size:       fs.String("size", "", "Generator size (default: the generator's own)"),
		seed:       fs.Uint64("seed", 0, "Random seed; 0 picks one"),
		output:     fs.String("output", "memory", "Output: memory, *.db, *.csv, *.csv.zst or *.parquet"),
		dataset:    fs.String("dataset", "", "Dataset name for bbolt outputs (default: run ID)"),
		batch:      fs.Int("batch", 4096, "Points per bbolt transaction"),
	}
}

// load parses args and returns the merged configuration, exiting on error
func (f *runFlags) load(args []string, extra func(cfg *config.Config, name string)) *config.Config {
	cfg, err := f.parse(args, extra)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// parse reads the optional config file, then applies every flag set on the command line
func (f *runFlags) parse(args []string, extra func(cfg *config.Config, name string)) (*config.Config, error) {
	if err := f.fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := config.Default()
	if *f.configPath != "" {
		loaded, err := config.Load(*f.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	var errs []error
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "generator":
			cfg.Generator = *f.generator
		case "size":
			n, err := pointgen.ParseCount(*f.size)
			if err != nil {
				errs = append(errs, fmt.Errorf("-size: %w", err))
				return
			}
			cfg.SetSize(n)
		case "seed":
			cfg.Seed = *f.seed
		case "output":
			cfg.Output = *f.output
		case "dataset":
			cfg.Dataset = *f.dataset
		case "batch":
			cfg.BatchSize = *f.batch
		default:
			if extra != nil {
				extra(cfg, fl.Name)
			}
		}
	})
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runGenerate(ctx context.Context, args []string) {
	f := newRunFlags("generate")
	progress := f.fs.Bool("progress", false, "Show a progress bar")
	cfg := f.load(args, nil)

	r := bench.New(cfg, nil)
	if *progress {
		r.Wrap = newProgressSink
	}

	res, err := r.Generate(ctx)
	if err != nil {
		log.Fatalf("Generate failed: %v", err)
	}
	printResult(res)
}

func runBench(ctx context.Context, args []string) {
	f := newRunFlags("bench")
	frames := f.fs.Int("frames", 300, "Frame updates to time")
	cache := f.fs.Int("cache", 60, "Distinct precomputed frames")
	reportDir := f.fs.String("report", "", "Directory for results.txt and measurements.csv")
	optimization := f.fs.String("optimization", "default", "Optimization label for the measurements")
	msaa := f.fs.Int("msaa", 0, "MSAA samples label for the measurements")
	shadow := f.fs.String("shadow", "none", "Shadow quality label for the measurements")

	cfg := f.load(args, func(cfg *config.Config, name string) {
		switch name {
		case "frames":
			cfg.Bench.Frames = *frames
		case "cache":
			cfg.Bench.CacheFrames = *cache
		case "report":
			cfg.Bench.ReportDir = *reportDir
		case "optimization":
			cfg.Bench.Optimization = *optimization
		case "msaa":
			cfg.Bench.MSAASamples = *msaa
		case "shadow":
			cfg.Bench.ShadowQuality = *shadow
		}
	})

	var rep *report.Reporter
	if cfg.Bench.ReportDir != "" {
		var err error
		rep, err = report.Open(cfg.Bench.ReportDir)
		if err != nil {
			log.Fatalf("Failed to open report: %v", err)
		}
		defer rep.Close()
	}

	res, err := bench.New(cfg, rep).Run(ctx)
	if err != nil {
		rep.Close()
		log.Fatalf("Bench failed: %v", err)
	}
	printResult(res)
}

func listGenerators() {
	fmt.Printf("%-10s %-12s %s\n", "NAME", "DEFAULT SIZE", "DESCRIPTION")
	fmt.Println("─────────────────────────────────────────────────────────────────────")
	for _, name := range pointgen.List() {
		gen, _ := pointgen.Get(name)
		fmt.Printf("%-10s %-12s %s\n", name, strconv.Itoa(gen.DefaultSize()), gen.Description())
	}
}
