package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"pkg.jsn.cam/pointgen/internal/bench"
	"pkg.jsn.cam/pointgen/pkg/pointgen"
	"pkg.jsn.cam/pointgen/pkg/sink"
	"pkg.jsn.cam/pointgen/pkg/storage"
)

func printResult(res *bench.Result) {
	fmt.Printf("Run complete!\n")
	fmt.Printf("  Run ID:      %s\n", res.RunID)
	fmt.Printf("  Generator:   %s (size %d)\n", res.Generator, res.Size)
	fmt.Printf("  Seed:        %d\n", res.Seed)
	fmt.Printf("  Points:      %s\n", humanize.Comma(res.Points))
	fmt.Printf("  Load time:   %v\n", res.InitTime)
	if res.Dataset != "" {
		fmt.Printf("  Dataset:     %s\n", res.Dataset)
	}

	if res.Frames > 0 {
		fmt.Printf("\nFrames:\n")
		fmt.Printf("  Replayed:    %d\n", res.Frames)
		fmt.Printf("  p50/p90/p99: %v / %v / %v\n", res.FrameP50, res.FrameP90, res.FrameP99)
		fmt.Printf("  Average FPS: %.2f\n", res.AverageFPS)
	}
}

func openDB(fs *flag.FlagSet, args []string, needDataset bool) (*storage.BboltBackend, string) {
	dbPath := fs.String("db", "points.db", "bbolt database file")
	dataset := fs.String("dataset", "", "Dataset name")
	fs.Parse(args)

	if needDataset && *dataset == "" {
		log.Fatal("-dataset is required")
	}
	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("Database not found: %v", err)
	}

	backend, err := storage.NewBboltBackend(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return backend, *dataset
}

func runDatasets(args []string) {
	backend, _ := openDB(flag.NewFlagSet("datasets", flag.ExitOnError), args, false)
	defer backend.Close()

	list, err := sink.ListDatasets(backend)
	if err != nil {
		log.Fatalf("Failed to list datasets: %v", err)
	}
	buckets, err := sink.ListBuckets(backend)
	if err != nil {
		log.Fatalf("Failed to list buckets: %v", err)
	}
	if len(list) == 0 && len(buckets) == 0 {
		fmt.Println("No datasets found")
		return
	}

	if info, err := os.Stat(backend.Path()); err == nil {
		fmt.Printf("%s (%s)\n\n", backend.Path(), humanize.Bytes(uint64(info.Size())))
	}

	known := make(map[string]bool, len(list))
	fmt.Printf("%-36s %-10s %-8s %-12s %s\n", "DATASET", "GENERATOR", "SIZE", "POINTS", "CREATED")
	fmt.Println("─────────────────────────────────────────────────────────────────────────────────────────")
	for _, ds := range list {
		known[ds.Name] = true
		fmt.Printf("%-36s %-10s %-8d %-12s %s\n",
			ds.Name,
			ds.Generator,
			ds.Size,
			humanize.Comma(ds.Points),
			humanize.Time(ds.CreatedAt))
	}
	for _, name := range buckets {
		if !known[name] {
			fmt.Printf("%-36s %s\n", name, "(no metadata, remove with 'pointgen drop')")
		}
	}
}

func runShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum points to print; 0 prints all")
	backend, name := openDB(fs, args, true)
	defer backend.Close()

	ds, err := sink.GetDataset(backend, name)
	if err != nil {
		log.Fatalf("Failed to get dataset: %v", err)
	}
	fmt.Printf("Dataset %s: %s points from %s (size %d, seed %d)\n",
		ds.Name, humanize.Comma(ds.Points), ds.Generator, ds.Size, ds.Seed)
	fmt.Printf("%-8s %-22s %-22s %s\n", "SEQ", "X", "Y", "Z")

	shown := 0
	err = sink.ForEachPoint(backend, name, func(seq uint64, p pointgen.Point) error {
		if *limit > 0 && shown >= *limit {
			return sink.ErrStop
		}
		fmt.Printf("%-8d %-22g %-22g %g\n", seq, p.X, p.Y, p.Z)
		shown++
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to load points: %v", err)
	}
	if rest := ds.Points - int64(shown); rest > 0 {
		fmt.Printf("... %s more\n", humanize.Comma(rest))
	}
}

func runDrop(args []string) {
	backend, name := openDB(flag.NewFlagSet("drop", flag.ExitOnError), args, true)
	defer backend.Close()

	if err := sink.DropDataset(backend, name); err != nil {
		log.Fatalf("Failed to drop dataset: %v", err)
	}
	fmt.Printf("Dataset dropped: %s\n", name)
}
