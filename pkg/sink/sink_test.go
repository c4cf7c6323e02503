package sink

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pkg.jsn.cam/pointgen/pkg/pointgen"
	"pkg.jsn.cam/pointgen/pkg/storage"
)

func generate(t *testing.T, s pointgen.Sink, n int) []pointgen.Point {
	t.Helper()

	model := pointgen.NewListModel(n)
	if err := pointgen.Generate(model, n, pointgen.NewRand(11)); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, p := range model.Points() {
		if err := s.Append(p); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	return model.Points()
}

func samePoints(t *testing.T, got, want []pointgen.Point) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStoreRoundTrip(t *testing.T) {
	backend := storage.NewMemoryBackend()

	s, err := NewStore(backend, "run1", 7)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	want := generate(t, s, 50)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if s.Count() != 50 {
		t.Errorf("Count = %d, want 50", s.Count())
	}

	got, err := LoadPoints(backend, "run1")
	if err != nil {
		t.Fatalf("LoadPoints failed: %v", err)
	}
	samePoints(t, got, want)

	if err := s.Append(pointgen.Point{}); !errors.Is(err, ErrSinkClosed) {
		t.Errorf("Append after Close: got %v, want ErrSinkClosed", err)
	}
}

func TestStoreBboltAppendsAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.db")

	var want []pointgen.Point
	for i := 0; i < 2; i++ {
		s, err := Open(path, Options{Dataset: "bench", BatchSize: 16})
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		want = append(want, generate(t, s, 40)...)
		if err := s.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	backend, err := storage.NewBboltBackend(path)
	if err != nil {
		t.Fatalf("NewBboltBackend failed: %v", err)
	}
	defer backend.Close()

	got, err := LoadPoints(backend, "bench")
	if err != nil {
		t.Fatalf("LoadPoints failed: %v", err)
	}
	// Same seed in both sessions, so the second half repeats the first
	samePoints(t, got, want)
}

func TestStoreReservedName(t *testing.T) {
	if _, err := NewStore(storage.NewMemoryBackend(), metaBucketName, 0); !errors.Is(err, ErrReservedDataset) {
		t.Errorf("got error %v, want ErrReservedDataset", err)
	}
}

func TestStoreCountsFlushedPoints(t *testing.T) {
	s, err := NewStore(storage.NewMemoryBackend(), "run", 10)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer s.Close()

	generate(t, s, 25)
	if s.Count() != 20 {
		t.Errorf("Count before Flush = %d, want the 20 flushed points", s.Count())
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if s.Count() != 25 {
		t.Errorf("Count after Flush = %d, want 25", s.Count())
	}
}

func TestStoreFlushFailureNotCounted(t *testing.T) {
	backend := storage.NewMemoryBackend()
	s, err := NewStore(backend, "gone", 4)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	generate(t, s, 2)
	backend.DeleteBucket([]byte("gone"))

	if err := s.Flush(); !errors.Is(err, storage.ErrBucketNotFound) {
		t.Errorf("Flush into a deleted bucket: got %v, want ErrBucketNotFound", err)
	}
	if s.Count() != 0 {
		t.Errorf("Count = %d after a failed flush, want 0", s.Count())
	}
}

func TestStoreAbort(t *testing.T) {
	backend := storage.NewMemoryBackend()

	s, err := NewStore(backend, "half", 10)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	generate(t, s, 55)
	if err := SaveDataset(backend, Dataset{Name: "half", Points: 50}); err != nil {
		t.Fatalf("SaveDataset failed: %v", err)
	}

	if err := s.Abort(); err != nil {
		t.Fatalf("Abort failed: %v", err)
	}
	if exists, _ := backend.BucketExists([]byte("half")); exists {
		t.Error("Abort should delete the dataset bucket")
	}
	if _, err := GetDataset(backend, "half"); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("GetDataset after Abort: got %v, want ErrDatasetNotFound", err)
	}
	if err := s.Append(pointgen.Point{}); !errors.Is(err, ErrSinkClosed) {
		t.Errorf("Append after Abort: got %v, want ErrSinkClosed", err)
	}
}

func TestForEachPoint(t *testing.T) {
	backend := storage.NewMemoryBackend()
	s, err := NewStore(backend, "run", 3)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	want := generate(t, s, 10)
	s.Close()

	var seqs []uint64
	err = ForEachPoint(backend, "run", func(seq uint64, p pointgen.Point) error {
		if p != want[seq-1] {
			t.Errorf("point %d = %+v, want %+v", seq, p, want[seq-1])
		}
		seqs = append(seqs, seq)
		if len(seqs) == 4 {
			return ErrStop
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachPoint failed: %v", err)
	}
	if len(seqs) != 4 || seqs[0] != 1 || seqs[3] != 4 {
		t.Errorf("visited sequences %v, want 1..4", seqs)
	}

	if err := ForEachPoint(backend, "missing", func(uint64, pointgen.Point) error { return nil }); !errors.Is(err, storage.ErrBucketNotFound) {
		t.Errorf("ForEachPoint on a missing dataset: got %v, want ErrBucketNotFound", err)
	}
}

func TestDropBucketWithoutMetadata(t *testing.T) {
	backend := storage.NewMemoryBackend()
	s, err := NewStore(backend, "orphan", 0)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	generate(t, s, 5)
	s.Close()
	SaveDataset(backend, Dataset{Name: "kept"})

	buckets, err := ListBuckets(backend)
	if err != nil {
		t.Fatalf("ListBuckets failed: %v", err)
	}
	if len(buckets) != 1 || buckets[0] != "orphan" {
		t.Errorf("ListBuckets = %v, want [orphan]", buckets)
	}

	if err := DropDataset(backend, "orphan"); err != nil {
		t.Fatalf("DropDataset on a bucket without metadata failed: %v", err)
	}
	if buckets, _ := ListBuckets(backend); len(buckets) != 0 {
		t.Errorf("ListBuckets after drop = %v, want none", buckets)
	}
	if _, err := GetDataset(backend, "kept"); err != nil {
		t.Errorf("unrelated metadata should survive: %v", err)
	}
}

func TestDatasets(t *testing.T) {
	backend := storage.NewMemoryBackend()

	if list, err := ListDatasets(backend); err != nil || len(list) != 0 {
		t.Fatalf("ListDatasets on empty backend = %v, %v", list, err)
	}

	created := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	for _, name := range []string{"b", "a"} {
		s, err := NewStore(backend, name, 0)
		if err != nil {
			t.Fatalf("NewStore failed: %v", err)
		}
		generate(t, s, 3)
		s.Close()

		ds := Dataset{Name: name, Generator: "uniform", Size: 3, Seed: 11, Points: s.Count(), CreatedAt: created}
		if err := SaveDataset(backend, ds); err != nil {
			t.Fatalf("SaveDataset failed: %v", err)
		}
	}

	list, err := ListDatasets(backend)
	if err != nil {
		t.Fatalf("ListDatasets failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "a" || list[1].Name != "b" {
		t.Fatalf("ListDatasets = %+v, want a then b", list)
	}

	ds, err := GetDataset(backend, "a")
	if err != nil {
		t.Fatalf("GetDataset failed: %v", err)
	}
	if ds.Points != 3 || !ds.CreatedAt.Equal(created) {
		t.Errorf("GetDataset = %+v", ds)
	}

	if err := DropDataset(backend, "a"); err != nil {
		t.Fatalf("DropDataset failed: %v", err)
	}
	if _, err := GetDataset(backend, "a"); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("GetDataset after drop: got %v, want ErrDatasetNotFound", err)
	}
	if exists, _ := backend.BucketExists([]byte("a")); exists {
		t.Error("dataset bucket should be deleted")
	}
	if err := DropDataset(backend, "a"); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("second DropDataset: got %v, want ErrDatasetNotFound", err)
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	c, err := NewCSV(&buf)
	if err != nil {
		t.Fatalf("NewCSV failed: %v", err)
	}
	c.Append(pointgen.Point{X: 0.5, Y: 0.25, Z: 0})
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if got, want := buf.String(), "x,y,z\n0.5,0.25,0\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCSVFileRoundTrip(t *testing.T) {
	for _, name := range []string{"points.csv", "points.csv.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			s, err := Open(path, Options{})
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			want := generate(t, s, 200)
			if err := s.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			got, err := ReadCSVFile(path)
			if err != nil {
				t.Fatalf("ReadCSVFile failed: %v", err)
			}
			samePoints(t, got, want)
		})
	}
}

func TestReadCSVMalformed(t *testing.T) {
	inputs := []string{
		"",
		"a,b,c\n",
		"x,y,z\n1,2\n",
		"x,y,z\n1,2,zz\n",
	}
	for _, in := range inputs {
		if _, err := ReadCSV(strings.NewReader(in)); !errors.Is(err, ErrMalformedCSV) {
			t.Errorf("ReadCSV(%q): got %v, want ErrMalformedCSV", in, err)
		}
	}
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "points.parquet")

	s, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	want := generate(t, s, parquetBatch+10)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if s.Count() != int64(len(want)) {
		t.Errorf("Count = %d, want %d", s.Count(), len(want))
	}

	got, err := ReadParquet(path)
	if err != nil {
		t.Fatalf("ReadParquet failed: %v", err)
	}
	samePoints(t, got, want)
}

func TestOpen(t *testing.T) {
	s, err := Open("", Options{})
	if err != nil {
		t.Fatalf("Open memory failed: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("Open(\"\") returned %T, want *Memory", s)
	}

	if _, err := Open("points.json", Options{}); !errors.Is(err, ErrUnsupportedSink) {
		t.Errorf("Open(.json): got %v, want ErrUnsupportedSink", err)
	}

	path := filepath.Join(t.TempDir(), "points.db")
	if _, err := Open(path, Options{}); !errors.Is(err, ErrUnsupportedSink) {
		t.Errorf("Open(.db) without dataset: got %v, want ErrUnsupportedSink", err)
	}
}
