package sink

import (
	"fmt"
	"strings"

	"pkg.jsn.cam/pointgen/pkg/pointgen"
	"pkg.jsn.cam/pointgen/pkg/storage"
)

// WriteCloser is a sink that owns a resource and reports how much it received
type WriteCloser interface {
	pointgen.Sink
	Count() int64
	Close() error
}

// Options configures Open
type Options struct {
	// Dataset names the bucket used by bbolt sinks
	Dataset string

	// BatchSize is the number of points per bbolt transaction
	BatchSize int
}

// Memory is a ListModel that satisfies WriteCloser
type Memory struct {
	*pointgen.ListModel
}

// NewMemory returns an in-memory sink with room for capacity points
func NewMemory(capacity int) *Memory {
	return &Memory{ListModel: pointgen.NewListModel(capacity)}
}

func (m *Memory) Count() int64 {
	return int64(m.Len())
}

func (m *Memory) Close() error {
	return nil
}

// Open picks a sink from the output path:
//
//	""/"memory"         in-memory list model
//	*.db, *.bolt        bbolt dataset (Options.Dataset names the bucket)
//	*.csv, *.csv.zst    CSV, optionally zstd-compressed
//	*.parquet           Parquet
func Open(path string, opts Options) (WriteCloser, error) {
	switch {
	case path == "" || path == "memory":
		return NewMemory(0), nil

	case IsBbolt(path):
		if opts.Dataset == "" {
			return nil, fmt.Errorf("%w: bbolt output %s needs a dataset name", ErrUnsupportedSink, path)
		}
		backend, err := storage.NewBboltBackend(path)
		if err != nil {
			return nil, err
		}
		s, err := NewStore(backend, opts.Dataset, opts.BatchSize)
		if err != nil {
			backend.Close()
			return nil, err
		}
		s.owned = true
		return s, nil

	case strings.HasSuffix(path, ".csv") || strings.HasSuffix(path, ".csv.zst"):
		return CreateCSV(path)

	case strings.HasSuffix(path, ".parquet"):
		return CreateParquet(path)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSink, path)
}

// IsBbolt reports whether Open would treat path as a bbolt database
func IsBbolt(path string) bool {
	return strings.HasSuffix(path, ".db") || strings.HasSuffix(path, ".bolt")
}
