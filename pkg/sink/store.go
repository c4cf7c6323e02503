package sink

import (
	"errors"
	"fmt"
	"log"

	"pkg.jsn.cam/pointgen/pkg/pointgen"
	"pkg.jsn.cam/pointgen/pkg/storage"
)

// DefaultBatchSize is the number of points buffered before a Store flushes
const DefaultBatchSize = 4096

// Store appends points to one bucket of a storage backend.
// Points are buffered and each batch is written in a single read-write transaction.
// Keys are the bucket's sequence numbers, so reading back preserves insertion order.
type Store struct {
	backend   storage.Backend
	bucket    []byte
	batch     [][]byte
	batchSize int
	count     int64
	owned     bool
	closed    bool
}

// NewStore creates the dataset bucket if needed and returns a sink writing into it.
// The backend stays owned by the caller.
func NewStore(backend storage.Backend, dataset string, batchSize int) (*Store, error) {
	if dataset == metaBucketName {
		return nil, fmt.Errorf("%w: %s", ErrReservedDataset, dataset)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if err := backend.CreateBucket([]byte(dataset)); err != nil {
		return nil, fmt.Errorf("create dataset %s: %w", dataset, err)
	}

	return &Store{
		backend:   backend,
		bucket:    []byte(dataset),
		batch:     make([][]byte, 0, batchSize),
		batchSize: batchSize,
	}, nil
}

// Append buffers p, flushing when the batch is full
func (s *Store) Append(p pointgen.Point) error {
	if s.closed {
		return ErrSinkClosed
	}

	data, err := storage.EncodeJSON(p)
	if err != nil {
		return err
	}
	s.batch = append(s.batch, data)

	if len(s.batch) >= s.batchSize {
		return s.Flush()
	}
	return nil
}

// Flush writes all buffered points in one transaction
func (s *Store) Flush() error {
	if len(s.batch) == 0 {
		return nil
	}

	err := s.backend.Update(func(tx storage.Transaction) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("%w: %s", storage.ErrBucketNotFound, s.bucket)
		}
		for _, data := range s.batch {
			if _, err := b.Append(data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("flush %d points to %s: %w", len(s.batch), s.bucket, err)
	}

	s.count += int64(len(s.batch))
	s.batch = s.batch[:0]
	return nil
}

// Count returns the number of points written to the backend so far.
// Buffered points are counted once Flush succeeds.
func (s *Store) Count() int64 {
	return s.count
}

// Dataset returns the name of the bucket being written
func (s *Store) Dataset() string {
	return string(s.bucket)
}

// Backend returns the backend the Store writes to
func (s *Store) Backend() storage.Backend {
	return s.backend
}

// Close flushes pending points. The backend is closed only if the Store opened it.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.Flush()
	if s.owned {
		if cerr := s.backend.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Abort drops buffered points and deletes the dataset bucket, leaving no
// partial dataset behind. The backend is closed only if the Store opened it.
func (s *Store) Abort() error {
	if s.closed {
		return ErrSinkClosed
	}
	s.closed = true
	s.batch = s.batch[:0]
	s.count = 0

	err := removeDataset(s.backend, s.Dataset())
	if err != nil {
		err = fmt.Errorf("discard dataset %s: %w", s.Dataset(), err)
	} else {
		log.Printf("[STORE] Discarded partial dataset %s", s.Dataset())
	}
	if s.owned {
		if cerr := s.backend.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ForEachPoint visits a dataset in insertion order with each point's
// 1-based sequence number. Returning ErrStop from fn ends the walk early.
func ForEachPoint(backend storage.Backend, dataset string, fn func(seq uint64, p pointgen.Point) error) error {
	err := storage.ForEachJSON(storage.NewJSONStore(backend), []byte(dataset), func(k []byte, p *pointgen.Point) error {
		seq, ok := storage.ParseSequenceKey(k)
		if !ok {
			return fmt.Errorf("key %x is not a sequence key", k)
		}
		return fn(seq, *p)
	})
	if err != nil && !errors.Is(err, ErrStop) {
		return fmt.Errorf("load dataset %s: %w", dataset, err)
	}
	return nil
}

// LoadPoints reads a dataset back in insertion order
func LoadPoints(backend storage.Backend, dataset string) ([]pointgen.Point, error) {
	var points []pointgen.Point
	err := ForEachPoint(backend, dataset, func(_ uint64, p pointgen.Point) error {
		points = append(points, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}
