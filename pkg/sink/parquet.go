package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"pkg.jsn.cam/pointgen/pkg/pointgen"
)

// pointRow is the Parquet row layout of a point
type pointRow struct {
	X float64 `parquet:"x"`
	Y float64 `parquet:"y"`
	Z float64 `parquet:"z"`
}

const parquetBatch = 8192

// Parquet writes points as zstd-compressed Parquet rows
type Parquet struct {
	file   *os.File
	writer *parquet.GenericWriter[pointRow]
	rows   []pointRow
	count  int64
	closed bool
}

// CreateParquet creates path, including missing parent directories
func CreateParquet(path string) (*Parquet, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	return &Parquet{
		file:   f,
		writer: parquet.NewGenericWriter[pointRow](f, parquet.Compression(&parquet.Zstd)),
		rows:   make([]pointRow, 0, parquetBatch),
	}, nil
}

// Append buffers p as a row, writing full batches through
func (p *Parquet) Append(pt pointgen.Point) error {
	if p.closed {
		return ErrSinkClosed
	}

	p.rows = append(p.rows, pointRow{X: pt.X, Y: pt.Y, Z: pt.Z})
	p.count++
	if len(p.rows) >= parquetBatch {
		return p.flush()
	}
	return nil
}

func (p *Parquet) flush() error {
	if len(p.rows) == 0 {
		return nil
	}
	if _, err := p.writer.Write(p.rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	p.rows = p.rows[:0]
	return nil
}

// Count returns the number of points accepted
func (p *Parquet) Count() int64 {
	return p.count
}

// Close writes remaining rows and the file footer
func (p *Parquet) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.flush(); err != nil {
		p.file.Close()
		return err
	}
	if err := p.writer.Close(); err != nil {
		p.file.Close()
		return fmt.Errorf("close writer: %w", err)
	}
	return p.file.Close()
}

// ReadParquet reads every point from a file written by a Parquet sink
func ReadParquet(path string) ([]pointgen.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[pointRow](f)
	defer reader.Close()

	rows := make([]pointRow, reader.NumRows())
	n := 0
	for n < len(rows) {
		read, err := reader.Read(rows[n:])
		n += read
		if errors.Is(err, io.EOF) || (err == nil && read == 0) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
	}

	points := make([]pointgen.Point, n)
	for i := 0; i < n; i++ {
		points[i] = pointgen.Point{X: rows[i].X, Y: rows[i].Y, Z: rows[i].Z}
	}
	return points, nil
}
