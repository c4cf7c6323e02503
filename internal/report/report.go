package report

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

const (
	ResultsFile      = "results.txt"
	MeasurementsFile = "measurements.csv"
)

var measurementHeader = []string{
	"Graph type",
	"Number of points",
	"Optimization",
	"MSAA Samples",
	"Shadow Quality",
	"Init Time",
	"Average FPS",
}

// Measurement is one row of measurements.csv
type Measurement struct {
	GraphType     string
	Points        int
	Optimization  string
	MSAASamples   int
	ShadowQuality string
	InitTime      time.Duration
	AverageFPS    float64
}

func (m Measurement) record() []string {
	return []string{
		m.GraphType,
		strconv.Itoa(m.Points),
		m.Optimization,
		strconv.Itoa(m.MSAASamples),
		m.ShadowQuality,
		// milliseconds
		strconv.FormatFloat(float64(m.InitTime)/float64(time.Millisecond), 'f', 3, 64),
		strconv.FormatFloat(m.AverageFPS, 'f', 2, 64),
	}
}

// Reporter writes the human-readable results log and the measurements table.
// A nil *Reporter only logs, so callers need no branches when reporting is off.
type Reporter struct {
	mu      sync.Mutex
	dir     string
	results *os.File
	file    *os.File
	csv     *csv.Writer
}

// Open creates dir if needed and truncates both report files in it
func Open(dir string) (*Reporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	results, err := os.Create(filepath.Join(dir, ResultsFile))
	if err != nil {
		return nil, fmt.Errorf("create results file: %w", err)
	}

	file, err := os.Create(filepath.Join(dir, MeasurementsFile))
	if err != nil {
		results.Close()
		return nil, fmt.Errorf("create measurements file: %w", err)
	}

	r := &Reporter{dir: dir, results: results, file: file, csv: csv.NewWriter(file)}
	if err := r.csv.Write(measurementHeader); err != nil {
		r.Close()
		return nil, err
	}
	r.csv.Flush()

	log.Printf("[REPORT] Writing results to %s", dir)
	return r, nil
}

// Dir returns the report directory
func (r *Reporter) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

// Linef logs a formatted line and appends it to results.txt
func (r *Reporter) Linef(format string, args ...any) error {
	line := fmt.Sprintf(format, args...)
	log.Printf("[REPORT] %s", line)

	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := fmt.Fprintln(r.results, line)
	return err
}

// Measure appends m to measurements.csv
func (r *Reporter) Measure(m Measurement) error {
	log.Printf("[REPORT] %s: %d points, init %v, %.2f fps", m.GraphType, m.Points, m.InitTime, m.AverageFPS)

	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.csv.Write(m.record()); err != nil {
		return err
	}
	r.csv.Flush()
	return r.csv.Error()
}

// Close closes both files
func (r *Reporter) Close() error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.csv.Flush()
	err := r.csv.Error()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	if cerr := r.results.Close(); err == nil {
		err = cerr
	}
	return err
}
