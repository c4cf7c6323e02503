package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"pkg.jsn.cam/pointgen/pkg/pointgen"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config describes one generate or bench run.
type Config struct {
	// Generator is a pointgen registry name.
	Generator string `yaml:"generator"`

	// Size is the generator size; nil means the generator's default.
	// Fractional values truncate and negatives clamp to zero, so an
	// explicit size of zero or less generates nothing.
	Size *Count `yaml:"size"`

	// Seed makes runs reproducible. Zero picks a random seed.
	Seed uint64 `yaml:"seed"`

	// Output selects the sink, see sink.Open.
	Output string `yaml:"output"`

	// Dataset names the bucket for bbolt outputs.
	Dataset string `yaml:"dataset"`

	// BatchSize is the number of points per bbolt transaction.
	BatchSize int `yaml:"batch_size"`

	// Bench configures frame replay and reporting.
	Bench BenchConfig `yaml:"bench"`
}

// BenchConfig configures the benchmark runner.
type BenchConfig struct {
	// Frames is the number of frame updates to time.
	Frames int `yaml:"frames"`

	// CacheFrames is the number of distinct precomputed frames cycled through.
	CacheFrames int `yaml:"cache_frames"`

	// ReportDir receives results.txt and measurements.csv. Empty disables the report.
	ReportDir string `yaml:"report_dir"`

	// Accuracy is the relative accuracy of frame-time quantiles (0.01 = 1%).
	Accuracy float64 `yaml:"accuracy"`

	// Labels copied into measurements.csv; they describe the renderer settings
	// the harness ran with.
	Optimization  string `yaml:"optimization"`
	MSAASamples   int    `yaml:"msaa_samples"`
	ShadowQuality string `yaml:"shadow_quality"`
}

// Count is a point count or size that accepts fractional and negative YAML values
type Count int

// UnmarshalYAML normalizes the scalar with pointgen.ParseCount
func (c *Count) UnmarshalYAML(node *yaml.Node) error {
	n, err := pointgen.ParseCount(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = Count(n)
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Generator: "uniform",
		Output:    "memory",
		BatchSize: 4096,
		Bench: BenchConfig{
			Frames:        300,
			CacheFrames:   60,
			Accuracy:      0.01,
			Optimization:  "default",
			MSAASamples:   0,
			ShadowQuality: "none",
		},
	}
}

// Load reads a YAML file on top of Default and validates the result.
// Environment variables in the file are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration, reporting every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := pointgen.Get(c.Generator); err != nil {
		errs = append(errs, fmt.Errorf("generator: %w", err))
	}
	if c.BatchSize < 0 {
		errs = append(errs, errors.New("batch_size must not be negative"))
	}
	if err := c.Bench.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bench: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Validate checks the bench settings.
func (b *BenchConfig) Validate() error {
	var errs []error

	if b.Frames < 0 {
		errs = append(errs, errors.New("frames must not be negative"))
	}
	if b.Frames > 0 && b.CacheFrames <= 0 {
		errs = append(errs, errors.New("cache_frames must be positive when frames are replayed"))
	}
	if b.Accuracy <= 0 || b.Accuracy >= 1 {
		errs = append(errs, errors.New("accuracy must be in (0, 1)"))
	}
	if b.MSAASamples < 0 {
		errs = append(errs, errors.New("msaa_samples must not be negative"))
	}

	return errors.Join(errs...)
}

// SetSize sets an explicit generator size, normalizing negatives to zero
func (c *Config) SetSize(n int) {
	size := Count(max(n, 0))
	c.Size = &size
}

// SizeFor returns the configured size, or the generator's default when unset
func (c *Config) SizeFor(gen pointgen.Generator) int {
	if c.Size == nil {
		return gen.DefaultSize()
	}
	return max(int(*c.Size), 0)
}
