package fqsim

import (
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// Precision selects the amplitude type of a simulation.
type Precision string

const (
	Single Precision = "single"
	Double Precision = "double"
)

type Config struct {
	Precision         Precision
	Workers           int
	MinChunk          int
	MaxQubits         int
	MaxMemoryFraction float64
	Seed              uint64
	DriftTolerance    float64
}

/*
NewConfig returns the defaults: double precision, one worker per CPU,
chunks of at least 4096 indices, at most 30 qubits using up to 90% of
available memory, a random seed and a drift tolerance of 1e-6.
*/
func NewConfig() *Config {
	return &Config{
		Precision:         Double,
		Workers:           runtime.NumCPU(),
		MinChunk:          1 << 12,
		MaxQubits:         30,
		MaxMemoryFraction: 0.9,
		Seed:              0,
		DriftTolerance:    1e-6,
	}
}

/*
LoadConfig reads simulator settings from v, falling back to NewConfig
defaults for every key that is not set. Keys: precision, workers,
min_chunk, max_qubits, max_memory_fraction, seed, drift_tolerance.
*/
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := NewConfig()

	v.SetDefault("precision", string(cfg.Precision))
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("min_chunk", cfg.MinChunk)
	v.SetDefault("max_qubits", cfg.MaxQubits)
	v.SetDefault("max_memory_fraction", cfg.MaxMemoryFraction)
	v.SetDefault("seed", cfg.Seed)
	v.SetDefault("drift_tolerance", cfg.DriftTolerance)

	cfg.Precision = Precision(v.GetString("precision"))
	cfg.Workers = v.GetInt("workers")
	cfg.MinChunk = v.GetInt("min_chunk")
	cfg.MaxQubits = v.GetInt("max_qubits")
	cfg.MaxMemoryFraction = v.GetFloat64("max_memory_fraction")
	cfg.Seed = v.GetUint64("seed")
	cfg.DriftTolerance = v.GetFloat64("drift_tolerance")

	return cfg, cfg.Validate()
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Precision != Single && c.Precision != Double:
		return fmt.Errorf("%w: precision %q, want %q or %q", ErrInvalidArgument, c.Precision, Single, Double)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidArgument, c.Workers)
	case c.MinChunk < 1:
		return fmt.Errorf("%w: min_chunk must be positive, got %d", ErrInvalidArgument, c.MinChunk)
	case c.MaxQubits < 1 || c.MaxQubits > 62:
		return fmt.Errorf("%w: max_qubits must be in [1, 62], got %d", ErrInvalidArgument, c.MaxQubits)
	case c.MaxMemoryFraction <= 0 || c.MaxMemoryFraction > 1:
		return fmt.Errorf("%w: max_memory_fraction must be in (0, 1], got %v", ErrInvalidArgument, c.MaxMemoryFraction)
	case c.DriftTolerance < 0:
		return fmt.Errorf("%w: drift_tolerance must not be negative", ErrInvalidArgument)
	}
	return nil
}
