package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Defaults for the optimizer knobs. HistogramBuckets trades estimate
// resolution against build cost; BufferPages feeds the join cost formulas.
const (
	DefaultHistogramBuckets = 100
	DefaultPageSize         = 4096
	DefaultBufferPages      = 50
	DefaultIndexLookupCost  = 1.0
)

// Config carries the optimizer configuration surface: histogram resolution,
// the buffer budget used by join cost formulas, and which physical join
// operator kinds are enabled for this build.
type Config struct {
	HistogramBuckets int     `yaml:"histogram_buckets"`
	PageSize         int64   `yaml:"page_size"`
	BufferPages      int64   `yaml:"buffer_pages"`
	IndexLookupCost  float64 `yaml:"index_lookup_cost"`

	// Join kinds that the cost model may consider. Deployments without
	// index metadata disable "index_nested_loop" here.
	EnabledJoins []string `yaml:"enabled_joins"`

	// SeqEndpoint is the Seq ingestion URL for structured logs.
	// Empty means console-only logging.
	SeqEndpoint string `yaml:"seq_endpoint"`
}

// Default returns a Config populated with the default knobs and all join
// kinds enabled.
func Default() *Config {
	return &Config{
		HistogramBuckets: DefaultHistogramBuckets,
		PageSize:         DefaultPageSize,
		BufferPages:      DefaultBufferPages,
		IndexLookupCost:  DefaultIndexLookupCost,
		EnabledJoins:     []string{"block_nested_loop", "index_nested_loop", "sort_merge"},
	}
}

// Load reads a YAML config file and overlays it on the defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects knob values the cost formulas cannot work with
func (c *Config) Validate() error {
	if c.HistogramBuckets < 1 {
		return errors.Newf("histogram_buckets must be >= 1, got %d", c.HistogramBuckets)
	}
	if c.PageSize < 1 {
		return errors.Newf("page_size must be >= 1, got %d", c.PageSize)
	}
	// Block nested loop needs two pages for input/output plus at least
	// one page of buffered outer tuples.
	if c.BufferPages < 3 {
		return errors.Newf("buffer_pages must be >= 3, got %d", c.BufferPages)
	}
	if c.IndexLookupCost < 0 {
		return errors.Newf("index_lookup_cost must be >= 0, got %f", c.IndexLookupCost)
	}
	return nil
}

// JoinEnabled reports whether a join kind name is enabled
func (c *Config) JoinEnabled(name string) bool {
	for _, j := range c.EnabledJoins {
		if j == name {
			return true
		}
	}
	return false
}
