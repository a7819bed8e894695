package jobboard

import (
	"os"
	"strconv"
	"time"
)

// Config represents job board configuration.
type Config struct {
	// Time box for one OnTick pass over the pending queue (default: 4ms).
	// The pass stops once this much time has elapsed; the rest waits for
	// the next tick.
	TickBudget time.Duration

	// Weight of the z axis in squared distances (default: 3).
	// Larger values make workers prefer jobs on their own level.
	ZWeight int

	// Codec used to encode job records in key-value backends (default: "json").
	RecordCodec string

	// Path to a YAML catalog. Empty means the embedded catalog.
	CatalogPath string
}

// DefaultConfig returns the built-in defaults without reading the environment.
func DefaultConfig() *Config {
	return &Config{
		TickBudget:  4 * time.Millisecond,
		ZWeight:     3,
		RecordCodec: CodecNameJSON,
	}
}

// LoadConfig loads job board configuration from environment variables.
// It reads the following environment variables:
//   - JOBBOARD_TICK_BUDGET: OnTick time box (default: 4ms)
//   - JOBBOARD_Z_WEIGHT: z-axis distance weight (default: 3)
//   - JOBBOARD_RECORD_CODEC: "json" or "msgpack" (default: json)
//   - JOBBOARD_CATALOG: path to a YAML catalog (default: embedded)
//
// The tick budget can be specified as:
//   - Integer number of milliseconds (e.g., "4" = 4ms)
//   - Duration string (e.g., "500us", "2ms")
//
// Returns a Config struct with default values if environment variables are not set.
func LoadConfig() *Config {
	defaults := DefaultConfig()
	cfg := &Config{
		TickBudget:  getEnvDuration("JOBBOARD_TICK_BUDGET", defaults.TickBudget),
		ZWeight:     getEnvInt("JOBBOARD_Z_WEIGHT", defaults.ZWeight),
		RecordCodec: getEnvString("JOBBOARD_RECORD_CODEC", defaults.RecordCodec),
		CatalogPath: getEnvString("JOBBOARD_CATALOG", ""),
	}

	return cfg
}

// Catalog loads the configured catalog.
func (c *Config) Catalog() (*Catalog, error) {
	if c.CatalogPath == "" {
		return DefaultCatalog()
	}
	return LoadCatalog(c.CatalogPath)
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
