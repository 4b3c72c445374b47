// Package config loads the simulator settings from flags, environment
// variables, .env files, and an optional YAML file, using Viper.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Keys understood by Load. Environment variables use the EnvPrefix and upper
// case, e.g. DMCACHE_MEMORY_BLOCKS.
const (
	KeyLines        = "lines"
	KeyMemoryBlocks = "memory_blocks"
	KeySeed         = "seed"
	KeyTick         = "tick"
	KeyRecord       = "record"
	KeyRecordPath   = "record_path"
	KeyMonitor      = "monitor"
	KeyMonitorPort  = "monitor_port"
	KeyOpenBrowser  = "open_browser"
	KeyVerbose      = "verbose"

	EnvPrefix  = "DMCACHE"
	ConfigName = "dmcache"
)

// Defaults.
const (
	DefaultNumLines     = 4
	DefaultMemoryBlocks = 1024
	MinMemoryBlocks     = 1024
)

// Config holds the settings of a simulator run.
type Config struct {
	NumLines     int
	MemoryBlocks int
	Seed         int64
	HasSeed      bool
	TickInterval time.Duration
	Record       bool
	RecordPath   string
	Monitor      bool
	MonitorPort  int
	OpenBrowser  bool
	Verbose      bool
}

// ErrInvalidMemoryBlocks is wrapped by the warning that ParseMemoryBlocks
// returns when it falls back to the default.
var ErrInvalidMemoryBlocks = errors.New("invalid number of memory blocks")

// ParseMemoryBlocks reads a user supplied number of memory blocks. Input that
// is not a number, or is below MinMemoryBlocks, yields DefaultMemoryBlocks and
// a non-nil warning.
func ParseMemoryBlocks(raw string) (int, error) {
	blocks, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultMemoryBlocks,
			fmt.Errorf("%w: %q is not a number", ErrInvalidMemoryBlocks, raw)
	}

	if blocks < MinMemoryBlocks {
		return DefaultMemoryBlocks,
			fmt.Errorf("%w: %d is below the minimum of %d",
				ErrInvalidMemoryBlocks, blocks, MinMemoryBlocks)
	}

	return blocks, nil
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLines, DefaultNumLines)
	v.SetDefault(KeyMemoryBlocks, strconv.Itoa(DefaultMemoryBlocks))
	v.SetDefault(KeyTick, time.Duration(0))
	v.SetDefault(KeyRecord, false)
	v.SetDefault(KeyRecordPath, "")
	v.SetDefault(KeyMonitor, false)
	v.SetDefault(KeyMonitorPort, 0)
	v.SetDefault(KeyOpenBrowser, false)
	v.SetDefault(KeyVerbose, false)
}

// NewViper creates a Viper instance with defaults, environment binding, and
// the config file loaded. An empty configFile searches for dmcache.yaml in the
// working directory; not finding one is not an error.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return v, nil
}

// LoadDotEnv loads environment variables from the given .env files, or from
// ./.env when none is given. Missing files are skipped. Variables that are
// already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		_, err := os.Stat(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		err = godotenv.Load(p)
		if err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}

	return nil
}

// Load reads a Config out of v. An invalid number of memory blocks is logged
// and replaced by the default rather than failing.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		NumLines:     v.GetInt(KeyLines),
		Seed:         v.GetInt64(KeySeed),
		HasSeed:      v.IsSet(KeySeed),
		TickInterval: v.GetDuration(KeyTick),
		Record:       v.GetBool(KeyRecord),
		RecordPath:   v.GetString(KeyRecordPath),
		Monitor:      v.GetBool(KeyMonitor),
		MonitorPort:  v.GetInt(KeyMonitorPort),
		OpenBrowser:  v.GetBool(KeyOpenBrowser),
		Verbose:      v.GetBool(KeyVerbose),
	}

	blocks, err := ParseMemoryBlocks(v.GetString(KeyMemoryBlocks))
	if err != nil {
		log.Printf("Warning: %v. Using default (%d blocks).",
			err, DefaultMemoryBlocks)
	}

	c.MemoryBlocks = blocks

	err = c.Validate()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate checks the values that cannot fall back to a default.
func (c Config) Validate() error {
	if c.NumLines <= 0 {
		return fmt.Errorf("number of cache lines must be positive, got %d",
			c.NumLines)
	}

	if c.TickInterval < 0 {
		return fmt.Errorf("tick interval must not be negative, got %s",
			c.TickInterval)
	}

	if c.MonitorPort < 0 {
		return fmt.Errorf("monitor port must not be negative, got %d",
			c.MonitorPort)
	}

	return nil
}
