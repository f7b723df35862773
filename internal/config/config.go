// Package config loads gradebook settings from defaults, an optional TOML
// file, an optional .env file and GRADEBOOK_* environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ahrav/go-gradebook/internal/table"
)

// ErrInvalidConfig is returned for unreadable or invalid configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GRADEBOOK_"

// Event sink kinds.
const (
	SinkNone  = "none"
	SinkLog   = "log"
	SinkRedis = "redis"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds all gradebook settings.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Input    InputConfig    `toml:"input"`
	Output   OutputConfig   `toml:"output"`
	Events   EventsConfig   `toml:"events"`
	Temporal TemporalConfig `toml:"temporal"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=text json"`
}

// InputConfig controls how tables are read.
type InputConfig struct {
	// Delimiter is the single CSV field separator.
	Delimiter      string `toml:"delimiter" validate:"required"`
	DropIncomplete bool   `toml:"drop_incomplete"`
	S3Region       string `toml:"s3_region"`
}

// OutputConfig controls how reports are written.
type OutputConfig struct {
	// Indent pretty-prints the report; empty writes compact JSON.
	Indent string `toml:"indent"`
}

// EventsConfig selects where report events go.
type EventsConfig struct {
	Sink  string      `toml:"sink" validate:"oneof=none log redis"`
	Redis RedisConfig `toml:"redis"`
}

// RedisConfig configures the Redis stream sink.
type RedisConfig struct {
	Addr           string `toml:"addr" validate:"required_if=Enabled true"`
	Password       string `toml:"password"`
	DB             int    `toml:"db" validate:"min=0"`
	Stream         string `toml:"stream" validate:"required"`
	MaxLen         int64  `toml:"max_len" validate:"min=0"`
	DedupeTTLHours int    `toml:"dedupe_ttl_hours" validate:"min=1"`

	// Enabled is derived from Events.Sink and never read from the file.
	Enabled bool `toml:"-"`
}

// DedupeTTL returns the idempotency marker lifetime.
func (r RedisConfig) DedupeTTL() time.Duration {
	return time.Duration(r.DedupeTTLHours) * time.Hour
}

// TemporalConfig configures worker and submit modes.
type TemporalConfig struct {
	HostPort               string `toml:"host_port" validate:"required,hostname_port"`
	Namespace              string `toml:"namespace" validate:"required"`
	TaskQueue              string `toml:"task_queue" validate:"required"`
	ActivityTimeoutSeconds int    `toml:"activity_timeout_seconds" validate:"min=1,max=86400"`
}

// TableOptions converts the input section to loader options.
func (c *Config) TableOptions() table.Options {
	opts := table.DefaultOptions()
	r, _ := utf8.DecodeRuneInString(c.Input.Delimiter)
	opts.Delimiter = r
	opts.DropIncomplete = c.Input.DropIncomplete
	return opts
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	c.Events.Redis.Enabled = c.Events.Sink == SinkRedis
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if utf8.RuneCountInString(c.Input.Delimiter) != 1 {
		return fmt.Errorf("%w: input.delimiter must be a single character, got %q",
			ErrInvalidConfig, c.Input.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(c.Input.Delimiter)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return fmt.Errorf("%w: input.delimiter %q is not allowed", ErrInvalidConfig, c.Input.Delimiter)
	}
	return nil
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment are used. A missing .env file is ignored.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: load .env: %w", ErrInvalidConfig, err)
	}

	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

// applyEnv overlays GRADEBOOK_* variables onto c.
func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(dst *string) func(string) error {
		return func(v string) error { *dst = v; return nil }
	}
	num := func(dst *int) func(string) error {
		return func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		}
	}

	overrides := []struct {
		key string
		set func(string) error
	}{
		{"LOG_LEVEL", str(&c.Log.Level)},
		{"LOG_FORMAT", str(&c.Log.Format)},
		{"INPUT_DELIMITER", str(&c.Input.Delimiter)},
		{"INPUT_DROP_INCOMPLETE", func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			c.Input.DropIncomplete = b
			return nil
		}},
		{"S3_REGION", str(&c.Input.S3Region)},
		{"OUTPUT_INDENT", str(&c.Output.Indent)},
		{"EVENTS_SINK", str(&c.Events.Sink)},
		{"REDIS_ADDR", str(&c.Events.Redis.Addr)},
		{"REDIS_PASSWORD", str(&c.Events.Redis.Password)},
		{"REDIS_DB", num(&c.Events.Redis.DB)},
		{"REDIS_STREAM", str(&c.Events.Redis.Stream)},
		{"TEMPORAL_HOST_PORT", str(&c.Temporal.HostPort)},
		{"TEMPORAL_NAMESPACE", str(&c.Temporal.Namespace)},
		{"TEMPORAL_TASK_QUEUE", str(&c.Temporal.TaskQueue)},
		{"TEMPORAL_ACTIVITY_TIMEOUT_SECONDS", num(&c.Temporal.ActivityTimeoutSeconds)},
	}

	for _, o := range overrides {
		v, ok := lookup(EnvPrefix + o.key)
		if !ok {
			continue
		}
		if err := o.set(v); err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, o.key, err)
		}
	}
	return nil
}
