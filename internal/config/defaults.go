package config

// Defaults for values that are not set by file or environment.
const (
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultDelimiter      = ","
	DefaultEventSink      = SinkNone
	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisStream    = "gradebook:events"
	DefaultDedupeTTLHours = 24
	DefaultTemporalHost   = "localhost:7233"
	DefaultNamespace      = "default"
	DefaultTaskQueue      = "gradebook-reports"

	// DefaultActivityTimeoutSeconds bounds one GenerateReport attempt.
	DefaultActivityTimeoutSeconds = 600
)

// DefaultConfig returns the configuration used when nothing else is set.
// It reproduces the original command-line behavior: comma-delimited input,
// incomplete rows dropped, compact JSON output and no event sink.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Input: InputConfig{
			Delimiter:      DefaultDelimiter,
			DropIncomplete: true,
		},
		Events: EventsConfig{
			Sink: DefaultEventSink,
			Redis: RedisConfig{
				Addr:           DefaultRedisAddr,
				Stream:         DefaultRedisStream,
				DedupeTTLHours: DefaultDedupeTTLHours,
			},
		},
		Temporal: TemporalConfig{
			HostPort:               DefaultTemporalHost,
			Namespace:              DefaultNamespace,
			TaskQueue:              DefaultTaskQueue,
			ActivityTimeoutSeconds: DefaultActivityTimeoutSeconds,
		},
	}
}
