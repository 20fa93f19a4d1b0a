package models

// Config is the full runtime configuration, loaded from the process
// environment (optionally seeded from a .env file).
type Config struct {
	Instagram Instagram
	Discord   Discord
	Database  Database
	Retry     RetryConfig
	Tracing   TracingConfig

	// TargetUsernames is the lowercased sender allow-list. Empty means
	// every thread is in scope.
	TargetUsernames []string

	LogLevel      string
	RetentionDays int
	ServerPort    int
}

// Instagram holds source-side credentials and endpoint configuration.
type Instagram struct {
	Username   string
	Password   string
	APIBaseURL string
}

// Discord holds destination-side configuration. GuildID absent disables
// channel creation entirely: the router then resolves nothing.
type Discord struct {
	Token      string
	GuildID    string
	CategoryID string
}

// Database holds the delivery archive configuration.
type Database struct {
	Path string
}

// RetryConfig holds exponential backoff tuning.
type RetryConfig struct {
	InitialBackoffMs int
	MaxBackoffMs     int
	MaxAttempts      int
}

// TracingConfig holds OpenTelemetry exporter configuration.
type TracingConfig struct {
	Enabled      bool
	UseStdout    bool
	OTLPEndpoint string
	ServiceName  string
	Environment  string
	SampleRate   float64
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
