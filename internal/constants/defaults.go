package constants

import "time"

// Polling cadence. The pending inbox is checked less often than the
// accepted inbox, and both get one initial run shortly after startup.
const (
	AcceptedPollInterval = 30 * time.Second
	PendingPollInterval  = 45 * time.Second
	KeepAliveInterval    = 30 * time.Minute
	InitialRunDelay      = 5 * time.Second
)

// Intra-cycle pacing. The settle delay gives the source time to
// materialize media metadata between the priming fetch and the
// authoritative fetch; the thread pace bounds request rate.
const (
	SettleDelayMin  = 5 * time.Second
	SettleDelayMax  = 7 * time.Second
	ThreadPaceDelay = 2 * time.Second
)

// Freshness window: items older than this are never delivered.
const FreshnessWindow = 60 * time.Minute

// Dedup ledger sizing. When the ledger would exceed the high-water
// mark, the oldest EvictBatch entries are dropped in one pass.
const (
	LedgerHighWater  = 1000
	LedgerEvictBatch = 500
)

// Timestamp plausibility bounds for unit disambiguation.
const (
	MinPlausibleYear = 2010
	MaxPlausibleYear = 2030
)

// Default retry and housekeeping values.
const (
	DefaultRetryBackoffMs        = 1000
	DefaultMaxBackoffMs          = 60000
	DefaultMaxAttempts           = 5
	DefaultRetentionDays         = 30
	DefaultDatabaseRetryAttempts = 3
	DefaultServerPort            = 8082
	DefaultGracefulShutdownSec   = 30
	DefaultHTTPTimeoutSec        = 30
	CleanupInterval              = 24 * time.Hour
)

// Destination rendering limits.
const (
	MaxBodyLength    = 2000
	MaxCaptionLength = 100
)
