package appconfig

import (
	"time"

	"github.com/shopfloor-stats/backend/internal/app/appcontext"
)

type ConfigSpec struct {
	// ServiceAddress is the listen address would listen on for serving normal service requests.
	ServiceAddress string `required:"true" split_words:"true" default:"localhost:9030"`

	// LogJsonStdout is whether to log JSON logs (instead of pretty-print logs) to stdout for the ease of log collection.
	LogJsonStdout bool `split_words:"true" default:"false"`

	// LogFile is the path of the rotated log file. Leaving this empty disables file logging.
	LogFile string `split_words:"true" default:"logs/app.log"`

	// LogFileMaxSizeMB is the size in megabytes at which the log file is rotated.
	LogFileMaxSizeMB int `split_words:"true" default:"100"`

	// TrustedProxies is a list of trusted proxies that are trusted to report a real IP via the X-Forwarded-For header.
	TrustedProxies []string `required:"true" split_words:"true" default:"::1,127.0.0.1,10.0.0.0/8"`

	// DevMode to indicate development mode. When true, the program would spin up utilities for debugging and
	// log at trace level.
	DevMode bool `split_words:"true"`

	// PostgresDSN is the data source name for the PostgreSQL database. See
	// https://bun.uptrace.dev/postgres/#pgdriver for more details on how to construct a PostgreSQL DSN.
	PostgresDSN string `required:"true" split_words:"true"`

	PostgresMaxOpenConns    int           `split_words:"true" default:"10"`
	PostgresMaxIdleConns    int           `split_words:"true" default:"2"`
	PostgresConnMaxLifeTime time.Duration `split_words:"true" default:"5m"`
	PostgresConnMaxIdleTime time.Duration `split_words:"true" default:"5m"`

	BunDebugVerbose bool `split_words:"true"`

	// NatsURL is the URL of the NATS server. See https://pkg.go.dev/github.com/nats-io/nats.go#Connect
	// for more information on how to construct a NATS URL.
	NatsURL string `required:"true" split_words:"true" default:"nats://127.0.0.1:4222"`

	// RedisURL is the URL of the Redis server. See https://pkg.go.dev/github.com/redis/go-redis/v9#ParseURL
	// for more information on how to construct a Redis URL.
	RedisURL string `required:"true" split_words:"true" default:"redis://127.0.0.1:6379/0"`

	// SentryDSN is the DSN of the Sentry server. See https://pkg.go.dev/github.com/getsentry/sentry-go#ClientOptions
	SentryDSN string `split_words:"true"`

	// HTTPServerShutdownTimeout is the timeout for the HTTP server to shut down gracefully.
	HTTPServerShutdownTimeout time.Duration `required:"true" split_words:"true" default:"60s"`

	// QueryTimeout bounds a single dashboard or group computation, including its database round trips.
	QueryTimeout time.Duration `required:"true" split_words:"true" default:"15s"`

	// DashboardCacheTTL is how long a computed dashboard stays in redis. Entry mutations invalidate it earlier.
	DashboardCacheTTL time.Duration `required:"true" split_words:"true" default:"10m"`

	// ReferenceCacheTTL is how long master data (products, machines, ...) is kept in process memory.
	ReferenceCacheTTL time.Duration `required:"true" split_words:"true" default:"5m"`

	// GanttMaxDays is the largest range, in days between start and end date, rendered as a Gantt timeline.
	// Larger ranges are consolidated per machine.
	GanttMaxDays int `required:"true" split_words:"true" default:"7"`

	// SideEffectAttempts is how many times the material movement of a new entry is attempted
	// before the entry is compensated.
	SideEffectAttempts uint `required:"true" split_words:"true" default:"3"`

	// SectorRoles maps a sector role to the sector name that plays it, e.g.
	// `extrusion:Extrusão,thermoforming:Termoformagem`. Matching is case and accent insensitive.
	SectorRoles SectorRoleMap `split_words:"true" default:"extrusion:Extrusão,thermoforming:Termoformagem"`

	// WorkerEnabled is a flag to indicate whether to enable the background workers.
	WorkerEnabled bool `split_words:"true"`

	// WorkerInterval describes the interval in-between dashboard warm-up batches.
	WorkerInterval time.Duration `required:"true" split_words:"true" default:"10m"`
}

type Config struct {
	// ConfigSpec is the configuration specification injected to the config.
	ConfigSpec

	// AppContext is the application context
	AppContext appcontext.Ctx
}
