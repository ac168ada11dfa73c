package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go-simpler.org/env"
)

// Config represents the configuration of this service
type Config struct {
	// Name of the key-value bucket in NATS used for caching reports. Default: WDX_REPORTS
	Bucket string `env:"WDX_BUCKET" default:"WDX_REPORTS"`
	// How long cached reports are kept. Zero keeps them forever. Default: 24h
	CacheTTL time.Duration `env:"WDX_CACHE_TTL" default:"24h"`
	// wether to expose embedded NATS server to other clients. Default: false
	ExposeNats bool `env:"WDX_EXPOSE_NATS" default:"false"`
	// File name suffixes that are accepted, compared case-insensitively. Default: .docx
	Extensions []string `env:"WDX_EXTENSIONS" default:".docx"`
	// If true the service will exit with an error if NATS or JetStream can't be connected
	FailWithoutJetstream bool `env:"WDX_FAIL_WITHOUT_JS" default:"false"`
	// Locale used for date/time display units, e.g. de-DE. Default: ISO formats
	Locale string `env:"WDX_LOCALE"`
	// Log level (DEBUG, INFO, WARN, ERROR)
	LogLevelStr string `env:"WDX_LOG_LEVEL" default:"INFO"`
	LogLevel    slog.Level
	// Maximum uncompressed size of a single part; bigger parts are not extracted
	MaxPartSize      string `env:"WDX_MAX_PART_SIZE" default:"64MiB"`
	MaxPartSizeBytes uint64
	// Maximum size of a document uploaded via HTTP POST
	MaxUploadSize      string `env:"WDX_MAX_UPLOAD_SIZE" default:"100MiB"`
	MaxUploadSizeBytes uint64
	// Start an embedded NATS server (requires build tag embed_nats)
	NatsEmbedded bool `env:"WDX_NATS_EMBEDDED" default:"false"`
	// NATS max msg size (embedded server only)
	NatsMaxPayload int32 `env:"WDX_MAX_PAYLOAD" default:"8388608"`
	// embedded NATS server storage location. Default: /tmp/nats
	NatsStoreDir string `env:"WDX_NATS_STORE_DIR"`
	// embedded NATS server host/ip address, if exposed. Default: localhost
	NatsHost string `env:"WDX_NATS_HOST" default:"localhost"`
	// embedded NATS server port, if exposed. Default: 4222
	NatsPort int `env:"WDX_NATS_PORT" default:"4222"`
	// External NATS URL, e.g. nats://localhost:4222. NATS is not used if empty and not embedded.
	NatsUrl string `env:"WDX_NATS_URL"`
	// Timeout for the external NATS connection
	NatsTimeout time.Duration `env:"WDX_NATS_TIMEOUT" default:"15s"`
	// NatsConnectRetries is the number of attempts to connect to external NATS server(s)
	NatsConnectRetries int `env:"WDX_NATS_CONNECT_RETRIES" default:"10"`
	// if true, disable HTTP Server in favor of NATS Microservice interface
	NoHttp bool `env:"WDX_NO_HTTP" default:"false"`
	// How many replicas of the bucket to create. Default: 1
	Replicas int `env:"WDX_REPLICAS" default:"1"`
	// HTTP listen address and/or port. Default: ':8080'
	SrvAddr string `env:"WDX_HOST_PORT" default:":8080"`
	// IANA name of the time zone dates are displayed in. Default: the system's local zone
	Timezone string `env:"WDX_TIMEZONE" default:"Local"`
	Location *time.Location
}

// NewConfigFromEnv returns a service config object
// populated with defaults and values from environment vars
func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, err
	}
	err := cfg.LogLevel.UnmarshalText([]byte(cfg.LogLevelStr))
	if err != nil {
		return nil, fmt.Errorf("parsing log level from env: %w", err)
	}
	maxPart, err := humanize.ParseBytes(cfg.MaxPartSize)
	if err != nil {
		return nil, fmt.Errorf("parsing max part size from env: %w", err)
	}
	cfg.MaxPartSizeBytes = maxPart
	maxUpload, err := humanize.ParseBytes(cfg.MaxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("parsing max upload size from env: %w", err)
	}
	cfg.MaxUploadSizeBytes = maxUpload
	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone from env: %w", err)
	}
	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			cfg.Extensions[i] = "." + ext
		}
	}
	return &cfg, nil
}
