// Package nats connects the service to an external or embedded NATS server.
package nats

import (
	"errors"
	"log/slog"
	"time"

	"github.com/johbar/docx-field-service/internal/config"
	"github.com/nats-io/nats.go"
)

var (
	errNatsNotEmbedded = errors.New("NATS has not been embedded in this build")
	// ErrNotConfigured is returned if neither an URL nor the embedded server is configured.
	ErrNotConfigured = errors.New("NATS is not configured")
)

// Connect returns a connection to the embedded server if enabled in conf,
// otherwise to the server at conf.NatsUrl.
func Connect(conf *config.Config, log *slog.Logger) (*nats.Conn, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	switch {
	case conf.NatsEmbedded:
		log.Info("Starting embedded NATS server", "exposed", conf.ExposeNats, "storeDir", conf.NatsStoreDir)
		return ConnectToEmbeddedNatsServer(conf)
	case conf.NatsUrl != "":
		return SetupNatsConnection(conf, log)
	}
	return nil, ErrNotConfigured
}

// SetupNatsConnection connects the service to an external NATS server, retrying
// up to conf.NatsConnectRetries times.
func SetupNatsConnection(conf *config.Config, log *slog.Logger) (*nats.Conn, error) {
	log.Info("Try connecting to NATS", "url", conf.NatsUrl, "timeoutSecs", conf.NatsTimeout.Seconds())
	for attempts := 1; ; attempts++ {
		nc, err := nats.Connect(conf.NatsUrl, nats.Name("docx-field-service"), nats.Timeout(conf.NatsTimeout))
		if err == nil {
			return nc, nil
		}
		log.Error("Connecting to NATS failed",
			"url", conf.NatsUrl,
			"timeoutSecs", conf.NatsTimeout.Seconds(),
			"err", err,
			"count", attempts,
			"maxRetries", conf.NatsConnectRetries)
		if attempts > conf.NatsConnectRetries {
			log.Error("Connecting to NATS failed. Retry count exceeded", "err", err, "maxRetries", conf.NatsConnectRetries)
			return nil, err
		}
		time.Sleep(time.Second)
	}
}
