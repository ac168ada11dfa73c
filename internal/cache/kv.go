package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/johbar/docx-field-service/internal/config"
	"github.com/johbar/docx-field-service/internal/fields"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// KeyValueCache keeps JSON encoded reports in a JetStream key-value bucket.
type KeyValueCache struct {
	jetstream.KeyValue
	nc  *nats.Conn
	js  jetstream.JetStream
	log *slog.Logger
}

func New(conf *config.Config, log *slog.Logger, nc *nats.Conn) (*KeyValueCache, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if nc == nil {
		return nil, errors.New("no connection to NATS")
	}
	js, err := setupJetstream(conf, nc, log)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      conf.Bucket,
		Description: "docx field reports",
		TTL:         conf.CacheTTL,
		Storage:     jetstream.FileStorage,
		Replicas:    conf.Replicas,
		Compression: true,
	})
	if err != nil {
		log.Error("Creating NATS key-value bucket failed", "err", err)
		return nil, fmt.Errorf("initializing NATS key-value bucket: %w", err)
	}
	log.Info("NATS key-value bucket initialized.", "bucket", conf.Bucket)
	return &KeyValueCache{KeyValue: kv, nc: nc, js: js, log: log}, nil
}

func setupJetstream(conf *config.Config, nc *nats.Conn, log *slog.Logger) (jetstream.JetStream, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		log.Error("FATAL: Error when initializing NATS JetStream", "err", err.Error())
		return nil, err
	}

	for attempts := 0; attempts <= conf.NatsConnectRetries; attempts++ {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		_, err = js.AccountInfo(ctx)
		cancel()
		if err == nil {
			return js, nil
		}
		if errors.Is(err, jetstream.ErrJetStreamNotEnabled) || errors.Is(err, jetstream.ErrJetStreamNotEnabledForAccount) {
			return nil, err
		}
		log.Error("NATS JetStream check failed. Is JetStream enabled in external NATS server(s)?",
			"err", err,
			"count", attempts,
			"maxRetries", conf.NatsConnectRetries)
		time.Sleep(time.Second)
	}
	return nil, fmt.Errorf("retry count exceeded: %w", err)
}

func (c *KeyValueCache) Get(key string) (*fields.Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	entry, err := c.KeyValue.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving report %s from bucket: %w", key, err)
	}
	var rep fields.Report
	if err := json.Unmarshal(entry.Value(), &rep); err != nil {
		return nil, fmt.Errorf("decoding cached report %s: %w", key, err)
	}
	return &rep, nil
}

func (c *KeyValueCache) Save(key string, rep *fields.Report) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err = c.KeyValue.Put(ctx, key, data)
	return err
}
