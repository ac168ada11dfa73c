//go:build embed_nats

package nats

import (
	"errors"
	"time"

	"github.com/johbar/docx-field-service/internal/config"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

const NatsEmbedded bool = true

func ConnectToEmbeddedNatsServer(conf *config.Config) (*nats.Conn, error) {
	ns, err := server.NewServer(
		&server.Options{
			ServerName: "docx-field-service",
			JetStream:  true,
			MaxPayload: conf.NatsMaxPayload,
			TLS:        false,
			NoSigs:     true,
			DontListen: !conf.ExposeNats,
			Host:       conf.NatsHost,
			Port:       conf.NatsPort,
			StoreDir:   conf.NatsStoreDir,
		})
	if err != nil {
		return nil, err
	}
	ns.ConfigureLogger()
	ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		return nil, errors.New("embedded NATS not ready")
	}

	return nats.Connect("", nats.InProcessServer(ns))
}
