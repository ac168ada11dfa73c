package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/johbar/docx-field-service/internal/cache"
	natsconn "github.com/johbar/docx-field-service/internal/cache/nats"
	"github.com/johbar/docx-field-service/internal/config"
	"github.com/johbar/docx-field-service/internal/fields"
	"github.com/johbar/docx-field-service/internal/service"
	"github.com/nats-io/nats.go"
)

func main() {
	unit := flag.Int("unit", 0, "display unit for dates in one shot mode (0..12)")
	flag.Parse()

	conf, err := config.NewConfigFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: conf.LogLevel}))
	resolver := fields.NewResolver(conf, logger)

	// one shot mode: don't start a server, just print the report of a single file provided on the command line
	if flag.NArg() > 0 {
		oneShotLogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: conf.LogLevel}))
		svc := service.New(conf, fields.NewResolver(conf, oneShotLogger), nil, oneShotLogger)
		err := svc.PrintReport(flag.Arg(0), *unit, os.Stdin, os.Stdout)
		svc.Close()
		if err != nil {
			os.Exit(2)
		}
		return
	}

	if os.Getenv("GOMEMLIMIT") != "" {
		logger.Info("GOMEMLIMIT", "Bytes", debug.SetMemoryLimit(-1), "MBytes", debug.SetMemoryLimit(-1)/1024/1024)
	}
	buildinfo, _ := debug.ReadBuildInfo()
	logger.Debug("Info", "buildinfo", buildinfo)

	var reportCache cache.Cache = &cache.NopCache{}
	nc, err := natsconn.Connect(conf, logger)
	switch {
	case errors.Is(err, natsconn.ErrNotConfigured):
		logger.Info("NATS not configured. Reports will not be cached.")
	case err != nil:
		logger.Error("NATS connection failed", "err", err)
		if conf.FailWithoutJetstream {
			os.Exit(1)
		}
	default:
		kv, err := cache.New(conf, logger, nc)
		if err != nil {
			logger.Error("Cache unavailable", "err", err)
			if conf.FailWithoutJetstream {
				os.Exit(1)
			}
		} else {
			reportCache = kv
		}
	}

	svc := service.New(conf, resolver, reportCache, logger)
	if nc != nil {
		if _, err := svc.RegisterNatsService(nc); err != nil {
			logger.Error("Registering NATS micro service failed", "err", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.NoHttp {
		if nc == nil {
			logger.Error("Fatal: NATS not connected and HTTP disabled.")
			os.Exit(1)
		}
		logger.Info("Service started with no HTTP endpoints. Waiting for interrupt.")
		<-ctx.Done()
		shutdown(logger, svc, nc)
		return
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    conf.SrvAddr,
		Handler: svc.Router(logger),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown failed", "err", err)
		}
	}()
	logger.Info("Service started", "address", srv.Addr, "extensions", conf.Extensions, "timezone", conf.Location.String())
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		// Error starting or closing listener:
		logger.Error("Webserver failed", "err", err)
	}
	logger.Info("HTTP Server stopped.")
	shutdown(logger, svc, nc)
}

// shutdown stops NATS request handling before pending cache writes are flushed.
func shutdown(logger *slog.Logger, svc *service.Service, nc *nats.Conn) {
	if nc != nil {
		closed := make(chan struct{})
		nc.SetClosedHandler(func(*nats.Conn) { close(closed) })
		if err := nc.Drain(); err != nil {
			logger.Error("Draining NATS connection failed", "err", err)
		} else {
			<-closed
		}
	}
	svc.Close()
}
