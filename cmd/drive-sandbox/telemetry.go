package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lixenwraith/vi-drive/core"
	"github.com/lixenwraith/vi-drive/telemetry"
)

// setupTelemetry builds the configured sinks and registers the recorder and stream server
// Sinks that fail to open are logged and skipped; the sandbox runs without them
func (s *sandbox) setupTelemetry(ctx context.Context) error {
	tc := s.cfg.Telemetry
	if !tc.Enabled {
		return nil
	}

	var sinks []telemetry.Sink

	if db, err := openStore(tc.Store.Driver, tc.Store.Path, tc.Store.DSN); err != nil {
		s.log.Warn().Err(err).Str("driver", tc.Store.Driver).Msg("telemetry store unavailable")
	} else if db != nil {
		store, err := telemetry.NewStore(db, s.catalog, s.log)
		if err != nil {
			s.log.Warn().Err(err).Msg("telemetry store migration failed")
		} else {
			sinks = append(sinks, store)
		}
	}

	if tc.Influx.Enabled {
		sink, err := telemetry.NewInfluxSink(ctx, telemetry.InfluxConfig{
			URL:        tc.Influx.URL,
			Token:      tc.Influx.Token,
			Org:        tc.Influx.Org,
			Bucket:     tc.Influx.Bucket,
			BackupPath: tc.Influx.BackupPath,
		}, s.log)
		if err != nil {
			s.log.Warn().Err(err).Str("url", tc.Influx.URL).Msg("influx sink unavailable")
		} else {
			sinks = append(sinks, sink)
		}
	}

	var stream *telemetry.Stream
	if tc.Stream.Enabled {
		stream = telemetry.NewStream(s.log)
		sinks = append(sinks, stream)
	}

	s.recorder = telemetry.NewRecorder(tc.SampleHz, s.log, sinks...)
	if err := s.hub.Register(s.recorder); err != nil {
		return err
	}
	if stream != nil {
		if err := s.hub.Register(newStreamServer(tc.Stream.Addr, stream, s.log)); err != nil {
			return err
		}
	}
	return nil
}

// openStore returns a nil db for an empty driver
func openStore(driver, path, dsn string) (*gorm.DB, error) {
	switch driver {
	case "":
		return nil, nil
	case "sqlite":
		return telemetry.OpenSQLite(path)
	case "postgres":
		return telemetry.OpenPostgres(dsn)
	}
	return nil, fmt.Errorf("unknown telemetry store driver %q", driver)
}

// streamServer serves the telemetry websocket for external HUDs
type streamServer struct {
	addr   string
	stream *telemetry.Stream
	log    zerolog.Logger

	srv *http.Server
	ln  net.Listener
}

func newStreamServer(addr string, stream *telemetry.Stream, log zerolog.Logger) *streamServer {
	return &streamServer{addr: addr, stream: stream, log: log}
}

func (h *streamServer) Name() string { return "stream-http" }

func (h *streamServer) Start(context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/telemetry", h.stream)

	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("telemetry stream listen: %w", err)
	}
	h.ln = ln
	h.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	core.Go(func() {
		if err := h.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.log.Error().Err(err).Msg("telemetry stream server stopped")
		}
	})
	h.log.Info().Str("addr", ln.Addr().String()).Msg("telemetry stream listening")
	return nil
}

// Addr is the bound address, useful when configured with port 0
func (h *streamServer) Addr() string {
	if h.ln == nil {
		return h.addr
	}
	return h.ln.Addr().String()
}

func (h *streamServer) Stop() error {
	if h.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return h.srv.Shutdown(ctx)
}
