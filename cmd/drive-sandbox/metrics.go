package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lixenwraith/vi-drive/metrics"
	"github.com/lixenwraith/vi-drive/parameter"
)

// setupMetrics builds the meter provider and installs it globally
// A disabled config yields a provider handing out no-op meters
func (s *sandbox) setupMetrics() error {
	mc := s.cfg.Metrics
	cfg := metrics.Config{
		Enabled:     mc.Enabled,
		ServiceName: "vi-drive",
		Interval:    mc.Interval,
		Endpoint:    mc.Endpoint,
		Insecure:    mc.Insecure,
	}

	if mc.Enabled && mc.File != "" {
		if err := os.MkdirAll(filepath.Dir(mc.File), 0o755); err != nil {
			return fmt.Errorf("creating metrics dir: %w", err)
		}
		f, err := os.OpenFile(mc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening metrics file: %w", err)
		}
		s.metricsFile = f
		cfg.Writer = f
	}

	p, err := metrics.New(cfg)
	if err != nil {
		s.closeMetricsFile()
		return err
	}
	p.Install()
	s.metrics = p
	if p.Enabled() {
		s.log.Info().Str("file", mc.File).Str("endpoint", mc.Endpoint).Dur("interval", mc.Interval).Msg("metrics enabled")
	}
	return nil
}

// stopMetrics flushes the last export and closes the file
func (s *sandbox) stopMetrics() error {
	if s.metrics == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), parameter.MetricsShutdownTimeout)
	defer cancel()
	err := s.metrics.Shutdown(ctx)
	s.metrics = nil
	s.closeMetricsFile()
	return err
}

func (s *sandbox) closeMetricsFile() {
	if s.metricsFile != nil {
		s.metricsFile.Close()
		s.metricsFile = nil
	}
}
