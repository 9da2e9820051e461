// Package metrics installs the OpenTelemetry meter provider for the sandbox
package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config holds meter provider configuration
type Config struct {
	Enabled     bool
	ServiceName string
	Interval    time.Duration
	Writer      io.Writer // JSON export target (optional)
	Endpoint    string    // OTLP/HTTP endpoint (optional)
	Insecure    bool
}

// Provider owns the SDK meter provider, or nothing when disabled
type Provider struct {
	mp     *sdkmetric.MeterProvider
	config Config
}

// New builds a provider from cfg. A disabled provider hands out no-op meters
func New(cfg Config, opts ...sdkmetric.Option) (*Provider, error) {
	p := &Provider{config: cfg}
	if !cfg.Enabled {
		return p, nil
	}

	ctx := context.Background()
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mpOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.Writer != nil {
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer))
		if err != nil {
			return nil, fmt.Errorf("failed to create file metric exporter: %w", err)
		}
		mpOpts = append(mpOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, readerOpts...)))
	}

	if cfg.Endpoint != "" {
		otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, otlpOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		mpOpts = append(mpOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, readerOpts...)))
	}

	// Extra readers, e.g. a manual reader in tests
	mpOpts = append(mpOpts, opts...)
	if len(mpOpts) == 1 {
		return nil, errors.New("metrics enabled but no writer or endpoint configured")
	}

	p.mp = sdkmetric.NewMeterProvider(mpOpts...)
	return p, nil
}

// Install makes p the global meter provider
func (p *Provider) Install() {
	if p.mp != nil {
		otel.SetMeterProvider(p.mp)
	}
}

// Meter returns a named meter, no-op when disabled
func (p *Provider) Meter(name string) metric.Meter {
	if p.mp == nil {
		return noop.Meter{}
	}
	return p.mp.Meter(name)
}

// Flush exports pending measurements
func (p *Provider) Flush(ctx context.Context) error {
	if p.mp == nil {
		return nil
	}
	if err := p.mp.ForceFlush(ctx); err != nil {
		return fmt.Errorf("metric flush failed: %w", err)
	}
	return nil
}

// Shutdown flushes and stops every reader
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.mp == nil {
		return nil
	}
	if err := p.mp.Shutdown(ctx); err != nil {
		return fmt.Errorf("metric shutdown failed: %w", err)
	}
	return nil
}

// Enabled reports whether an SDK provider is running
func (p *Provider) Enabled() bool {
	return p.mp != nil
}
