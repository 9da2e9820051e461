package telemetry

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/parameter"
)

// InfluxConfig locates an InfluxDB v2 bucket
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
	// BackupPath receives gzipped line protocol when the server is unreachable
	BackupPath string
}

// InfluxSink writes frames as points through the non-blocking write API
// When the server does not answer a ping it falls back to the backup file
type InfluxSink struct {
	client influxdb2.Client
	writer influxdb2_api.WriteAPI
	log    zerolog.Logger

	mu         sync.Mutex
	backupFile *os.File
	backup     *gzip.Writer
}

func NewInfluxSink(ctx context.Context, cfg InfluxConfig, log zerolog.Logger) (*InfluxSink, error) {
	s := &InfluxSink{log: log}
	s.client = influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(parameter.TelemetryBatchSize)).
			SetFlushInterval(uint(parameter.TelemetryFlushInterval.Milliseconds())))

	running, err := s.client.Ping(ctx)
	if err == nil && running {
		s.writer = s.client.WriteAPI(cfg.Org, cfg.Bucket)
		errorsCh := s.writer.Errors()
		go func() {
			for writeErr := range errorsCh {
				log.Error().Err(writeErr).Str("bucket", cfg.Bucket).Msg("influx write failed")
			}
		}()
		log.Info().Str("url", cfg.URL).Str("bucket", cfg.Bucket).Msg("influx sink connected")
		return s, nil
	}

	s.client.Close()
	s.client = nil
	if cfg.BackupPath == "" {
		if err == nil {
			err = errors.New("server not ready")
		}
		return nil, fmt.Errorf("influx %s unreachable: %w", cfg.URL, err)
	}

	f, ferr := os.OpenFile(cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if ferr != nil {
		return nil, fmt.Errorf("creating influx backup file: %w", ferr)
	}
	s.backupFile = f
	s.backup = gzip.NewWriter(f)
	log.Warn().Err(err).Str("backupPath", cfg.BackupPath).Msg("influx unreachable, writing line protocol backup")
	return s, nil
}

func (s *InfluxSink) Name() string { return "influx" }

// Point converts f to an influx point tagged by profile
func Point(f Frame) *influxdb2_write.Point {
	return influxdb2.NewPoint(
		parameter.TelemetryMeasurement,
		map[string]string{"profile": f.ProfileID},
		map[string]interface{}{
			"speed":        f.Speed,
			"raw_speed":    f.RawSpeed,
			"wheel_angle":  f.WheelAngle,
			"x":            f.Position.X(),
			"y":            f.Position.Y(),
			"z":            f.Position.Z(),
			"rot_x":        f.Rotation.X,
			"rot_y":        f.Rotation.Y,
			"rot_z":        f.Rotation.Z,
			"steering":     f.Steering,
			"boost":        f.Boost,
			"engine_force": f.EngineForce,
			"reversing":    f.Reversing,
		},
		f.Time,
	)
}

func (s *InfluxSink) Write(ctx context.Context, frames []Frame) error {
	if s.writer != nil {
		for _, f := range frames {
			s.writer.WritePoint(Point(f))
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backup == nil {
		return errors.New("influx sink closed")
	}
	for _, f := range frames {
		line := influxdb2_write.PointToLineProtocol(Point(f), time.Nanosecond)
		if _, err := s.backup.Write([]byte(line + "\n")); err != nil {
			return fmt.Errorf("writing influx backup: %w", err)
		}
	}
	return nil
}

func (s *InfluxSink) Close() error {
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.client != nil {
		s.client.Close()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backup == nil {
		return nil
	}
	err := errors.Join(s.backup.Close(), s.backupFile.Close())
	s.backup, s.backupFile = nil, nil
	return err
}
