package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/parameter"
)

// Session is one continuous drive of one profile
type Session struct {
	ID        uint `gorm:"primaryKey"`
	StartedAt time.Time
	ProfileID string `gorm:"index"`
	// Profile is the full profile snapshot at session start
	Profile datatypes.JSON
}

// FrameRecord is a stored Frame
type FrameRecord struct {
	ID        uint `gorm:"primaryKey"`
	SessionID uint `gorm:"index"`
	Time      time.Time

	Speed      float64
	RawSpeed   float64
	WheelAngle float64

	PosX, PosY, PosZ float64
	RotX, RotY, RotZ float64

	Steering    float64
	Boost       float64
	EngineForce float64
	Reversing   bool
}

// Store writes frames to a SQL database through gorm
// A new session row opens whenever the profile changes between frames
type Store struct {
	db      *gorm.DB
	catalog *catalog.Catalog
	log     zerolog.Logger

	session *Session
}

// OpenSQLite opens a sqlite database file; an empty path is an in-memory database
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        parameter.TelemetryBatchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %q: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}
	return db, nil
}

// OpenPostgres connects with a libpq style DSN
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        parameter.TelemetryBatchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	return db, nil
}

// NewStore migrates the schema on db
// cat supplies profile snapshots for session rows and may be nil
func NewStore(db *gorm.DB, cat *catalog.Catalog, log zerolog.Logger) (*Store, error) {
	if err := db.AutoMigrate(&Session{}, &FrameRecord{}); err != nil {
		return nil, fmt.Errorf("migrating telemetry schema: %w", err)
	}
	log.Info().Str("dialect", db.Dialector.Name()).Msg("telemetry store ready")
	return &Store{db: db, catalog: cat, log: log}, nil
}

func (s *Store) Name() string { return "store" }

// DB exposes the connection for queries
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Write(ctx context.Context, frames []Frame) error {
	db := s.db.WithContext(ctx)
	rows := make([]FrameRecord, 0, len(frames))

	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if err := db.CreateInBatches(rows, parameter.TelemetryBatchSize).Error; err != nil {
			return fmt.Errorf("writing frames: %w", err)
		}
		rows = rows[:0]
		return nil
	}

	for _, f := range frames {
		if s.session == nil || s.session.ProfileID != f.ProfileID {
			if err := flush(); err != nil {
				return err
			}
			if err := s.openSession(db, f); err != nil {
				return err
			}
		}
		rows = append(rows, FrameRecord{
			SessionID:   s.session.ID,
			Time:        f.Time,
			Speed:       f.Speed,
			RawSpeed:    f.RawSpeed,
			WheelAngle:  f.WheelAngle,
			PosX:        f.Position.X(),
			PosY:        f.Position.Y(),
			PosZ:        f.Position.Z(),
			RotX:        f.Rotation.X,
			RotY:        f.Rotation.Y,
			RotZ:        f.Rotation.Z,
			Steering:    f.Steering,
			Boost:       f.Boost,
			EngineForce: f.EngineForce,
			Reversing:   f.Reversing,
		})
	}
	return flush()
}

func (s *Store) openSession(db *gorm.DB, f Frame) error {
	snapshot := datatypes.JSON("{}")
	if s.catalog != nil {
		if p, ok := s.catalog.Get(f.ProfileID); ok {
			b, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("encoding profile %s: %w", f.ProfileID, err)
			}
			snapshot = datatypes.JSON(b)
		}
	}
	sess := &Session{StartedAt: f.Time, ProfileID: f.ProfileID, Profile: snapshot}
	if err := db.Create(sess).Error; err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	s.session = sess
	s.log.Debug().Uint("session", sess.ID).Str("profile", f.ProfileID).Msg("telemetry session opened")
	return nil
}

// Sessions returns every session in start order
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	var out []Session
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

// Frames returns the stored frames of one session in time order
func (s *Store) Frames(ctx context.Context, sessionID uint) ([]FrameRecord, error) {
	var out []FrameRecord
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("time, id").Find(&out).Error
	return out, err
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
