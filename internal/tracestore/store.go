// Package tracestore persists per-frame codec traces in SQLite.
//
// A Store implements lc3.Tracer: traces are buffered and written in batches,
// grouped into sessions, and aggregated on demand.
package tracestore

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/thesyncim/lc3"
)

// Config holds store configuration.
type Config struct {
	Path      string // SQLite database file
	BatchSize int    // traces buffered before a write, default 256
}

const defaultBatchSize = 256

// Store is a SQLite-backed lc3.Tracer. It is safe for concurrent use.
type Store struct {
	db  *gorm.DB
	log *zap.Logger

	mu      sync.Mutex
	session uint
	batch   []FrameRecord
	size    int
	err     error
}

var _ lc3.Tracer = (*Store)(nil)

// gormWriter routes GORM's logger onto zap.
type gormWriter struct {
	l *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.l.Warnf(format, args...)
}

// Open opens or creates the database at cfg.Path and migrates the schema.
func Open(cfg Config, log *zap.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("tracestore: empty database path")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}

	gormLog := logger.New(gormWriter{l: log.Sugar()}, logger.Config{
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
	dialector := sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        cfg.Path,
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("tracestore: open %s: %w", cfg.Path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := configureSQLite(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("tracestore: configure: %w", err)
	}
	if err := db.AutoMigrate(&Session{}, &FrameRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("tracestore: migrate: %w", err)
	}

	log.Debug("trace store opened", zap.String("path", cfg.Path))
	return &Store{
		db:    db,
		log:   log,
		size:  cfg.BatchSize,
		batch: make([]FrameRecord, 0, cfg.BatchSize),
	}, nil
}

func configureSQLite(sqlDB *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=memory",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

// StartSession records sess, assigning its ID, and tags subsequent traces
// with it. Buffered traces of the previous session are written first.
func (s *Store) StartSession(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushLocked(); err != nil {
		return err
	}
	if err := s.db.Create(sess).Error; err != nil {
		return fmt.Errorf("tracestore: create session: %w", err)
	}
	s.session = sess.ID
	return nil
}

// TraceFrame implements lc3.Tracer. Write errors are kept and returned by
// Flush and Close.
func (s *Store) TraceFrame(t lc3.FrameTrace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = append(s.batch, newFrameRecord(s.session, t))
	if len(s.batch) < s.size {
		return
	}
	// A failed write is kept in s.err and reported by Flush and Close.
	_ = s.flushLocked()
}

// Flush writes buffered traces.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if s.err != nil {
		s.batch = s.batch[:0]
		return s.err
	}
	if len(s.batch) == 0 {
		return nil
	}
	if err := s.db.CreateInBatches(s.batch, 100).Error; err != nil {
		s.err = fmt.Errorf("tracestore: write traces: %w", err)
		s.log.Warn("trace write failed", zap.Int("frames", len(s.batch)), zap.Error(err))
		return s.err
	}
	s.batch = s.batch[:0]
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	ferr := s.Flush()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return errors.Join(ferr, sqlDB.Close())
}

// Sessions lists the recorded sessions, oldest first.
func (s *Store) Sessions() ([]Session, error) {
	var out []Session
	if err := s.db.Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Summary aggregates the frames of a session.
func (s *Store) Summary(session uint) (Summary, error) {
	var sum Summary
	err := s.db.Model(&FrameRecord{}).
		Select(`COUNT(*) AS frames,
			COALESCE(SUM(CASE WHEN concealed THEN 1 ELSE 0 END), 0) AS concealed,
			COALESCE(SUM(CASE WHEN attack THEN 1 ELSE 0 END), 0) AS attacks,
			COALESCE(SUM(CASE WHEN err <> '' THEN 1 ELSE 0 END), 0) AS errors,
			COALESCE(AVG(gain), 0) AS mean_gain,
			COALESCE(AVG(bits), 0) AS mean_bits`).
		Where("session_id = ?", session).
		Scan(&sum).Error
	return sum, err
}

// Bandwidths counts the frames of a session per coded bandwidth.
func (s *Store) Bandwidths(session uint) ([]BandwidthCount, error) {
	var out []BandwidthCount
	err := s.db.Model(&FrameRecord{}).
		Select("bandwidth_hz, COUNT(*) AS frames").
		Where("session_id = ? AND concealed = ?", session, false).
		Group("bandwidth_hz").
		Order("bandwidth_hz").
		Scan(&out).Error
	return out, err
}

// Frames returns the frames of one channel of a session in order.
func (s *Store) Frames(session uint, channel int) ([]FrameRecord, error) {
	var out []FrameRecord
	err := s.db.Where("session_id = ? AND channel = ?", session, channel).
		Order("seq").
		Find(&out).Error
	return out, err
}
