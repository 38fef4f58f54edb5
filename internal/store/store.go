// Package store keeps the tracker document in a SQLite key-value table.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/snapshot"

	_ "modernc.org/sqlite" // register sqlite driver
)

// StateKey is the row holding the tracker document.
const StateKey = "dotaPTStrackerData"

// historyLimit is how many previous documents are kept for Undo.
const historyLimit = 50

//go:embed migrations/*.sql
var embedMigrations embed.FS

var (
	// ErrConflict is returned when the document changed between load and save.
	ErrConflict = errors.New("tracker state was modified concurrently")
	// ErrNoHistory is returned by Undo when there is nothing to restore.
	ErrNoHistory = errors.New("no earlier state to restore")
)

// Store provides SQLite-backed persistence for the tracker document.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens or creates the database at dbPath and applies migrations.
func Open(dbPath string, log zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}

	log.Debug().Str("path", dbPath).Msg("opening state db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	if err := migrate(db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

func migrate(db *sql.DB, log zerolog.Logger) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{log})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Revision returns the revision of the stored document, 0 if none exists.
func (s *Store) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, "SELECT revision FROM kv WHERE key = ?", StateKey).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading revision: %w", err)
	}
	return rev, nil
}

// Load reads and decodes the tracker state. A missing document yields
// the default state.
func (s *Store) Load(ctx context.Context) (model.TrackerState, error) {
	res, _, err := s.load(ctx)
	return res.State, err
}

func (s *Store) load(ctx context.Context) (snapshot.DecodeResult, int64, error) {
	raw, rev, err := s.raw(ctx, s.db)
	if err != nil {
		return snapshot.DecodeResult{}, 0, err
	}
	res, err := snapshot.Decode(raw)
	if err != nil {
		return snapshot.DecodeResult{}, 0, err
	}
	if res.Rejected > 0 || res.Clamped > 0 || res.BadDates > 0 {
		s.log.Warn().
			Int("rejected", res.Rejected).
			Int("clamped", res.Clamped).
			Int("bad_dates", res.BadDates).
			Msg("repaired stored document")
	}
	return res, rev, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) raw(ctx context.Context, q queryer) ([]byte, int64, error) {
	var value string
	var rev int64
	err := q.QueryRowContext(ctx, "SELECT value, revision FROM kv WHERE key = ?", StateKey).Scan(&value, &rev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reading state: %w", err)
	}
	return []byte(value), rev, nil
}

// Save writes state unconditionally.
func (s *Store) Save(ctx context.Context, state model.TrackerState) error {
	rev, err := s.Revision(ctx)
	if err != nil {
		return err
	}
	return s.saveAt(ctx, state, rev)
}

// Update loads the state, applies fn and saves the result. If another
// writer saved in between, Update fails with ErrConflict and nothing is
// written.
func (s *Store) Update(ctx context.Context, fn func(model.TrackerState) (model.TrackerState, error)) (model.TrackerState, error) {
	res, rev, err := s.load(ctx)
	if err != nil {
		return model.TrackerState{}, err
	}
	next, err := fn(res.State)
	if err != nil {
		return res.State, err
	}
	if err := s.saveAt(ctx, next, rev); err != nil {
		return res.State, err
	}
	return next, nil
}

// saveAt stores state if the current revision still equals expected.
func (s *Store) saveAt(ctx context.Context, state model.TrackerState, expected int64) error {
	data, err := snapshot.Encode(state)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	prev, rev, err := s.raw(ctx, tx)
	if err != nil {
		return err
	}
	if rev != expected {
		return ErrConflict
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if prev != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO kv_history (key, revision, value, saved_at) VALUES (?, ?, ?, ?)`,
			StateKey, rev, string(prev), now); err != nil {
			return fmt.Errorf("recording history: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM kv_history WHERE key = ? AND revision <= ?`,
			StateKey, rev-historyLimit); err != nil {
			return fmt.Errorf("pruning history: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO kv (key, value, revision, updated_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, revision = kv.revision + 1, updated_at = excluded.updated_at`,
		StateKey, string(data), now); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	s.log.Debug().Int64("revision", rev+1).Int("bytes", len(data)).Msg("state saved")
	return nil
}

// Undo restores the document saved before the latest change. The restore
// is itself a new revision.
func (s *Store) Undo(ctx context.Context) (model.TrackerState, error) {
	rev, err := s.Revision(ctx)
	if err != nil {
		return model.TrackerState{}, err
	}

	var value string
	var prevRev int64
	err = s.db.QueryRowContext(ctx,
		`SELECT value, revision FROM kv_history WHERE key = ? ORDER BY revision DESC LIMIT 1`,
		StateKey).Scan(&value, &prevRev)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TrackerState{}, ErrNoHistory
	}
	if err != nil {
		return model.TrackerState{}, fmt.Errorf("reading history: %w", err)
	}

	res, err := snapshot.Decode([]byte(value))
	if err != nil {
		return model.TrackerState{}, err
	}
	if err := s.saveAt(ctx, res.State, rev); err != nil {
		return model.TrackerState{}, err
	}
	// drop the entry just restored and the one saveAt recorded for it
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_history WHERE key = ? AND revision IN (?, ?)`,
		StateKey, prevRev, rev); err != nil {
		return model.TrackerState{}, fmt.Errorf("pruning history: %w", err)
	}
	return res.State, nil
}

// HistoryLen returns how many earlier documents are available to Undo.
func (s *Store) HistoryLen(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kv_history WHERE key = ?", StateKey).Scan(&n)
	return n, err
}

// Export returns the stored document as JSON, encoding the default state
// when nothing has been saved yet.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	state, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Encode(state)
}

// Import decodes data and replaces the stored state with it.
func (s *Store) Import(ctx context.Context, data []byte) (snapshot.DecodeResult, error) {
	res, err := snapshot.Decode(data)
	if err != nil {
		return res, err
	}
	if err := s.Save(ctx, res.State); err != nil {
		return res, err
	}
	s.log.Info().
		Int("days", len(res.State.Days)).
		Int("rejected", res.Rejected).
		Msg("state imported")
	return res, nil
}

// gooseLogger routes migration output to zerolog.
type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Debug().Msgf(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Fatal().Msgf(format, v...)
}
