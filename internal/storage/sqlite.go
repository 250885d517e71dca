//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"antcolony/internal/model"

	_ "modernc.org/sqlite"
)

func DefaultStoreKind() string {
	return "sqlite"
}

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	// Sweeps save from several goroutines; one connection serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run model.Run) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeRun(run)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at_utc, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at_utc = excluded.created_at_utc,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, run.ID, run.CreatedAtUTC, run.SchemaVersion, run.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (model.Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Run{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Run{}, false, nil
		}
		return model.Run{}, false, err
	}

	run, err := DecodeRun(payload)
	if err != nil {
		return model.Run{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]model.Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, payload FROM runs ORDER BY created_at_utc DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]model.Run, 0)
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		run, err := DecodeRun(payload)
		if err != nil {
			return nil, fmt.Errorf("decode run %s: %w", id, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) SaveBrain(ctx context.Context, brain model.Brain) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeBrain(brain)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO brains (run_id, ant, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, ant) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, brain.RunID, brain.Ant, brain.SchemaVersion, brain.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetBrain(ctx context.Context, runID string, ant int) (model.Brain, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Brain{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM brains WHERE run_id = ? AND ant = ?`, runID, ant).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Brain{}, false, nil
		}
		return model.Brain{}, false, err
	}

	brain, err := DecodeBrain(payload)
	if err != nil {
		return model.Brain{}, false, fmt.Errorf("decode brain %s/%d: %w", runID, ant, err)
	}
	return brain, true, nil
}

func (s *SQLiteStore) ListBrains(ctx context.Context, runID string) ([]model.Brain, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT ant, payload FROM brains WHERE run_id = ? ORDER BY ant ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brains := make([]model.Brain, 0)
	for rows.Next() {
		var ant int
		var payload []byte
		if err := rows.Scan(&ant, &payload); err != nil {
			return nil, err
		}
		brain, err := DecodeBrain(payload)
		if err != nil {
			return nil, fmt.Errorf("decode brain %s/%d: %w", runID, ant, err)
		}
		brains = append(brains, brain)
	}
	return brains, rows.Err()
}

func (s *SQLiteStore) SaveCumulative(ctx context.Context, cumulative model.Cumulative) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeCumulative(cumulative)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO cumulative (run_id, payload)
		VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET payload = excluded.payload
	`, cumulative.RunID, payload)
	return err
}

func (s *SQLiteStore) GetCumulative(ctx context.Context, runID string) (model.Cumulative, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Cumulative{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM cumulative WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Cumulative{}, false, nil
		}
		return model.Cumulative{}, false, err
	}

	cumulative, err := DecodeCumulative(payload)
	if err != nil {
		return model.Cumulative{}, false, fmt.Errorf("decode cumulative %s: %w", runID, err)
	}
	return cumulative, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at_utc TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS brains (
			run_id TEXT NOT NULL,
			ant INTEGER NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, ant)
		);
		CREATE TABLE IF NOT EXISTS cumulative (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
	`)
	return err
}
