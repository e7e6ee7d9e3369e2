// Package store keeps a library of named sketches in a SQLite database.
// Curves are stored as JSON in the sketch codec's format.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chazu/sketchsolid/pkg/plane"
	"github.com/chazu/sketchsolid/pkg/sketch"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no sketch matches the requested ID or name.
var ErrNotFound = errors.New("store: sketch not found")

const schema = `
CREATE TABLE IF NOT EXISTS sketches (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	orientation TEXT NOT NULL,
	offset_x    REAL NOT NULL DEFAULT 0,
	offset_y    REAL NOT NULL DEFAULT 0,
	offset_z    REAL NOT NULL DEFAULT 0,
	curves      TEXT NOT NULL,
	curve_count INTEGER NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sketches_name ON sketches(name);
`

// Record is one saved sketch.
type Record struct {
	ID          string
	Name        string
	Orientation plane.Orientation
	Offset      v3.Vec
	Curves      []sketch.Curve
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Summary describes a saved sketch without its curves.
type Summary struct {
	ID          string
	Name        string
	Orientation plane.Orientation
	CurveCount  int
	UpdatedAt   time.Time
}

// Store is a handle on the sketch library database.
type Store struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

// Open opens or creates the database at path and ensures the schema.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sketches table: %w", err)
	}
	log.Info("sketch library opened", zap.String("path", path))
	return &Store{db: db, log: log, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or updates a sketch. A record without an ID gets a new one,
// which is returned.
func (s *Store) Save(ctx context.Context, r Record) (string, error) {
	if strings.TrimSpace(r.Name) == "" {
		return "", errors.New("store: sketch name is required")
	}
	curves, err := sketch.MarshalCurves(r.Curves)
	if err != nil {
		return "", fmt.Errorf("store: encode curves: %w", err)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := s.now().UnixMilli()

	_, err = s.db.ExecContext(ctx, `
INSERT INTO sketches (id, name, orientation, offset_x, offset_y, offset_z, curves, curve_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	orientation = excluded.orientation,
	offset_x = excluded.offset_x,
	offset_y = excluded.offset_y,
	offset_z = excluded.offset_z,
	curves = excluded.curves,
	curve_count = excluded.curve_count,
	updated_at = excluded.updated_at`,
		r.ID, r.Name, r.Orientation.String(), r.Offset.X, r.Offset.Y, r.Offset.Z,
		string(curves), len(r.Curves), now, now)
	if err != nil {
		return "", fmt.Errorf("store: save %q: %w", r.Name, err)
	}
	s.log.Debug("sketch saved", zap.String("id", r.ID), zap.String("name", r.Name), zap.Int("curves", len(r.Curves)))
	return r.ID, nil
}

const selectRecord = `SELECT id, name, orientation, offset_x, offset_y, offset_z, curves, created_at, updated_at FROM sketches`

// Load returns the sketch with the given ID.
func (s *Store) Load(ctx context.Context, id string) (Record, error) {
	return s.loadOne(ctx, selectRecord+` WHERE id = ?`, id)
}

// LoadByName returns the most recently updated sketch with the given name.
func (s *Store) LoadByName(ctx context.Context, name string) (Record, error) {
	return s.loadOne(ctx, selectRecord+` WHERE name = ? ORDER BY updated_at DESC LIMIT 1`, name)
}

func (s *Store) loadOne(ctx context.Context, query string, arg string) (Record, error) {
	var (
		r               Record
		orientation     string
		curves          string
		created, update int64
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&r.ID, &r.Name, &orientation, &r.Offset.X, &r.Offset.Y, &r.Offset.Z, &curves, &created, &update)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, arg)
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: load %s: %w", arg, err)
	}
	if r.Orientation, err = plane.ParseOrientation(orientation); err != nil {
		return Record{}, fmt.Errorf("store: load %s: %w", arg, err)
	}
	if r.Curves, err = sketch.UnmarshalCurves([]byte(curves)); err != nil {
		return Record{}, fmt.Errorf("store: load %s: %w", arg, err)
	}
	r.CreatedAt = time.UnixMilli(created)
	r.UpdatedAt = time.UnixMilli(update)
	return r, nil
}

// List returns every saved sketch, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, orientation, curve_count, updated_at FROM sketches ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum         Summary
			orientation string
			updated     int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &orientation, &sum.CurveCount, &updated); err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		if sum.Orientation, err = plane.ParseOrientation(orientation); err != nil {
			return nil, fmt.Errorf("store: list %s: %w", sum.ID, err)
		}
		sum.UpdatedAt = time.UnixMilli(updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes the sketch with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sketches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.log.Debug("sketch deleted", zap.String("id", id))
	return nil
}
