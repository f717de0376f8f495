// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists a capacity-bounded collection of evidence
// entries keyed by slug. Implements: prd008-library (R1-R5);
//
//	docs/ARCHITECTURE § Library Store.
//
// Upsert merges new fields into an existing entry, preserving all
// previously-set fields. Creating a brand-new id at capacity evicts
// exactly the oldest entry by insertion order; updating an existing id
// never evicts. The pipeline is strictly sequential, so the
// read-modify-write upsert is uncontended; each upsert nevertheless runs
// in one transaction, which keeps it atomic per entry if a future caller
// adds concurrency.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

const (
	dbFile     = "library.db"
	exportFile = "export.yaml"

	defaultCapacity = 50
)

// ErrNotFound is returned by Get and Delete for an unknown entry id.
var ErrNotFound = errors.New("entry not found")

// Store manages the library SQLite database.
type Store struct {
	db       *sql.DB
	dir      string
	capacity int
}

// NewStore opens or creates the library database at
// cfg.LibraryDir/library.db, creating the schema if needed.
func NewStore(cfg types.LibraryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.LibraryDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	dbPath := filepath.Join(cfg.LibraryDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	s := &Store{db: db, dir: cfg.LibraryDir, capacity: capacity}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		label TEXT,
		generated_at TEXT,
		state TEXT,
		source TEXT,
		claims_analysis TEXT,
		similar_papers TEXT,
		research_groups TEXT,
		theses TEXT,
		patents TEXT,
		verified_claims TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Get returns the entry with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*types.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entry, err
}

// List returns all entries in insertion order.
func (s *Store) List(ctx context.Context) ([]types.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []types.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// Delete removes the entry with the given id, or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Upsert merges partial into the entry with the given id, creating it when
// absent. Stage fields of partial that are nil leave the stored stage
// untouched; non-nil stage fields replace it. Label, state, and source
// update only when set. The merged entry is returned.
func (s *Store) Upsert(ctx context.Context, id string, partial *types.Entry) (*types.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	existing, err := scanEntry(row)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		merged := mergeEntry(&types.Entry{ID: id}, partial)
		if err := s.evictIfFull(ctx, tx); err != nil {
			return nil, err
		}
		if err := insertEntry(ctx, tx, merged); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return merged, nil

	case err != nil:
		return nil, err

	default:
		merged := mergeEntry(existing, partial)
		if err := updateEntry(ctx, tx, merged); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return merged, nil
	}
}

// evictIfFull removes the oldest entries by insertion order until one slot
// is free for the incoming insert.
func (s *Store) evictIfFull(ctx context.Context, tx *sql.Tx) error {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM entries`).Scan(&count); err != nil {
		return fmt.Errorf("counting entries: %w", err)
	}
	for count >= s.capacity {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM entries WHERE seq = (SELECT min(seq) FROM entries)`); err != nil {
			return fmt.Errorf("evicting oldest entry: %w", err)
		}
		count--
	}
	return nil
}

// mergeEntry overlays partial onto base, preserving fields partial leaves
// unset. The state only moves forward.
func mergeEntry(base, partial *types.Entry) *types.Entry {
	merged := *base
	merged.ID = base.ID

	if partial.Label != "" {
		merged.Label = partial.Label
	}
	if !partial.GeneratedAt.IsZero() {
		merged.GeneratedAt = partial.GeneratedAt
	}
	if partial.Source != (types.SourceRef{}) {
		merged.Source = partial.Source
	}
	if partial.State != "" {
		if merged.State == "" {
			merged.State = partial.State
		} else {
			merged.Advance(partial.State)
		}
	}
	if partial.ClaimsAnalysis != nil {
		merged.ClaimsAnalysis = partial.ClaimsAnalysis
	}
	if partial.SimilarPapers != nil {
		merged.SimilarPapers = partial.SimilarPapers
	}
	if partial.ResearchGroups != nil {
		merged.ResearchGroups = partial.ResearchGroups
	}
	if partial.Theses != nil {
		merged.Theses = partial.Theses
	}
	if partial.Patents != nil {
		merged.Patents = partial.Patents
	}
	if partial.VerifiedClaims != nil {
		merged.VerifiedClaims = partial.VerifiedClaims
	}
	return &merged
}
