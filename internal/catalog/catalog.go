// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog records pipeline runs and the sections they produced in a
// SQLite database, with full-text search over section titles and bodies.
package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/adoc2site/internal/apperr"
	"github.com/pdiddy/adoc2site/pkg/types"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID        int64     `json:"id" yaml:"id"`
	Source    string    `json:"source" yaml:"source"`
	OutputDir string    `json:"output_dir" yaml:"output_dir"`
	Runner    string    `json:"runner" yaml:"runner"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Sections  int       `json:"sections" yaml:"sections"`
}

// Entry is a section as written to disk.
type Entry struct {
	types.Section
	Path string
}

// Hit is a search result.
type Hit struct {
	RunID    int64  `json:"run_id" yaml:"run_id"`
	Slug     string `json:"slug" yaml:"slug"`
	Title    string `json:"title" yaml:"title"`
	Position int    `json:"position" yaml:"position"`
	Path     string `json:"path" yaml:"path"`
	Checksum string `json:"checksum" yaml:"checksum"`
}

// Store manages the catalog database.
type Store struct {
	db         *sql.DB
	path       string
	maxResults int
	fts        bool
}

// Open opens or creates the catalog database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.CatalogConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = types.DefaultPipelineConfig().Catalog.Path
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperr.FileSystem("mkdir", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, apperr.FileSystem("open", path, err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, path: path, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, apperr.FileSystem("open", path, fmt.Errorf("creating schema: %w", err))
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// FullText reports whether searches use the FTS5 index. Builds of the
// sqlite3 driver without FTS5 fall back to substring matching.
func (s *Store) FullText() bool {
	return s.fts
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			runner TEXT,
			created_at TEXT NOT NULL,
			section_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			slug TEXT NOT NULL,
			title TEXT NOT NULL,
			position INTEGER NOT NULL,
			path TEXT NOT NULL,
			checksum TEXT NOT NULL,
			body TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_run_id ON sections(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_slug ON sections(slug)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='sections_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	_, err := s.db.Exec(`CREATE VIRTUAL TABLE sections_fts USING fts5(title, body, content=sections, content_rowid=rowid)`)
	if err != nil {
		if strings.Contains(err.Error(), "no such module") {
			return nil
		}
		return fmt.Errorf("creating FTS table: %w", err)
	}

	triggers := []string{
		`CREATE TRIGGER sections_ai AFTER INSERT ON sections BEGIN
			INSERT INTO sections_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
		END`,
		`CREATE TRIGGER sections_ad AFTER DELETE ON sections BEGIN
			INSERT INTO sections_fts(sections_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
		END`,
		`CREATE TRIGGER sections_au AFTER UPDATE ON sections BEGIN
			INSERT INTO sections_fts(sections_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
			INSERT INTO sections_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
		END`,
	}
	for _, stmt := range triggers {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	s.fts = true
	return nil
}

// Checksum returns the hex SHA-256 of body.
func Checksum(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// Record stores run and its entries in one transaction and returns the new
// run ID. CreatedAt defaults to now and Sections to len(entries).
func (s *Store) Record(ctx context.Context, run Run, entries []Entry) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.Sections = len(entries)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperr.FileSystem("record", s.path, fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (source, output_dir, runner, created_at, section_count) VALUES (?, ?, ?, ?, ?)`,
		run.Source, run.OutputDir, run.Runner, run.CreatedAt.UTC().Format(time.RFC3339Nano), run.Sections,
	)
	if err != nil {
		return 0, apperr.FileSystem("record", s.path, fmt.Errorf("inserting run: %w", err))
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.FileSystem("record", s.path, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sections (run_id, slug, title, position, path, checksum, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, apperr.FileSystem("record", s.path, fmt.Errorf("preparing insert: %w", err))
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx, runID, e.Slug, e.Title, e.Position, e.Path, Checksum(e.Body), e.Body)
		if err != nil {
			return 0, apperr.FileSystem("record", s.path, fmt.Errorf("inserting section %s: %w", e.Slug, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.FileSystem("record", s.path, err)
	}
	return runID, nil
}

// Runs lists the most recent runs, newest first. A non-positive limit uses
// the configured maximum.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, output_dir, runner, created_at, section_count
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperr.FileSystem("query", s.path, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			runner  sql.NullString
			created string
		)
		if err := rows.Scan(&r.ID, &r.Source, &r.OutputDir, &runner, &created, &r.Sections); err != nil {
			return nil, apperr.FileSystem("query", s.path, err)
		}
		r.Runner = runner.String
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.FileSystem("query", s.path, err)
	}
	return runs, nil
}

// Search finds sections of the latest run whose title or body match query.
// With FTS5 the query uses FTS5 syntax and hits are ranked by relevance;
// otherwise it is a case-insensitive substring and hits follow position.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Malformed("empty search query")
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		q    string
		args []any
	)
	if s.fts {
		q = `SELECT s.run_id, s.slug, s.title, s.position, s.path, s.checksum
			FROM sections_fts
			JOIN sections s ON s.rowid = sections_fts.rowid
			WHERE sections_fts MATCH ?
			  AND s.run_id = (SELECT max(id) FROM runs)
			ORDER BY sections_fts.rank
			LIMIT ?`
		args = []any{query, limit}
	} else {
		pattern := "%" + strings.ToLower(query) + "%"
		q = `SELECT s.run_id, s.slug, s.title, s.position, s.path, s.checksum
			FROM sections s
			WHERE (lower(s.title) LIKE ? OR lower(s.body) LIKE ?)
			  AND s.run_id = (SELECT max(id) FROM runs)
			ORDER BY s.position, s.rowid
			LIMIT ?`
		args = []any{pattern, pattern, limit}
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.FileSystem("query", s.path, fmt.Errorf("searching catalog: %w", err))
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.RunID, &h.Slug, &h.Title, &h.Position, &h.Path, &h.Checksum); err != nil {
			return nil, apperr.FileSystem("query", s.path, err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.FileSystem("query", s.path, err)
	}
	return hits, nil
}
