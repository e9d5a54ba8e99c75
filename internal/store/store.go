// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists parsed degree audits per user in SQLite so the
// latest audit can be reloaded and its needs recomputed without re-running
// the parser.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Najam-Usman/uiuc-course-planner/internal/audit"
	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

const (
	dbFile = "planner.db"

	// DefaultUser owns audits saved without an explicit user.
	DefaultUser = "demo"

	// timeLayout is fixed-width so created_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// ErrNotFound is returned when no audit matches a lookup.
var ErrNotFound = errors.New("audit not found")

// Record is one saved audit.
type Record struct {
	ID        string               `json:"id" yaml:"id"`
	UserID    string               `json:"user_id" yaml:"user_id"`
	Meta      types.AuditMeta      `json:"meta" yaml:"meta"`
	Counters  types.AuditCounters  `json:"counters" yaml:"counters"`
	Courses   []types.ParsedCourse `json:"courses" yaml:"courses"`
	Sections  []types.AuditSection `json:"sections,omitempty" yaml:"sections,omitempty"`
	Stats     types.AuditStats     `json:"stats" yaml:"stats"`
	CreatedAt time.Time            `json:"created_at" yaml:"created_at"`
}

// Audit rebuilds the parsed audit held by the record.
func (r *Record) Audit() *types.ParsedAudit {
	return &types.ParsedAudit{
		Meta:     r.Meta,
		Counters: r.Counters,
		Courses:  r.Courses,
		Sections: r.Sections,
	}
}

// Store manages the audit SQLite database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open opens or creates the audit database at dataDir/planner.db and
// creates the schema if it does not exist.
func Open(dataDir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("audit store opened", zap.String("path", dbPath))
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS audits (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			program TEXT,
			degree TEXT,
			catalog_year TEXT,
			meta TEXT NOT NULL,
			counters TEXT NOT NULL,
			courses TEXT NOT NULL,
			sections TEXT,
			stats TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_user_created ON audits(user_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores a parsed audit for userID. Raw sections are kept only when
// includeSections is true; without them needs cannot be recomputed later.
func (s *Store) Save(ctx context.Context, userID string, a *types.ParsedAudit, includeSections bool) (*Record, error) {
	if a == nil {
		return nil, fmt.Errorf("saving audit: nil audit")
	}
	if userID == "" {
		userID = DefaultUser
	}

	rec := &Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		Meta:      a.Meta,
		Counters:  a.Counters,
		Courses:   a.Courses,
		Stats:     audit.ComputeStats(a.Courses),
		CreatedAt: s.now().UTC(),
	}
	if rec.Courses == nil {
		rec.Courses = []types.ParsedCourse{}
	}
	if includeSections {
		rec.Sections = a.Sections
		if rec.Sections == nil {
			rec.Sections = []types.AuditSection{}
		}
	}

	metaJSON, err := json.Marshal(rec.Meta)
	if err != nil {
		return nil, fmt.Errorf("encoding meta: %w", err)
	}
	countersJSON, err := json.Marshal(rec.Counters)
	if err != nil {
		return nil, fmt.Errorf("encoding counters: %w", err)
	}
	coursesJSON, err := json.Marshal(rec.Courses)
	if err != nil {
		return nil, fmt.Errorf("encoding courses: %w", err)
	}
	statsJSON, err := json.Marshal(rec.Stats)
	if err != nil {
		return nil, fmt.Errorf("encoding stats: %w", err)
	}
	var sectionsJSON sql.NullString
	if includeSections {
		b, err := json.Marshal(rec.Sections)
		if err != nil {
			return nil, fmt.Errorf("encoding sections: %w", err)
		}
		sectionsJSON = sql.NullString{String: string(b), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO audits (id, user_id, program, degree, catalog_year, meta, counters, courses, sections, stats, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Meta.Program, rec.Meta.Degree, rec.Meta.CatalogYear,
		string(metaJSON), string(countersJSON), string(coursesJSON), sectionsJSON,
		string(statsJSON), rec.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting audit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing audit: %w", err)
	}

	s.logger.Info("audit saved",
		zap.String("id", rec.ID),
		zap.String("user", rec.UserID),
		zap.String("program", rec.Meta.Program),
		zap.Bool("sections", includeSections),
	)
	return rec, nil
}

const selectColumns = `SELECT id, user_id, meta, counters, courses, sections, stats, created_at FROM audits`

// Latest returns the most recently saved audit for userID.
func (s *Store) Latest(ctx context.Context, userID string) (*Record, error) {
	if userID == "" {
		userID = DefaultUser
	}
	row := s.db.QueryRowContext(ctx,
		selectColumns+` WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, userID)
	return scanRecord(row)
}

// Get returns the audit with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	return scanRecord(row)
}

// List returns up to limit audits for userID, newest first. A limit of zero
// or less returns all of them.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]*Record, error) {
	if userID == "" {
		userID = DefaultUser
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audits: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audits: %w", err)
	}
	return records, nil
}

// Delete removes the audit with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting audit %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting audit %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("deleting audit %s: %w", id, ErrNotFound)
	}
	s.logger.Info("audit deleted", zap.String("id", id))
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		rec                                   Record
		meta, counters, courses, stats, ctime string
		sections                              sql.NullString
	)
	err := sc.Scan(&rec.ID, &rec.UserID, &meta, &counters, &courses, &sections, &stats, &ctime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning audit: %w", err)
	}

	if err := json.Unmarshal([]byte(meta), &rec.Meta); err != nil {
		return nil, fmt.Errorf("decoding meta of %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(counters), &rec.Counters); err != nil {
		return nil, fmt.Errorf("decoding counters of %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(courses), &rec.Courses); err != nil {
		return nil, fmt.Errorf("decoding courses of %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(stats), &rec.Stats); err != nil {
		return nil, fmt.Errorf("decoding stats of %s: %w", rec.ID, err)
	}
	if sections.Valid {
		if err := json.Unmarshal([]byte(sections.String), &rec.Sections); err != nil {
			return nil, fmt.Errorf("decoding sections of %s: %w", rec.ID, err)
		}
	}
	rec.CreatedAt, err = time.Parse(timeLayout, ctime)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at of %s: %w", rec.ID, err)
	}
	return &rec, nil
}
