package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteStore persists projects in a single SQLite table. The document is
// stored as JSON text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dsn and ensures the
// schema. ":memory:" is accepted for tests.
func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "projects.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		name_he TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create projects table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// CreateProject inserts a project.
func (s *SQLiteStore) CreateProject(ctx context.Context, input Project) (Project, error) {
	input = prepare(input, uuid.NewString, time.Now().UTC())

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		input.ID, input.Name, input.NameHe, string(input.Data),
		formatTime(input.CreatedAt), formatTime(input.UpdatedAt)); err != nil {
		return Project{}, fmt.Errorf("insert project: %w", err)
	}
	return input, nil
}

// ListProjects returns projects newest first.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	projects := []Project{}
	for rows.Next() {
		item, err := scanSQLiteProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// GetProject loads a single project.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanSQLiteProject(row)
}

// UpdateProjectData replaces the JSON document of a project.
func (s *SQLiteStore) UpdateProjectData(ctx context.Context, id string, data json.RawMessage) (Project, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET data = ?, updated_at = ? WHERE id = ?`,
		string(data), formatTime(time.Now().UTC()), id)
	if err != nil {
		return Project{}, fmt.Errorf("update project: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Project{}, ErrNotFound
	}
	return s.GetProject(ctx, id)
}

// DeleteProject removes a project by ID.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteProject(row rowScanner) (Project, error) {
	var (
		item             Project
		data             string
		created, updated string
	)
	if err := row.Scan(&item.ID, &item.Name, &item.NameHe, &data, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, fmt.Errorf("scan project: %w", err)
	}
	item.Data = json.RawMessage(data)

	var err error
	if item.CreatedAt, err = parseTime(created); err != nil {
		return Project{}, err
	}
	if item.UpdatedAt, err = parseTime(updated); err != nil {
		return Project{}, err
	}
	return item, nil
}

// timeLayout is fixed width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
