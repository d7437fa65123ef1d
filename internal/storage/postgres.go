package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists projects in PostgreSQL with the document in a JSONB column.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const projectColumns = `id, name, name_he, data, created_at, updated_at`

// CreateProject stores the provided project in PostgreSQL.
func (s *PostgresStore) CreateProject(ctx context.Context, input Project) (Project, error) {
	input = prepare(input, uuid.NewString, time.Now())

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		input.ID, input.Name, input.NameHe, []byte(input.Data), input.CreatedAt, input.UpdatedAt); err != nil {
		return Project{}, fmt.Errorf("insert project: %w", err)
	}

	return input, nil
}

// ListProjects returns projects newest first.
func (s *PostgresStore) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		item, err := scanPostgresProject(rows)
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
func (s *PostgresStore) GetProject(ctx context.Context, id string) (Project, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanPostgresProject(row)
}

// UpdateProjectData replaces the JSON document of a project.
func (s *PostgresStore) UpdateProjectData(ctx context.Context, id string, data json.RawMessage) (Project, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE projects SET data = $2, updated_at = now() WHERE id = $1 RETURNING `+projectColumns,
		id, []byte(data))
	return scanPostgresProject(row)
}

// DeleteProject removes a project by ID.
func (s *PostgresStore) DeleteProject(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases database resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func scanPostgresProject(row pgx.Row) (Project, error) {
	var (
		item Project
		data []byte
	)
	if err := row.Scan(&item.ID, &item.Name, &item.NameHe, &data, &item.CreatedAt, &item.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, fmt.Errorf("scan project: %w", err)
	}
	item.Data = data
	return item, nil
}
