package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that a project could not be located in the backing store.
var ErrNotFound = errors.New("project not found")

// Project is a stored project record. Data holds the project's JSON document
// exactly as persisted; the store never interprets it.
type Project struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	NameHe    string          `json:"nameHe,omitempty"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Store defines the persistence behaviors the application relies on.
type Store interface {
	CreateProject(ctx context.Context, input Project) (Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, id string) (Project, error)
	UpdateProjectData(ctx context.Context, id string, data json.RawMessage) (Project, error)
	DeleteProject(ctx context.Context, id string) error
	Close()
}

const sqlitePrefix = "sqlite:"

// NewStore selects a backing store from the database URL: empty means in
// memory, "sqlite:<path>" or a "file:" URI means SQLite, anything else is
// handed to PostgreSQL.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	switch {
	case databaseURL == "":
		return NewInMemoryStore(), nil
	case strings.HasPrefix(databaseURL, sqlitePrefix):
		return NewSQLiteStore(ctx, strings.TrimPrefix(databaseURL, sqlitePrefix))
	case strings.HasPrefix(databaseURL, "file:"):
		return NewSQLiteStore(ctx, databaseURL)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS projects (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        data JSONB NOT NULL DEFAULT '{}'::jsonb,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`)
	if err != nil {
		return fmt.Errorf("create projects table: %w", err)
	}

	var schemaAlters = []string{
		`ALTER TABLE projects ADD COLUMN IF NOT EXISTS name_he TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE projects ADD COLUMN IF NOT EXISTS updated_at TIMESTAMPTZ NOT NULL DEFAULT now()`,
	}
	for _, stmt := range schemaAlters {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("alter projects table: %w", err)
		}
	}

	return nil
}

// prepare fills the defaults every backend applies on create.
func prepare(input Project, newID func() string, now time.Time) Project {
	if input.ID == "" {
		input.ID = newID()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = now
	}
	input.UpdatedAt = input.CreatedAt
	if len(input.Data) == 0 {
		input.Data = json.RawMessage(`{}`)
	}
	return input
}
