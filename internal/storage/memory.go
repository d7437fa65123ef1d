package storage

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a thread-safe store used when a database is not configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	projects []Project
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{projects: make([]Project, 0)}
}

// CreateProject prepends a project so listings come newest first.
func (s *InMemoryStore) CreateProject(_ context.Context, input Project) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	input = prepare(input, uuid.NewString, time.Now())
	input.Data = cloneRaw(input.Data)
	s.projects = append([]Project{input}, s.projects...)

	return input, nil
}

// ListProjects returns a snapshot of stored projects.
func (s *InMemoryStore) ListProjects(_ context.Context) ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]Project, len(s.projects))
	copy(snapshot, s.projects)
	return snapshot, nil
}

// Close satisfies the Store interface.
func (s *InMemoryStore) Close() {}

// GetProject returns a project by ID.
func (s *InMemoryStore) GetProject(_ context.Context, id string) (Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return Project{}, ErrNotFound
}

// UpdateProjectData replaces the JSON document of a project.
func (s *InMemoryStore) UpdateProjectData(_ context.Context, id string, data json.RawMessage) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for idx, p := range s.projects {
		if p.ID == id {
			s.projects[idx].Data = cloneRaw(data)
			s.projects[idx].UpdatedAt = time.Now()
			return s.projects[idx], nil
		}
	}
	return Project{}, ErrNotFound
}

// DeleteProject removes a project by ID.
func (s *InMemoryStore) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for idx, p := range s.projects {
		if p.ID == id {
			s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// cloneRaw detaches stored documents from caller-owned buffers.
func cloneRaw(data json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), data...)
}
