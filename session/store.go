// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/danielhkuo/expert-survey/models"
)

// Store persists identities by session id.
type Store interface {
	// Get returns false when the session is unknown or has expired.
	Get(ctx context.Context, id string, now time.Time) (models.Identity, bool, error)
	Save(ctx context.Context, id string, who models.Identity, expires time.Time) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	who     models.Identity
	expires time.Time
}

// MemoryStore keeps sessions for the life of the process.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, id string, now time.Time) (models.Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return models.Identity{}, false, nil
	}
	if !now.Before(e.expires) {
		delete(s.sessions, id)
		return models.Identity{}, false, nil
	}
	return e.who, true, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, who models.Identity, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = memoryEntry{who: who, expires: expires}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// SQLStore keeps sessions in the survey_session table.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, id string, now time.Time) (models.Identity, bool, error) {
	var who models.Identity
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT name, email, expires_at FROM survey_session WHERE id = $1
	`, id).Scan(&who.Name, &who.Email, &expiresAt)

	if err == sql.ErrNoRows {
		return models.Identity{}, false, nil
	}
	if err != nil {
		return models.Identity{}, false, fmt.Errorf("failed to query session: %w", err)
	}

	if now.Unix() >= expiresAt {
		if err := s.Delete(ctx, id); err != nil {
			return models.Identity{}, false, err
		}
		return models.Identity{}, false, nil
	}
	return who, true, nil
}

func (s *SQLStore) Save(ctx context.Context, id string, who models.Identity, expires time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO survey_session (id, name, email, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			expires_at = EXCLUDED.expires_at
	`, id, who.Name, who.Email, expires.Unix())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM survey_session WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
