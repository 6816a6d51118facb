package database

import (
	"sort"
	"sync"
	"time"

	"github.com/victorgomez09/healthflow/internal/auth/models"
)

// MemoryStore keeps the token and events in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	token  string
	events []models.SessionEvent
	nextID int64
}

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) LoadToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) SaveToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ClearToken() error {
	return m.SaveToken("")
}

func (m *MemoryStore) RecordEvent(event *models.SessionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	event.ID = m.nextID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *MemoryStore) ListEvents(limit int) ([]models.SessionEvent, error) {
	m.mu.Lock()
	out := make([]models.SessionEvent, len(m.events))
	copy(out, m.events)
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
