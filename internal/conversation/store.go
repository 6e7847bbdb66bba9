package conversation

import (
	"context"
	"sync"
	"time"
)

type ActionKind string

const (
	AwaitingFolderName      ActionKind = "awaiting_folder_name"
	AwaitingFolderLocation  ActionKind = "awaiting_folder_location"
	AwaitingFileDestination ActionKind = "awaiting_file_destination"
	AwaitingFileName        ActionKind = "awaiting_file_name"
)

// PendingAction is a command still missing one field. The next utterance from
// the same user supplies it.
type PendingAction struct {
	Kind        ActionKind `json:"kind"`
	Name        string     `json:"name,omitempty"`
	Location    string     `json:"location,omitempty"`
	Suggestions []string   `json:"suggestions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Store keeps at most one pending action per user id.
type Store interface {
	Get(ctx context.Context, user string) (PendingAction, bool, error)
	Put(ctx context.Context, user string, action PendingAction) error
	Delete(ctx context.Context, user string) error
}

type MemoryStore struct {
	mu      sync.Mutex
	pending map[string]PendingAction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: make(map[string]PendingAction)}
}

func (m *MemoryStore) Get(_ context.Context, user string) (PendingAction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.pending[user]
	return a, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, user string, action PendingAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending[user] = action
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pending, user)
	return nil
}
