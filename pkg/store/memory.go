package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/dhozzi-app/dhozzi/pkg/core/types"
)

// Memory is the in-process backend. History documents are kept serialized,
// matching the durable backends, so load-time recovery behaves the same way
// everywhere.
type Memory struct {
	logger *slog.Logger

	mu        sync.RWMutex
	users     map[string]types.User
	byEmail   map[string]string
	histories map[string][]byte
}

// NewMemory builds an empty memory store.
func NewMemory(logger *slog.Logger) *Memory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		logger:    logger,
		users:     make(map[string]types.User),
		byEmail:   make(map[string]string),
		histories: make(map[string][]byte),
	}
}

func (m *Memory) Users() Users         { return (*memoryUsers)(m) }
func (m *Memory) Histories() Histories { return (*memoryHistories)(m) }
func (m *Memory) Close()               {}

type memoryUsers Memory

func (m *memoryUsers) Get(_ context.Context, uid string) (types.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[uid]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return u, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (types.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	uid, ok := m.byEmail[normalizeEmail(email)]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return m.users[uid], nil
}

func (m *memoryUsers) Put(_ context.Context, user types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := normalizeEmail(user.Email)
	if _, ok := m.byEmail[email]; ok {
		return ErrEmailTaken
	}
	m.users[user.UID] = user
	m.byEmail[email] = user.UID
	return nil
}

func (m *memoryUsers) Update(_ context.Context, uid string, fn func(*types.User) error) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return types.User{}, ErrNotFound
	}
	if err := fn(&u); err != nil {
		return types.User{}, err
	}
	m.users[uid] = u
	return u, nil
}

type memoryHistories Memory

func (m *memoryHistories) Load(_ context.Context, uid string) ([]types.HistoryItem, error) {
	m.mu.RLock()
	raw, ok := m.histories[uid]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var items []types.HistoryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		// An unreadable document must not lock the user out of chat.
		m.logger.Warn("history document unreadable, starting empty", "uid", uid, "error", err)
		return nil, nil
	}
	types.SortByDateDesc(items)
	return items, nil
}

func (m *memoryHistories) Save(_ context.Context, uid string, items []types.HistoryItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.histories[uid] = raw
	m.mu.Unlock()
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
