package store

import (
	"context"
	"sync"
	"time"

	"groupchat/internal/model"
)

// MemoryStore is an in-process MessageStore used by tests and local runs
// without a database. It mirrors the MySQL semantics: strictly increasing
// ids, server-assigned timestamps, roster never stored.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	msgs   []model.Message
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Save appends msg, assigning the next id and the current time. The stored
// record drops the transient roster; the returned copy keeps it so callers
// can broadcast the persisted message as-is.
func (s *MemoryStore) Save(_ context.Context, msg model.Message) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	now := time.Now()

	saved := msg
	saved.ID = &id
	saved.Timestamp = &now

	record := saved
	record.ConnectedUsers = nil
	s.msgs = append(s.msgs, record)

	return saved, nil
}

// Recent returns up to limit messages, most recent first.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.msgs) {
		limit = len(s.msgs)
	}

	result := make([]model.Message, 0, limit)
	for i := len(s.msgs) - 1; i >= len(s.msgs)-limit; i-- {
		result = append(result, s.msgs[i])
	}
	return result, nil
}

// ByKind returns every message of the given kind, oldest first.
func (s *MemoryStore) ByKind(_ context.Context, kind model.MessageType) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []model.Message
	for _, msg := range s.msgs {
		if msg.Type == kind {
			result = append(result, msg)
		}
	}
	return result, nil
}
