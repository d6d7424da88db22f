// Package memory provides the in-process reference drivers for the store
// contracts. User and note data intentionally does not survive a restart;
// only the key container on disk does.
package memory

import (
	"context"
	"sync"

	"github.com/enotes/enotes/internal/store"
)

// UserStore is a mutex-guarded map of username to credential record. The
// lock makes every operation atomic per key, which is all the concurrency
// the credential state machine needs.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]store.UserRecord
}

var _ store.Users = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]store.UserRecord)}
}

func (s *UserStore) PutIfAbsent(_ context.Context, record store.UserRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[record.Username]; exists {
		return false, nil
	}
	s.users[record.Username] = record
	return true, nil
}

func (s *UserStore) Get(_ context.Context, username string) (store.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.users[username]
	if !ok {
		return store.UserRecord{}, store.ErrNotFound
	}
	return record, nil
}

func (s *UserStore) Put(_ context.Context, record store.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[record.Username] = record
	return nil
}
