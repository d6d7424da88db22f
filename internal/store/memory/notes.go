package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/enotes/enotes/internal/store"
)

// NoteStore is a mutex-guarded map of note id to note record.
type NoteStore struct {
	mu    sync.RWMutex
	notes map[string]store.NoteRecord
}

var _ store.Notes = (*NoteStore)(nil)

func NewNoteStore() *NoteStore {
	return &NoteStore{notes: make(map[string]store.NoteRecord)}
}

func (s *NoteStore) Put(_ context.Context, record store.NoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes[record.ID] = record
	return nil
}

func (s *NoteStore) Get(_ context.Context, id string) (store.NoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.notes[id]
	if !ok {
		return store.NoteRecord{}, store.ErrNotFound
	}
	return record, nil
}

func (s *NoteStore) ListByOwner(_ context.Context, username string) ([]store.NoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []store.NoteRecord
	for _, record := range s.notes {
		if record.Owner == username {
			records = append(records, record)
		}
	}

	// Note ids are ULIDs, so id order is creation order.
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (s *NoteStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}
