package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enotes/enotes/internal/store"
	"github.com/enotes/enotes/internal/store/memory"
)

func TestUserStorePutIfAbsent(t *testing.T) {
	s := memory.NewUserStore()
	ctx := context.Background()

	inserted, err := s.PutIfAbsent(ctx, store.UserRecord{Username: "alice", TokenValid: true})
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = s.PutIfAbsent(ctx, store.UserRecord{Username: "alice"})
	require.NoError(t, err)
	require.False(t, inserted)

	// The losing insert must not have clobbered the original record.
	record, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, record.TokenValid)
}

func TestUserStorePutIfAbsentRace(t *testing.T) {
	s := memory.NewUserStore()
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan bool, attempts)

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := s.PutIfAbsent(ctx, store.UserRecord{Username: "alice"})
			require.NoError(t, err)
			results <- inserted
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for inserted := range results {
		if inserted {
			wins++
		}
	}
	require.Equal(t, 1, wins)
}

func TestUserStoreGetMissing(t *testing.T) {
	s := memory.NewUserStore()

	_, err := s.Get(context.Background(), "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserStorePutOverwrites(t *testing.T) {
	s := memory.NewUserStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, store.UserRecord{Username: "alice", RefreshTokenID: "r1", TokenValid: true}))
	require.NoError(t, s.Put(ctx, store.UserRecord{Username: "alice", RefreshTokenID: "r2", TokenValid: false}))

	record, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "r2", record.RefreshTokenID)
	require.False(t, record.TokenValid)
}

func TestNoteStoreOwnership(t *testing.T) {
	s := memory.NewNoteStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, store.NoteRecord{ID: "1", Owner: "alice", Title: "first"}))
	require.NoError(t, s.Put(ctx, store.NoteRecord{ID: "2", Owner: "bob", Title: "other"}))
	require.NoError(t, s.Put(ctx, store.NoteRecord{ID: "3", Owner: "alice", Title: "second"}))

	notes, err := s.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.Equal(t, "first", notes[0].Title)
	require.Equal(t, "second", notes[1].Title)
}

func TestNoteStoreDelete(t *testing.T) {
	s := memory.NewNoteStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, store.NoteRecord{ID: "1", Owner: "alice"}))
	require.NoError(t, s.Delete(ctx, "1"))

	_, err := s.Get(ctx, "1")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Delete(ctx, "1"), store.ErrNotFound)
}
