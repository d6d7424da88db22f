// Package notes implements the per-user note service. Notes are plain
// keyed records; the only rule is ownership, a user can never see or
// delete another user's notes.
package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enotes/enotes/internal/store"
	"github.com/enotes/enotes/pkg/ident"
)

// Note is the wire representation of one note. ID is empty on create
// requests and populated on responses.
type Note struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NoteID is the create response body.
type NoteID struct {
	ID string `json:"id"`
}

// Error is the notes domain error. Its message is user facing.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func errInvalidID(id string) *Error {
	return &Error{Reason: fmt.Sprintf("Note id: {%s} is invalid", id)}
}

func errNotFound(id string) *Error {
	return &Error{Reason: fmt.Sprintf("Note with id: {%s} is not found", id)}
}

type Service struct {
	notes store.Notes
}

func NewService(notes store.Notes) *Service {
	return &Service{notes: notes}
}

// Create stores a new note for username and returns its generated id.
func (s *Service) Create(ctx context.Context, username string, note Note) (NoteID, error) {
	id := ident.New()
	err := s.notes.Put(ctx, store.NoteRecord{
		ID:        id,
		Owner:     username,
		Title:     note.Title,
		Body:      note.Body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return NoteID{}, fmt.Errorf("notes: failed to store note: %w", err)
	}
	return NoteID{ID: id}, nil
}

// Get returns the note with the given id if it belongs to username. A
// note owned by someone else is reported as not found, never as denied.
func (s *Service) Get(ctx context.Context, username, id string) (Note, error) {
	if id == "" {
		return Note{}, errInvalidID(id)
	}

	record, err := s.notes.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Note{}, errNotFound(id)
	}
	if err != nil {
		return Note{}, fmt.Errorf("notes: failed to load note: %w", err)
	}
	if record.Owner != username {
		return Note{}, errNotFound(id)
	}

	return Note{ID: record.ID, Title: record.Title, Body: record.Body}, nil
}

// GetAll returns every note owned by username, oldest first.
func (s *Service) GetAll(ctx context.Context, username string) ([]Note, error) {
	if username == "" {
		return nil, &Error{Reason: fmt.Sprintf("user id: {%s} is invalid", username)}
	}

	records, err := s.notes.ListByOwner(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("notes: failed to list notes: %w", err)
	}

	result := make([]Note, 0, len(records))
	for _, record := range records {
		result = append(result, Note{ID: record.ID, Title: record.Title, Body: record.Body})
	}
	return result, nil
}

// Delete removes the note with the given id if it belongs to username.
func (s *Service) Delete(ctx context.Context, username, id string) error {
	if _, err := s.Get(ctx, username, id); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, id); err != nil {
		return fmt.Errorf("notes: failed to delete note: %w", err)
	}
	return nil
}
