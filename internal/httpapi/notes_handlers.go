package httpapi

import (
	"errors"
	"net/http"

	"github.com/enotes/enotes/internal/notes"
	"github.com/enotes/enotes/pkg/httpx"
	"github.com/enotes/enotes/pkg/slogx"
)

// NotesHandler serves the /notes* routes. The authentication middleware
// has already placed the token subject in the request context.
type NotesHandler struct {
	NotesService *notes.Service
}

func (h *NotesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	username := httpx.UsernameFromContext(r.Context())

	var note notes.Note
	if !decodeBody(w, r, &note) {
		return
	}

	id, err := h.NotesService.Create(r.Context(), username, note)
	if err != nil {
		writeNotesError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, id)
}

func (h *NotesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	username := httpx.UsernameFromContext(r.Context())

	note, err := h.NotesService.Get(r.Context(), username, r.PathValue("id"))
	if err != nil {
		writeNotesError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, note)
}

func (h *NotesHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	username := httpx.UsernameFromContext(r.Context())

	all, err := h.NotesService.GetAll(r.Context(), username)
	if err != nil {
		writeNotesError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, all)
}

func (h *NotesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	username := httpx.UsernameFromContext(r.Context())

	if err := h.NotesService.Delete(r.Context(), username, r.PathValue("id")); err != nil {
		writeNotesError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeNotesError(w http.ResponseWriter, r *http.Request, err error) {
	var notesErr *notes.Error
	if errors.As(err, &notesErr) {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	slogx.FromContext(r.Context()).Error("notes request failed", "error", err)
	httpx.WriteError(w, http.StatusInternalServerError, "internal error")
}
