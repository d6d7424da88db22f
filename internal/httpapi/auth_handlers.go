package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/enotes/enotes/internal/auth"
	"github.com/enotes/enotes/pkg/httpx"
	"github.com/enotes/enotes/pkg/slogx"
)

// AuthHandler serves the /authentication/* routes.
type AuthHandler struct {
	AuthService *auth.Service
}

func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}

	pair, err := h.AuthService.SignUp(r.Context(), creds)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}

	pair, err := h.AuthService.SignIn(r.Context(), creds)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var token auth.AuthenticationToken
	if !decodeBody(w, r, &token) {
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), token)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	var token auth.AuthenticationToken
	if !decodeBody(w, r, &token) {
		return
	}

	status, err := h.AuthService.SignOut(r.Context(), token)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, status)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeAuthError maps domain errors onto their HTTP statuses: duplicate
// signup is a conflict, every credential or token failure is a bad
// request, anything else is a server fault.
func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var exists *auth.AlreadyExistsError
	if errors.As(err, &exists) {
		httpx.WriteError(w, http.StatusConflict, err.Error())
		return
	}

	var authErr *auth.AuthenticationError
	if errors.As(err, &authErr) {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	slogx.FromContext(r.Context()).Error("authentication request failed", "error", err)
	httpx.WriteError(w, http.StatusInternalServerError, "internal error")
}
