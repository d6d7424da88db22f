// Package httpapi exposes the authentication and notes services over
// HTTP. Routes mirror the public API: /authentication/* is open,
// /notes* requires a bearer access token.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/enotes/enotes/internal/auth"
	"github.com/enotes/enotes/internal/notes"
	"github.com/enotes/enotes/pkg/httpx"
	"github.com/enotes/enotes/pkg/slogx"
	"github.com/enotes/enotes/pkg/tokens"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	validator tokens.Validator
	logger    *slog.Logger

	AuthService  *auth.Service
	NotesService *notes.Service
}

func NewRouter(
	validator tokens.Validator,
	authService *auth.Service,
	notesService *notes.Service,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		validator:    validator,
		logger:       logger,
		AuthService:  authService,
		NotesService: notesService,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	r.registerAuthentication()
	r.registerNotes()
	return r
}

// ServeHTTP implements http.Handler and applies the global middleware
// chain around the mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuthentication() {
	h := &AuthHandler{AuthService: r.AuthService}

	r.Mux.Handle("POST /authentication/signup", http.HandlerFunc(h.HandleSignUp))
	r.Mux.Handle("POST /authentication/signin", http.HandlerFunc(h.HandleSignIn))
	r.Mux.Handle("POST /authentication/token", http.HandlerFunc(h.HandleRefresh))
	r.Mux.Handle("POST /authentication/signout", http.HandlerFunc(h.HandleSignOut))
}

func (r *Router) registerNotes() {
	h := &NotesHandler{NotesService: r.NotesService}

	// Every notes route sits behind access-token authentication; the
	// validator holds only the public key.
	authn := httpx.AuthnMiddleware(r.validator)

	r.Mux.Handle("POST /notes", httpx.Chain(http.HandlerFunc(h.HandleCreate), authn))
	r.Mux.Handle("GET /notes", httpx.Chain(http.HandlerFunc(h.HandleGetAll), authn))
	r.Mux.Handle("GET /notes/{id}", httpx.Chain(http.HandlerFunc(h.HandleGet), authn))
	r.Mux.Handle("DELETE /notes/{id}", httpx.Chain(http.HandlerFunc(h.HandleDelete), authn))
}
