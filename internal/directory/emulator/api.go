package emulator

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/yaknet/monkeysync/internal/model"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Handler serves the entity endpoints.
type Handler struct {
	store *Store
	log   zerolog.Logger
}

// NewRouter mounts the entity API. A non-empty token is required as a
// bearer token on every request.
func NewRouter(s *Store, token string, log zerolog.Logger) http.Handler {
	h := &Handler{store: s, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	if token != "" {
		r.Use(AuthMiddleware(token))
	}

	r.Route("/entities", func(r chi.Router) {
		r.Get("/match", h.Match)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

// AuthMiddleware rejects requests without the expected bearer token.
func AuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format")
				return
			}
			if parts[1] != token {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next.ServeHTTP(w, r)
	})
}

// Match handles GET /entities/match.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := model.MatchQuery{
		ID:       q.Get("id"),
		Email:    q.Get("email"),
		Name:     q.Get("name"),
		Metadata: q.Get("metadata"),
	}
	if query.Empty() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "At least one of id, email, name or metadata is required")
		return
	}

	entities, err := h.store.Match(query)
	if err != nil {
		h.log.Error().Err(err).Msg("match failed")
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to match entities")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": entities})
}

// Create handles POST /entities.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var e model.Entity
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	if e.Email == "" && e.Name() == "" {
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid_request", "Entity needs an email or a name")
		return
	}

	created, err := h.store.Create(e)
	if err != nil {
		h.log.Error().Err(err).Msg("create failed")
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to create entity")
		return
	}
	h.log.Info().Str("id", created.ID).Str("email", created.Email).Msg("entity created")
	writeJSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Get handles GET /entities/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "not_found", "Entity not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to get entity")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": e})
}

// Delete handles DELETE /entities/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "not_found", "Entity not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to delete entity")
		return
	}
	h.log.Info().Str("id", id).Msg("entity deleted")
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{
		Error:            code,
		ErrorDescription: description,
	})
}
