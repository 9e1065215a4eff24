// Package web serves the practice service as a JSON HTTP API.
package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/conorfennell/promptdeck/internal/domain"
	"github.com/conorfennell/promptdeck/internal/practice"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	svc    *practice.Service
	router *http.ServeMux
}

// NewServer creates and configures a new server.
func NewServer(svc *practice.Service) *Server {
	s := &Server{
		svc:    svc,
		router: http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface and logs every request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.router.ServeHTTP(rec, r)
	slog.Info("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start),
	)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("GET /healthz", s.handleHealth())

	// Practice mode
	s.router.HandleFunc("GET /deck", s.handleGetDeck())
	s.router.HandleFunc("POST /practice/draw", s.handlePracticeDraw())
	s.router.HandleFunc("GET /practice/balance", s.handleBalance())
	s.router.HandleFunc("/practice/history", s.handleHistory())

	// Improv mode
	s.router.HandleFunc("POST /improv/draw", s.handleImprovDraw())
	s.router.HandleFunc("POST /improv/draw/single", s.handleImprovSingle())
	s.router.HandleFunc("POST /improv/reroll/always", s.handleRerollAlways())
	s.router.HandleFunc("POST /improv/reroll/suits", s.handleRerollSuits())

	// Custom prompts
	s.router.HandleFunc("/prompts", s.handlePrompts())
	s.router.HandleFunc("/prompts/{id}", s.handlePrompt())

	// Source management routes
	s.router.HandleFunc("/sources", s.handleSources())
	s.router.HandleFunc("DELETE /sources/{id}", s.handleDeleteSource())
	s.router.HandleFunc("POST /sync", s.handlePostSync())
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// handleGetDeck returns the assembled practice deck, or the improv deck
// with ?mode=improv.
func (s *Server) handleGetDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("mode") {
		case "", "practice":
		case "improv":
			writeJSON(w, http.StatusOK, s.svc.ImprovDeck())
			return
		default:
			http.Error(w, "Unknown deck mode", http.StatusBadRequest)
			return
		}
		deck, err := s.svc.Deck(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deck)
	}
}

// handlePracticeDraw draws and records a history-biased card.
func (s *Server) handlePracticeDraw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := s.svc.DrawPractice(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

func (s *Server) handleBalance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := s.svc.Balance(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

// handleHistory lists or clears the draw history.
func (s *Server) handleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			events, err := s.svc.History(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, events)
		case http.MethodDelete:
			if err := s.svc.ClearHistory(r.Context()); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// improvRequest is the body of the improv routes. Omitted settings fall
// back to the configured defaults.
type improvRequest struct {
	CardIDs []string `json:"cardIds"`
	domain.Settings
}

func (s *Server) decodeImprov(r *http.Request) (improvRequest, error) {
	req := improvRequest{Settings: s.svc.DefaultSettings()}
	if err := decodeJSON(r, &req); err != nil {
		return req, err
	}
	return req, nil
}

func (s *Server) handleImprovDraw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := s.decodeImprov(r)
		if err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		cards, err := s.svc.DrawImprov(req.Settings)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cards)
	}
}

func (s *Server) handleImprovSingle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := s.decodeImprov(r)
		if err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		card, err := s.svc.DrawImprovSingle(req.IncludeAlways)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

func (s *Server) handleRerollAlways() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := s.decodeImprov(r)
		if err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		cards, err := s.svc.RerollAlways(req.CardIDs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cards)
	}
}

func (s *Server) handleRerollSuits() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := s.decodeImprov(r)
		if err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		cards, err := s.svc.RerollSuits(req.CardIDs, req.Settings)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cards)
	}
}

type promptRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// handlePrompts lists or creates custom prompts.
func (s *Server) handlePrompts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			prompts, err := s.svc.ListPrompts(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, prompts)
		case http.MethodPost:
			var req promptRequest
			if err := decodeJSON(r, &req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			p, err := s.svc.AddPrompt(r.Context(), req.Title, req.Body)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, p)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handlePrompt updates or deletes a single custom prompt.
func (s *Server) handlePrompt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		switch r.Method {
		case http.MethodPut:
			var req promptRequest
			if err := decodeJSON(r, &req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			p, err := s.svc.UpdatePrompt(r.Context(), id, req.Title, req.Body)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, p)
		case http.MethodDelete:
			if err := s.svc.DeletePrompt(r.Context(), id); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handleSources lists or registers prompt sources.
func (s *Server) handleSources() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			sources, err := s.svc.ListSources(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, sources)
		case http.MethodPost:
			var req struct {
				Path string `json:"path"`
			}
			if err := decodeJSON(r, &req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			source, err := s.svc.AddSource(r.Context(), req.Path)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, source)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) handleDeleteSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid source ID", http.StatusBadRequest)
			return
		}
		if err := s.svc.DeleteSource(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handlePostSync runs a sync in the foreground and returns the reports.
func (s *Server) handlePostSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := s.svc.Sync(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reports)
	}
}

// decodeJSON decodes the request body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	body := map[string]any{"error": err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body["fields"] = ve.Fields
	}
	writeJSON(w, status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoCardsAvailable),
		errors.Is(err, domain.ErrEmptyDeck),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotEnoughCards):
		return http.StatusConflict
	case practice.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, practice.ErrNoSyncer):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
