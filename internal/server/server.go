// Package server provides the HTTP API for the conversation archive.
//
// Endpoints:
//   - GET    /health                        - Health check
//   - GET    /stats                         - Usage statistics
//   - GET    /v1/conversations              - List conversation metadata
//   - GET    /v1/conversations/{id}         - Fetch one conversation
//   - GET    /v1/conversations/{id}/export  - Export (format query parameter)
//   - DELETE /v1/conversations/{id}         - Delete a conversation
//   - POST   /v1/conversations/import       - Import a conversation from JSON
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"chatexport/internal/cache"
	"chatexport/internal/config"
	"chatexport/internal/export"
	"chatexport/internal/storage"
)

// Version is the API version reported by /health.
const Version = "1.0.0"

// MaxImportBodySize caps import request bodies (8MB).
const MaxImportBodySize = 8 * 1024 * 1024

// =============================================================================
// SERVER STATS
// =============================================================================

// Stats tracks server usage counters.
type Stats struct {
	TotalRequests int64 `json:"total_requests"`
	Exports       int64 `json:"exports"`
	Imports       int64 `json:"imports"`
}

// =============================================================================
// SERVER
// =============================================================================

// Server serves the conversation archive over HTTP.
type Server struct {
	store  *storage.Store
	cache  *cache.ConversationCache
	cfg    config.ServerConfig
	logger *log.Logger
	http   *http.Server

	totalRequests atomic.Int64
	exports       atomic.Int64
	imports       atomic.Int64
}

// New creates a server around an open store.
func New(store *storage.Store, cfg config.ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[server] ", log.LstdFlags)
	}

	s := &Server{
		store:  store,
		cache:  cache.New(),
		cfg:    cfg,
		logger: logger,
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /v1/conversations", s.handleList)
	mux.HandleFunc("GET /v1/conversations/{id}", s.handleGet)
	mux.HandleFunc("GET /v1/conversations/{id}/export", s.handleExport)
	mux.HandleFunc("DELETE /v1/conversations/{id}", s.handleDelete)
	mux.HandleFunc("POST /v1/conversations/import", s.handleImport)

	handler := Chain(mux,
		s.countRequests,
		LoggingMiddleware(logger),
		RecoveryMiddleware(logger),
		RateLimitMiddleware(limiter),
	)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Handler exposes the configured handler chain (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe starts serving and blocks until shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("listening on %s", s.cfg.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// countRequests increments the request counter.
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.totalRequests.Add(1)
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": Version,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Stats{
		TotalRequests: s.totalRequests.Load(),
		Exports:       s.exports.Load(),
		Imports:       s.imports.Load(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		metas interface{}
		err   error
	)
	if query := r.URL.Query().Get("q"); query != "" {
		metas, err = s.store.Search(query)
	} else {
		metas, err = s.store.List()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": metas})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	conv, err := s.cache.Load(id, s.store.Load)
	if err != nil {
		if errors.Is(err, storage.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = "json"
	}

	format, err := export.ParseFormat(formatParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := s.cache.Load(id, s.store.Load)
	if err != nil {
		if errors.Is(err, storage.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := export.Export(conv, format)
	if err != nil {
		var verr *export.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.exports.Add(1)
	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Content)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, storage.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.cache.Invalidate(id)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	conv, err := storage.ImportJSON(http.MaxBytesReader(w, r.Body, MaxImportBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.Save(conv)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.imports.Add(1)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":       id,
		"messages": conv.MessageCount(),
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
