// Package server exposes the active evaluation over HTTP for the single-user
// web form: template upload, item edits, live scores, reports and snapshots.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dotcommander/evalpanel/internal/evaluation"
	"github.com/dotcommander/evalpanel/internal/snapshot"
	"github.com/dotcommander/evalpanel/internal/template"
)

// maxUploadSize bounds template uploads.
const maxUploadSize = 32 << 20

// Server holds the one evaluation being edited. Every handler runs under mu,
// so there is at most one writer at a time.
type Server struct {
	mu        sync.Mutex
	store     *evaluation.Store
	snapshots snapshot.Store
	groups    []template.Group
	key       string
	keyLayout string
	now       func() time.Time
}

// New creates a Server persisting snapshots to snapshots.
func New(snapshots snapshot.Store, keyLayout string) *Server {
	return &Server{
		store:     evaluation.NewStore(),
		snapshots: snapshots,
		keyLayout: keyLayout,
		now:       time.Now,
	}
}

// Routes returns a chi.Router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/template", s.locked(s.handleLoadTemplate))

	r.Route("/evaluation", func(r chi.Router) {
		r.Get("/", s.locked(s.handleGetEvaluation))
		r.Put("/header", s.locked(s.handleSetHeader))
		r.Put("/groups/{group}/items/{index}", s.locked(s.handleSetResponse))
		r.Get("/display", s.locked(s.handleDisplay))
		r.Get("/report", s.locked(s.handleReport))
	})

	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.locked(s.handleListSnapshots))
		r.Post("/", s.locked(s.handleSaveSnapshot))
		r.Post("/{key}/open", s.locked(s.handleOpenSnapshot))
	})

	return r
}

func (s *Server) locked(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		h(w, r)
	}
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Printf("listening on %s", addr)

	select {
	case <-ctx.Done():
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}
