// Package statusserver exposes a small diagnostics HTTP surface: a single
// GET /status endpoint reporting plain integer counters, grounded on the
// teacher's cmd/cc-backend/server.go gorilla/mux router and
// graceful-shutdown http.Server shape. This is a pull-based read, not a
// metrics pipeline: no histogram/counter library is involved, only
// atomic integer counters.
package statusserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/flowgger-go/flowgger/pkg/log"
	"github.com/flowgger-go/flowgger/pkg/queue"
)

// Counters tracks the running totals surfaced at /status. All fields are
// updated with atomic adds, so producers and consumers touch them without
// any additional locking.
type Counters struct {
	Decoded atomic.Int64
	Encoded atomic.Int64
	Dropped atomic.Int64
}

type statusResponse struct {
	RecordsDecoded int64 `json:"records_decoded"`
	RecordsEncoded int64 `json:"records_encoded"`
	RecordsDropped int64 `json:"records_dropped"`
	QueueDepth     int   `json:"queue_depth"`
	QueueCapacity  int   `json:"queue_capacity"`
}

type Server struct {
	Listen   string
	Counters *Counters
	Queue    *queue.Queue

	server *http.Server
}

func New(listen string, counters *Counters, q *queue.Queue) *Server {
	return &Server{Listen: listen, Counters: counters, Queue: q}
}

// OnDecoded, OnEncoded, OnDropped adapt Counters to the hook signature
// input.Pipeline expects, so a pipeline's OnDecoded/OnEncoded/OnDropped
// fields can be set directly from these methods.
func (c *Counters) OnDecoded() { c.Decoded.Add(1) }
func (c *Counters) OnEncoded() { c.Encoded.Add(1) }
func (c *Counters) OnDropped() { c.Dropped.Add(1) }

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		RecordsDecoded: s.Counters.Decoded.Load(),
		RecordsEncoded: s.Counters.Encoded.Load(),
		RecordsDropped: s.Counters.Dropped.Load(),
	}
	if s.Queue != nil {
		resp.QueueDepth = s.Queue.Len()
		resp.QueueCapacity = s.Queue.Cap()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Warnf("statusserver: encode response: %v", err)
	}
}

// Run starts the HTTP listener and blocks until ctx is cancelled, then
// shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	router := mux.NewRouter()
	router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:         s.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
