// Package web is the HTTP surface: the cards API, lane-title endpoints,
// sheet regeneration, lane archives, and the websocket sync endpoint.
package web

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"nanosheet/internal/relay"
	"nanosheet/internal/store"
)

type ServerConfig struct {
	Addr string
}

type Server struct {
	cfg ServerConfig
	db  *store.DB
	hub *relay.Hub
}

func NewServer(cfg ServerConfig, db *store.DB, hub *relay.Hub) *Server {
	return &Server{cfg: cfg, db: db, hub: hub}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/cards", s.handleCreateCard)
	mux.HandleFunc("PATCH /api/cards/{id}", s.handleUpdateCard)
	mux.HandleFunc("POST /api/cards/batch", s.handleBatchCards)

	mux.HandleFunc("GET /api/shots/{sheetID}", s.handleGetShots)
	mux.HandleFunc("POST /api/shots/update", s.handleUpdateShot)

	mux.HandleFunc("POST /api/sheets/{sheetID}/regenerate", s.handleRegenerate)
	mux.HandleFunc("POST /api/lanes/download", s.handleLaneDownload)

	mux.HandleFunc("GET /yjs/{sheetID}", s.handleSync)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	return mux
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.cfg.Addr,
		Handler:     s.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Printf("web: listening on %s", s.cfg.Addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	sheetID := strings.TrimSpace(r.PathValue("sheetID"))
	if sheetID == "" {
		http.Error(w, "missing sheet id", http.StatusBadRequest)
		return
	}
	s.hub.Room(sheetID).HandleWS(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: encode response: %v", err)
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}
