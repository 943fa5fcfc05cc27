package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/openfour/gameserver/game/service"
)

// Server is the HTTP server for the game's web surface.
type Server struct {
	svc    *service.Service
	ws     http.Handler
	router *mux.Router
	log    zerolog.Logger
}

// NewServer creates the HTTP server. ws handles WebSocket upgrades on /ws.
func NewServer(svc *service.Service, ws http.Handler, log zerolog.Logger) *Server {
	s := &Server{
		svc:    svc,
		ws:     ws,
		router: mux.NewRouter(),
		log:    log.With().Str("component", "api").Logger(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	s.router.Handle("/ws", s.ws)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/sessions/{id}/board", s.handleBoard).Methods("GET")
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	active, max := s.svc.Stats()
	respondJSON(w, http.StatusOK, map[string]int{
		"active_sessions": active,
		"max_sessions":    max,
	})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	board, err := s.svc.Board(id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"game_id": id,
		"board":   board,
	})
}
