package server

import (
	"math/rand"
	"net/http"

	"roguie-server/internal/engine"
	"roguie-server/pkg/logger"
)

type Server struct {
	Port string
	Seed int64
}

func New(port string, seed int64) *Server {
	return &Server{Port: port, Seed: seed}
}

// Run запускает HTTP сервер.
func (s *Server) Run() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", enableCORS(s.handleWS))
	mux.HandleFunc("/health", enableCORS(s.handleHealth))

	logger.Log.Infof("Roguie server running on :%s", s.Port)
	return http.ListenAndServe(":"+s.Port, mux)
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next(w, r)
	}
}

// handleWS поднимает сессию: соединение получает собственный движок
// со своим сидом. Нулевой сид сервера - случайный сид на сессию.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Error("websocket upgrade failed")
		return
	}

	seed := s.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	client := NewClient(engine.NewGame(seed), conn)
	go client.run()
	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Log.WithError(err).Debug("health write failed")
	}
}
