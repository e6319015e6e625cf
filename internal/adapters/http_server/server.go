package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct {
	mux         *chi.Mux
	timeout     time.Duration
	bulkTimeout time.Duration
}

// New builds the router. timeout caps ordinary requests; bulkTimeout caps the
// routes that send one email per recipient before answering.
func New(timeout, bulkTimeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if bulkTimeout < timeout {
		bulkTimeout = timeout
	}
	m := chi.NewRouter()

	// All middlewares go here (before any routes are added). Metrics and
	// Logger sit outside the per-route timeouts so a timed out request is
	// recorded as the 503 the client saw.
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	m.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	m.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" is not supported here")
	})
	return &Server{mux: m, timeout: timeout, bulkTimeout: bulkTimeout}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
