package metrics

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/skyjuke/skyjuke/internal/logging"
)

// StatusFunc returns the value reported by the health endpoint. It is called
// from the HTTP goroutine.
type StatusFunc func() interface{}

// Server serves /metrics and /healthz.
type Server struct {
	srv    *http.Server
	status StatusFunc
}

// NewServer creates a server listening on addr once started. A nil status
// reports only "ok".
func NewServer(addr string, status StatusFunc) *Server {
	s := &Server{status: status}
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router returns the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", s.healthCheck).Methods("GET")
	return r
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{"status": "ok"}
	if s.status != nil {
		body["session"] = s.status()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Warn("failed to write health response: %v", err)
	}
}

// Start listens in the background. A listen error is returned immediately;
// later serve errors are logged.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %q", s.srv.Addr)
	}

	logging.Info("metrics: http://%s/metrics", l.Addr())

	go func() {
		if err := s.srv.Serve(l); err != nil && err != http.ErrServerClosed {
			logging.Error("metrics server error: %v", err)
		}
	}()

	return nil
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
