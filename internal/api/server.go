package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jrcichra/alert-deleter/internal/agent"
	"github.com/jrcichra/alert-deleter/internal/leader"
	"github.com/jrcichra/alert-deleter/internal/logger"
	"github.com/jrcichra/alert-deleter/internal/metrics"
)

type Deps struct {
	Log   *logger.Logger
	State *leader.State
	Agent *agent.Agent
}

type Config struct {
	Addr string
}

// Server exposes liveness, readiness (leadership-gated), status and metrics.
type Server struct {
	cfg  Config
	deps Deps
}

func NewServer(deps Deps, cfg Config) *Server {
	return &Server{cfg: cfg, deps: deps}
}

func (s *Server) Run(ctx context.Context) error {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Get("/readyz", s.handleReady)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.deps.Log.HTTPLogger(r),
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

// Ready only once this replica holds the lease; keeps traffic and probes off
// standby replicas.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.deps.State == nil || !s.deps.State.Acquired() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not leader"))
		return
	}
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	out := map[string]any{}
	if s.deps.State != nil {
		p := s.deps.State.Params()
		out["leader"] = s.deps.State.Acquired()
		out["holder"] = p.HolderID
		out["lease"] = p.LeaseName
		out["leaseNamespace"] = p.Namespace
	}
	if s.deps.Agent != nil {
		out["loop"] = s.deps.Agent.Status()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
