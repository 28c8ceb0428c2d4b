package server

import (
	"net/http"

	"github.com/jrsteele09/go-oidc-broker/internal/config"
	"github.com/jrsteele09/go-oidc-broker/session"
)

// Server is the HTTP glue around the broker: the session message channel,
// the login starter, and the forwarding surface that routes a hosted
// application's outbound calls through the interceptor.
type Server struct {
	env    string
	mux    *http.ServeMux
	config config.Config
	store  *session.Store
	client *http.Client
}

// New creates the broker HTTP surface. transport is the interceptor every
// forwarded request runs through.
func New(cfg config.Config, store *session.Store, transport http.RoundTripper) *Server {
	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		store:  store,
		client: &http.Client{Transport: transport},
	}
	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	mw := []func(http.HandlerFunc) http.HandlerFunc{s.LoggingMiddleware, s.RecoverMiddleware}
	s.mux.HandleFunc("POST /session/message", ChainMiddleware(s.SessionMessageHandler(), mw...))
	s.mux.HandleFunc("GET /login", ChainMiddleware(s.LoginHandler(), mw...))
	s.mux.HandleFunc("/forward", ChainMiddleware(s.ForwardHandler(), mw...))
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
