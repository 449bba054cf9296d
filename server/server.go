package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/fendriknuruljadid/astrovia-app/authflow"
	"github.com/fendriknuruljadid/astrovia-app/internal/config"
	"github.com/fendriknuruljadid/astrovia-app/progress"
	"github.com/fendriknuruljadid/astrovia-app/relay"
	"github.com/fendriknuruljadid/astrovia-app/session"
)

// Server hosts the web application's HTTP surface: the guarded page
// routes, the auth wizard endpoints and the signed relay onto the
// platform API.
type Server struct {
	config     config.Config
	mux        *http.ServeMux
	httpServer *http.Server
	routes     []string

	sessions *session.Store
	auth     *authflow.Controller
	api      *relay.Client
	progress *progress.Subscriber
	validate *validator.Validate
}

// Deps carries the wired collaborators the server routes against.
type Deps struct {
	Sessions *session.Store
	Auth     *authflow.Controller
	API      *relay.Client
	Progress *progress.Subscriber
}

func New(cfg config.Config, deps Deps) *Server {
	s := &Server{
		config:   cfg,
		mux:      http.NewServeMux(),
		sessions: deps.Sessions,
		auth:     deps.Auth,
		api:      deps.API,
		progress: deps.Progress,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	s.registerValidators()
	s.registerRoutes()
	return s
}

// RegisterRouteFunc registers a handler function on the mux using the
// "METHOD /path" pattern syntax and records the route for logging.
func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) Routes() []string {
	return s.routes
}

func (s *Server) ListenAndServe() error {
	addr := s.config.GetPort()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", addr).Msg("http server listening")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the fully wrapped root handler. Exposed so tests can
// drive the server through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	return ChainMiddleware(s.mux.ServeHTTP,
		s.RecoveryMiddleware,
		s.LoggingMiddleware,
		s.SecurityHeadersMiddleware,
		s.CorsMiddleware,
	)
}
