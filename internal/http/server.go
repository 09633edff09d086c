// Package http exposes a session's screens and mutations as a JSON API,
// and optionally the backend itself at /exec for remote clients.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"financas/internal/gateway"
	"financas/internal/log"
	"financas/internal/middleware/ratelimit"
	"financas/internal/middleware/security"
	"financas/internal/services"
)

// Limits per client address.
const (
	loginAttemptsPerMinute = 10
	writesPerMinute        = 60
)

type Server struct {
	http.Server
	session    *services.Session
	dispatcher *gateway.Dispatcher
	execToken  string
	access     *accessTokens
	logger     *log.Logger

	loginLimiter *ratelimit.Limiter
	writeLimiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

type Option func(*Server)

// WithExec mounts /exec over dispatcher, guarded by a bearer token. The
// PIN is redacted from everything served there. Without a dispatcher or a
// token the endpoint stays off.
func WithExec(dispatcher *gateway.Dispatcher, token string) Option {
	return func(s *Server) {
		if dispatcher == nil || token == "" {
			return
		}
		s.dispatcher = dispatcher.Redacted()
		s.execToken = token
	}
}

// NewServer wires the routes for session.
func NewServer(addr string, session *services.Session, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		session:      session,
		access:       newAccessTokens(),
		logger:       logger.WithComponent(log.ComponentHTTP),
		loginLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: loginAttemptsPerMinute}),
		writeLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: writesPerMinute}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.dispatcher != nil {
		r.With(requireExecToken(s.execToken)).Post("/exec", s.handleExec)
	}

	limited := func(l *ratelimit.Limiter) func(http.Handler) http.Handler {
		return l.Middleware(security.ClientIP, func(w http.ResponseWriter, r *http.Request) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, security.ClientIP(r), log.FieldPath, r.URL.Path)
			writeError(w, http.StatusTooManyRequests, msgRateLimited)
		})
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/notifications", s.handleNotifications)
		r.With(limited(s.loginLimiter)).Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAccess)

			r.Get("/dashboard", s.handleDashboard)
			r.Get("/transactions", s.handleTransactions)
			r.Get("/goals", s.handleGoals)
			r.Get("/settings/names", s.handleNamesForm)
			r.Get("/settings/security", s.handleSecurityForm)

			r.Group(func(r chi.Router) {
				r.Use(limited(s.writeLimiter))
				r.Post("/transactions", s.handleAddTransaction)
				r.Delete("/transactions/{id}", s.handleDeleteTransaction)
				r.Post("/goals", s.handleAddGoal)
				r.Patch("/goals/{id}", s.handleUpdateGoal)
				r.Post("/settings/names", s.handleSaveNames)
				r.Post("/settings/pin", s.handleSavePIN)
			})
		})
	})
	return r
}

// requireAccess lets a request through when no PIN is stored or when it
// carries a token from a successful login. Until settings have been read
// once nothing gets through.
func (s *Server) requireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.session.Store.Loaded() {
			if err := s.session.Loader.RefreshSettings(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable,
					services.MsgLoginCheckFailed+services.ReasonOr(err, services.MsgConnectionError))
				return
			}
		}
		if !s.hasAccess(r) {
			writeError(w, http.StatusUnauthorized, msgLoginRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) hasAccess(r *http.Request) bool {
	if _, locked := s.session.Store.PIN(); !locked {
		return true
	}
	return s.access.valid(requestToken(r))
}

// Shutdown stops the limiters and the HTTP server. Only the first call
// does anything.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.loginLimiter.Stop()
		s.writeLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once settings have been fetched at least once.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.session.Store.Loaded() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("settings not loaded"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
