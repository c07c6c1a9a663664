// Package ui serves the browser dashboard.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/internal/ui/features/common"
	"github.com/leapstack-labs/ageview/internal/ui/notifier"
	"github.com/leapstack-labs/ageview/internal/ui/router"
	"github.com/leapstack-labs/ageview/pkg/core"
)

// Server is the browser dashboard server.
type Server struct {
	client       core.QueryClient
	sessionStore *sessions.CookieStore
	sessions     *common.Repository
	port         int
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Client core.QueryClient
	// Conversations returns the transcript store of a browser session.
	Conversations func(sessionID string) chat.Store
	Port          int
	SessionSecret []byte
	SessionTTL    time.Duration
	PageSize      int
	CachePages    int
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	sessionStore := sessions.NewCookieStore(cfg.SessionSecret)
	sessionStore.MaxAge(int(cfg.SessionTTL.Seconds()))
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	notify := notifier.New()
	repo := common.NewRepository(common.RepositoryConfig{
		Client:        cfg.Client,
		Conversations: cfg.Conversations,
		Notifier:      notify,
		PageSize:      cfg.PageSize,
		CachePages:    cfg.CachePages,
		TTL:           cfg.SessionTTL,
		Logger:        cfg.Logger,
	})

	return &Server{
		client:       cfg.Client,
		sessionStore: sessionStore,
		sessions:     repo,
		port:         cfg.Port,
		logger:       cfg.Logger,
		notifier:     notify,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		requestLogger(s.logger),
		middleware.Recoverer,
		middleware.Compress(5),
	)

	deps := common.Deps{
		Client:   s.client,
		Sessions: s.sessions,
		Notifier: s.notifier,
		Logger:   s.logger,
	}
	if err := router.SetupRoutes(r, deps, s.sessionStore); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Sessions returns the live session repository.
func (s *Server) Sessions() *common.Repository {
	return s.sessions
}

// requestLogger logs each request through slog at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
