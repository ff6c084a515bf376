// Package server is the composition root: it selects the storage backend,
// wires repositories into services and services into handlers, and owns the
// HTTP server lifecycle.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/article-site/internal/auth"
	"github.com/sakif/article-site/internal/config"
	"github.com/sakif/article-site/internal/handler"
	"github.com/sakif/article-site/internal/middleware"
	"github.com/sakif/article-site/internal/repository"
	"github.com/sakif/article-site/internal/repository/mock"
	"github.com/sakif/article-site/internal/repository/postgres"
	sqliteRepo "github.com/sakif/article-site/internal/repository/sqlite"
	"github.com/sakif/article-site/internal/service"
	"github.com/sakif/article-site/internal/session"
)

// requestTimeout bounds every request, so a stuck query cannot hold a
// connection open indefinitely.
const requestTimeout = 15 * time.Second

// Server holds the router and every resource that must be released on
// shutdown.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	closers []io.Closer
}

// New builds the full dependency chain for the given configuration:
// storage backend → repositories → services → handlers → routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	users, articles, err := s.openStore()
	if err != nil {
		return nil, err
	}

	sessions, err := s.openSessions()
	if err != nil {
		s.closeAll()
		return nil, err
	}

	if err := s.setupRoutes(users, articles, sessions); err != nil {
		s.closeAll()
		return nil, err
	}

	return s, nil
}

// openStore selects the storage backend from the configuration and returns
// its repositories. The backend's closer is registered for shutdown.
func (s *Server) openStore() (repository.UserRepository, repository.ArticleRepository, error) {
	if s.config.UseMockData {
		s.logger.Warn("running with mock data, no database is used")
		store := mock.New()
		s.closers = append(s.closers, store)
		return store.Users(), store.Articles(), nil
	}

	switch s.config.DBDriver {
	case "sqlite":
		db, err := sqliteRepo.New(s.config.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		s.closers = append(s.closers, db)
		return db.Users(), db.Articles(), nil
	case "postgres":
		db, err := postgres.New(context.Background(), s.config.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres pool: %w", err)
		}
		s.closers = append(s.closers, db)
		return db.Users(), db.Articles(), nil
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", s.config.DBDriver)
	}
}

// openSessions builds the session manager: redis-backed when REDIS_ADDR is
// set, in-memory otherwise.
func (s *Server) openSessions() (*session.Manager, error) {
	if s.config.SessionSecretDev {
		s.logger.Warn("SESSION_SECRET not set, using the insecure development default")
	}

	signer, err := auth.NewCookieSigner(s.config.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("creating cookie signer: %w", err)
	}

	var store session.Store
	if s.config.RedisAddr != "" {
		redisStore, err := session.NewRedisStore(context.Background(), s.config.RedisAddr, s.config.RedisPass)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		s.closers = append(s.closers, redisStore)
		store = redisStore
	} else {
		memStore := session.NewMemoryStore()
		s.closers = append(s.closers, memStore)
		store = memStore
	}

	return session.NewManager(store, signer, s.config.IsProduction(), s.logger), nil
}

func (s *Server) setupRoutes(
	users repository.UserRepository,
	articles repository.ArticleRepository,
	sessions *session.Manager,
) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(requestTimeout))
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics())
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8080", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// operational endpoints stay outside the session middleware
	s.router.Get("/healthz", handleHealthz)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	renderer, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	passwords := auth.NewPasswordService()
	authService := service.NewAuthService(users, passwords, s.logger)
	articleService := service.NewArticleService(articles, s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHubConfigured() {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	pageHandler := handler.NewPageHandler(articleService, renderer, s.logger)
	authHandler := handler.NewAuthHandler(authService, sessions, github, renderer, s.logger)

	s.router.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)

		r.Get("/", pageHandler.HandleHome)
		r.Get("/list", pageHandler.HandleList)
		r.Get("/article/{id}", pageHandler.HandleArticle)

		r.Get("/signup", authHandler.HandleSignupForm)
		r.Post("/signup", authHandler.HandleSignup)
		r.Get("/login", authHandler.HandleLoginForm)
		r.Post("/login", authHandler.HandleLogin)
		r.Get("/logout", authHandler.HandleLogout)

		if github != nil {
			r.Get("/auth/github/login", authHandler.HandleGitHubLogin)
			r.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	return nil
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ServeHTTP makes the server usable directly with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the stores.
func (s *Server) Start() error {
	defer s.closeAll()

	srv := &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("env", s.config.Env),
			slog.String("db_driver", s.config.DBDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func (s *Server) closeAll() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Error("closing resource", "error", err)
		}
	}
	s.closers = nil
}
