package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/chefbook/backend/config"
	"github.com/pageza/chefbook/backend/internal/router"
	"github.com/pageza/chefbook/backend/internal/service"
	"github.com/pageza/chefbook/backend/internal/validation"
	"github.com/pageza/chefbook/backend/internal/wizard"
)

const (
	memoryWizardSessions = 10_000
	shutdownTimeout      = 10 * time.Second
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	log    *slog.Logger
}

// New wires services, handlers and middleware. rdb and s3 may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, s3 *config.S3Config, log *slog.Logger) *Server {
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	v := validation.New()
	recipes := service.NewRecipeService(db, v, log)

	var store wizard.Store
	if rdb != nil {
		store = wizard.NewRedisStore(rdb, cfg.WizardTTL)
	} else {
		log.Warn("redis not configured; wizard sessions are kept in memory")
		store = wizard.NewMemoryStore(memoryWizardSessions, cfg.WizardTTL)
	}

	deps := router.Dependencies{
		DB:             db,
		Redis:          rdb,
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		Auth:           service.NewAuthService(db, v, log, cfg.JWTSecret, cfg.TokenTTL),
		Taxonomy:       service.NewTaxonomyService(db, v, log),
		Recipes:        recipes,
		Favorites:      service.NewFavoriteService(db, log),
		Wizard:         wizard.NewWorkflow(store, recipes, recipes, log),
	}
	if s3 != nil {
		deps.Images = service.NewImageService(s3, v, log)
	}

	engine := router.SetupRouter(deps)
	return &Server{
		router: engine,
		log:    log,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
