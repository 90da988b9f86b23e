package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/agrocoop/farmdesk/config"
	"github.com/agrocoop/farmdesk/internal/db"
	"github.com/agrocoop/farmdesk/internal/handlers"
	"github.com/agrocoop/farmdesk/internal/mq"
	"github.com/agrocoop/farmdesk/internal/reports"
	"github.com/agrocoop/farmdesk/internal/services"
	"github.com/agrocoop/farmdesk/internal/storage"
	"github.com/agrocoop/farmdesk/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sqlx.DB
	events     *mq.Events
	logger     *slog.Logger
}

// Deps are the collaborators the router is built from. Exports and Events
// are optional.
type Deps struct {
	DB        *sqlx.DB
	JWTSecret string
	TokenTTL  time.Duration
	Exports   *storage.Exports
	Events    services.EventPublisher
	Logger    *slog.Logger
}

// New opens the database and the optional export store and event broker,
// then builds the HTTP server.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps := Deps{
		DB:        dbConn,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Logger:    logger,
	}

	objects, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if objects != nil {
		if err := objects.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("ensure export bucket: %w", err)
		}
		deps.Exports = storage.NewExports(objects)
		logger.Info("report exports enabled", "backend", cfg.Storage.Backend, "bucket", objects.Bucket())
	}

	var events *mq.Events
	backend, err := mq.New(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if backend != nil {
		events = mq.NewEvents(backend, cfg.MQ.Channel, logger)
		deps.Events = events
		logger.Info("record events enabled", "backend", cfg.MQ.Backend, "channel", cfg.MQ.Channel)
	}

	router := NewRouter(deps)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     events,
		logger:     logger,
	}, nil
}

// NewRouter wires repositories, services and handlers into a chi router.
func NewRouter(deps Deps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	farmerRepo := store.NewFarmerRepository(deps.DB)
	farmerService := services.NewFarmerService(farmerRepo, deps.Events, logger)
	productService := services.NewProductService(store.NewProductRepository(deps.DB), deps.Events, logger)
	needService := services.NewNeedService(store.NewNeedRepository(deps.DB), deps.Events, logger)
	authService := services.NewAuthService(farmerRepo, deps.Events, logger)
	engine := reports.NewEngine(store.NewReportRepository(deps.DB), logger)

	authHandler := handlers.NewAuthHandler(authService, farmerService, deps.JWTSecret, deps.TokenTTL, logger)
	reportHandler := handlers.NewReportHandler(engine, deps.Exports, logger)
	requireAdmin := handlers.RequireAdmin(farmerService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(logger),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)
	})
	router.Group(func(r chi.Router) {
		r.Use(authHandler.RequireAuth)
		r.Route("/farmers", func(r chi.Router) {
			handlers.FarmerRouter(r, handlers.NewFarmerHandler(farmerService, logger), requireAdmin)
		})
		r.Route("/products", func(r chi.Router) {
			handlers.ProductRouter(r, handlers.NewProductHandler(productService, logger), requireAdmin)
		})
		r.Route("/needs", func(r chi.Router) {
			handlers.NeedRouter(r, handlers.NewNeedHandler(needService, logger), requireAdmin)
		})
		r.Route("/reports", func(r chi.Router) {
			handlers.ReportRouter(r, reportHandler, requireAdmin)
		})
		r.Route("/exports", func(r chi.Router) {
			handlers.ExportRouter(r, reportHandler, requireAdmin)
		})
	})
	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is
// done, then releases the broker and the database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.events != nil {
		err = errors.Join(err, s.events.Close())
	}
	if s.db != nil {
		err = errors.Join(err, s.db.Close())
	}
	return err
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.InfoContext(r.Context(), "http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
