package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shoptrack/apiserver/config"
	"github.com/shoptrack/apiserver/internal/auth"
	"github.com/shoptrack/apiserver/internal/db"
	"github.com/shoptrack/apiserver/internal/events"
	"github.com/shoptrack/apiserver/internal/handlers"
	"github.com/shoptrack/apiserver/internal/hub"
	"github.com/shoptrack/apiserver/internal/services"
	"github.com/shoptrack/apiserver/internal/storage"
	"github.com/shoptrack/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	liveHub    *hub.Hub
	dispatcher *events.Dispatcher
	cancel     context.CancelFunc
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	liveHub := hub.New()

	eventsBackend, err := events.NewBackendFromConfig(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("init events backend failed: %w", err)
	}
	dispatcher := events.NewDispatcher(liveHub, eventsBackend)

	objects, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("init storage backend failed: %w", err)
	}
	if objects != nil {
		if err := objects.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("ensure bucket failed: %w", err)
		}
	}

	userRepo := store.NewUserRepository(dbConn)
	orderRepo := store.NewRepairOrderRepository(dbConn)
	attachmentRepo := store.NewAttachmentRepository(dbConn)

	userService := services.NewUserService(userRepo)
	orderService := services.NewRepairOrderService(orderRepo, dispatcher)
	attachmentService := services.NewAttachmentService(attachmentRepo, objects)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	router.Get("/healthz", handlers.Healthz)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		handlers.AuthRouter(r, userService, tokens)
		r.Route("/ro", func(r chi.Router) {
			handlers.RepairOrderRouter(r, orderService)
			if attachmentService.Enabled() {
				r.Route("/{orderID}/attachments", func(r chi.Router) {
					handlers.AttachmentRouter(r, attachmentService)
				})
			}
		})
	})

	wsHandler := handlers.NewWSHandler(liveHub)
	router.Get("/ws", wsHandler.Serve)

	router.NotFound(handlers.Static(cfg.StaticDir))

	runCtx, cancel := context.WithCancel(context.Background())
	if eventsBackend != nil {
		go func() {
			_ = dispatcher.Run(runCtx)
		}()
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		liveHub:    liveHub,
		dispatcher: dispatcher,
		cancel:     cancel,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	s.cancel()
	s.liveHub.Close()
	_ = s.dispatcher.Close()
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
