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
	"github.com/pookieverse/apiserver/config"
	"github.com/pookieverse/apiserver/internal/db"
	"github.com/pookieverse/apiserver/internal/handlers"
	"github.com/pookieverse/apiserver/internal/logger"
	"github.com/pookieverse/apiserver/internal/mq"
	"github.com/pookieverse/apiserver/internal/services"
	"github.com/pookieverse/apiserver/internal/storage"
	"github.com/pookieverse/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.MQ
	log        *logger.Logger
}

// New constructs a Server with its full dependency graph: database,
// object storage, optional event broker, services and routes.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	imageStore, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := imageStore.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	events, err := newEvents(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	entryRepo := store.NewEntryRepository(dbConn)
	userRepo := store.NewUserRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)

	authService := services.NewAuthService(userRepo, sessionRepo)
	var publisher services.EventPublisher
	if events != nil {
		publisher = events
	}
	entryService := services.NewEntryService(entryRepo, imageStore, publisher, cfg.Events.Channel, log)

	router := NewRouter(cfg, authService, entryService)

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
		events:     events,
		log:        log,
	}, nil
}

// NewRouter builds the chi router and mounts every route. Split out from
// New so tests can exercise the full HTTP surface over in-memory
// dependencies.
func NewRouter(cfg config.Config, authService *services.AuthService, entryService *services.EntryService) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	cookie := handlers.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Production(),
	}
	gate := handlers.RequireSession(authService, cookie.Name)

	router.Get("/healthz", handlers.Healthz)
	router.Get("/", bannerHandler)
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, cookie)
	})
	router.Route("/api/scrapbook/entries", func(r chi.Router) {
		handlers.EntryRouter(r, entryService, gate)
	})

	return router
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
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func newStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	switch cfg.Backend {
	case "", "minio":
		backend, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("minio storage: %w", err)
		}
		return storage.NewStorage(backend), nil
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("gcs storage: %w", err)
		}
		return storage.NewStorage(backend), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func newEvents(ctx context.Context, cfg config.EventsConfig) (*mq.MQ, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq events: %w", err)
		}
		return mq.New(backend), nil
	case "pubsub":
		backend, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("pubsub events: %w", err)
		}
		return mq.New(backend), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

func bannerHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{
  "message": "PookieVerse API Server",
  "status": "running",
  "endpoints": {
    "auth": {
      "signin": "POST /api/auth/signin",
      "signout": "POST /api/auth/signout",
      "status": "GET /api/auth/status"
    },
    "scrapbook": {
      "getAll": "GET /api/scrapbook/entries",
      "getOne": "GET /api/scrapbook/entries/:id",
      "create": "POST /api/scrapbook/entries",
      "update": "PUT /api/scrapbook/entries/:id",
      "delete": "DELETE /api/scrapbook/entries/:id"
    }
  }
}
`))
}
