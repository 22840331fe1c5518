package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/data/db"
	"github.com/yungbote/storygrid-backend/internal/http"
	"github.com/yungbote/storygrid-backend/internal/observability"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
	"github.com/yungbote/storygrid-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	stopSettings func()
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	if err := cfg.validate(); err != nil {
		log.Sync()
		return nil, err
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	theDB := pg.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	if err := db.SeedTemplates(ctx, theDB); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("seed templates: %w", err)
	}

	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	ssehub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, ssehub)
	if err != nil {
		clients.Close()
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	middleware, err := wireMiddleware(log, cfg)
	if err != nil {
		clients.Close()
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("init auth: %w", err)
	}
	handlerset := wireHandlers(log, serviceset, ssehub)
	server := http.NewServer(routerConfig(log, cfg, metrics, handlerset, middleware))

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		SSEHub:       ssehub,
		Metrics:      metrics,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background loops: cross-instance SSE forwarding, settings
// change fan-out, the write task worker and the queue depth sampler.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
	}
	a.stopSettings = a.Services.ForwardSettings()

	if a.Cfg.WorkerEnabled && a.Services.Worker != nil {
		a.Services.Worker.Start(ctx)
	} else {
		a.Log.Warn("write task worker disabled; queued writes will wait for another instance")
	}
	a.Metrics.StartQueueCollector(ctx, a.Log, a.DB)
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Listening", "port", a.Cfg.Port)
	return a.Server.Run(ctx, ":"+a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.stopSettings != nil {
		a.stopSettings()
		a.stopSettings = nil
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Clients.Close()
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
