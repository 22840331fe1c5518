package app

import (
	"github.com/yungbote/storygrid-backend/internal/auth"
	"github.com/yungbote/storygrid-backend/internal/http"
	httpH "github.com/yungbote/storygrid-backend/internal/http/handlers"
	httpMW "github.com/yungbote/storygrid-backend/internal/http/middleware"
	"github.com/yungbote/storygrid-backend/internal/observability"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
	"github.com/yungbote/storygrid-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Realtime   *httpH.RealtimeHandler
	Project    *httpH.ProjectHandler
	Content    *httpH.ContentHandler
	Reorder    *httpH.ReorderHandler
	Timeline   *httpH.TimelineHandler
	Production *httpH.ProductionHandler
	FactCheck  *httpH.FactCheckHandler
	AI         *httpH.AIHandler
	Settings   *httpH.SettingsHandler
}

func wireHandlers(log *logger.Logger, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(),
		Realtime:   httpH.NewRealtimeHandler(log, sseHub),
		Project:    httpH.NewProjectHandler(services.Projects),
		Content:    httpH.NewContentHandler(services.Content),
		Reorder:    httpH.NewReorderHandler(services.Reorder),
		Timeline:   httpH.NewTimelineHandler(services.Timeline, services.Export),
		Production: httpH.NewProductionHandler(services.Production),
		FactCheck:  httpH.NewFactCheckHandler(services.FactCheck, services.Export),
		AI:         httpH.NewAIHandler(services.AI),
		Settings:   httpH.NewSettingsHandler(services.Settings),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) (Middleware, error) {
	log.Info("Wiring middleware...")
	var verifier *auth.Verifier
	if !cfg.AuthDisabled {
		v, err := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			return Middleware{}, err
		}
		verifier = v
	}
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, verifier, cfg.AuthDisabled)}, nil
}

func routerConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) http.RouterConfig {
	return http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       cfg.ServiceName,
		AllowedOrigins:    cfg.AllowedOrigins,
		AuthMiddleware:    middleware.Auth,
		HealthHandler:     handlers.Health,
		RealtimeHandler:   handlers.Realtime,
		ProjectHandler:    handlers.Project,
		ContentHandler:    handlers.Content,
		ReorderHandler:    handlers.Reorder,
		TimelineHandler:   handlers.Timeline,
		ProductionHandler: handlers.Production,
		FactCheckHandler:  handlers.FactCheck,
		AIHandler:         handlers.AI,
		SettingsHandler:   handlers.Settings,
	}
}
