package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/storygrid-backend/internal/http/handlers"
	httpMW "github.com/yungbote/storygrid-backend/internal/http/middleware"
	"github.com/yungbote/storygrid-backend/internal/observability"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler     *httpH.HealthHandler
	RealtimeHandler   *httpH.RealtimeHandler
	ProjectHandler    *httpH.ProjectHandler
	ContentHandler    *httpH.ContentHandler
	ReorderHandler    *httpH.ReorderHandler
	TimelineHandler   *httpH.TimelineHandler
	ProductionHandler *httpH.ProductionHandler
	FactCheckHandler  *httpH.FactCheckHandler
	AIHandler         *httpH.AIHandler
	SettingsHandler   *httpH.SettingsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.HealthHandler != nil {
		api.GET("/status", cfg.HealthHandler.Status)
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		// Projects
		if cfg.ProjectHandler != nil {
			protected.GET("/projects", cfg.ProjectHandler.List)
			protected.POST("/projects", cfg.ProjectHandler.Create)
			protected.GET("/projects/:id", cfg.ProjectHandler.Get)
			protected.PATCH("/projects/:id", cfg.ProjectHandler.Update)
			protected.DELETE("/projects/:id", cfg.ProjectHandler.Delete)
			protected.GET("/project-templates", cfg.ProjectHandler.Templates)
		}

		// Content blocks
		if cfg.ContentHandler != nil {
			protected.GET("/projects/:id/content-blocks", cfg.ContentHandler.List)
			protected.POST("/projects/:id/content-blocks", cfg.ContentHandler.Create)
			protected.GET("/projects/:id/search", cfg.ContentHandler.Search)
			protected.GET("/content-blocks/:id", cfg.ContentHandler.Get)
			protected.PATCH("/content-blocks/:id", cfg.ContentHandler.Update)
			protected.DELETE("/content-blocks/:id", cfg.ContentHandler.Delete)
			protected.POST("/content-blocks/:id/story-arc", cfg.ContentHandler.SetStoryArc)
		}

		// Ordering + write tasks
		if cfg.ReorderHandler != nil {
			protected.POST("/projects/:id/reorder", cfg.ReorderHandler.Reorder)
			protected.POST("/projects/:id/timeline-drop", cfg.ReorderHandler.TimelineDrop)
			protected.POST("/projects/:id/normalize-sequences", cfg.ReorderHandler.Normalize)
			protected.GET("/projects/:id/write-tasks", cfg.ReorderHandler.ListTasks)
			protected.GET("/write-batches/:id", cfg.ReorderHandler.Batch)
			protected.POST("/write-batches/:id/retry", cfg.ReorderHandler.RetryBatch)
			protected.POST("/write-tasks/:id/retry", cfg.ReorderHandler.RetryTask)
		}

		// Timeline, story arc, exports
		if cfg.TimelineHandler != nil {
			protected.GET("/projects/:id/timeline", cfg.TimelineHandler.Timeline)
			protected.GET("/projects/:id/story-arc", cfg.TimelineHandler.StoryArc)
			protected.GET("/story-arc/structures", cfg.TimelineHandler.Structures)
			protected.GET("/projects/:id/export/timeline.csv", cfg.TimelineHandler.ExportCSV)
			protected.GET("/projects/:id/export/timeline.png", cfg.TimelineHandler.ExportPNG)
			protected.POST("/projects/:id/export/archive", cfg.TimelineHandler.Archive)
		}

		// Production
		if h := cfg.ProductionHandler; h != nil {
			protected.GET("/projects/:id/script-blocks", h.ListScriptBlocks)
			protected.POST("/projects/:id/script-blocks", h.CreateScriptBlock)
			protected.PATCH("/script-blocks/:id", h.UpdateScriptBlock)
			protected.DELETE("/script-blocks/:id", h.DeleteScriptBlock)

			protected.GET("/projects/:id/timeline-items", h.ListTimelineItems)
			protected.POST("/projects/:id/timeline-items", h.CreateTimelineItem)
			protected.GET("/timeline-items/:id", h.GetTimelineItem)
			protected.PATCH("/timeline-items/:id", h.UpdateTimelineItem)
			protected.DELETE("/timeline-items/:id", h.DeleteTimelineItem)

			protected.GET("/projects/:id/crew", h.ListCrew)
			protected.POST("/projects/:id/crew", h.CreateCrew)
			protected.PATCH("/crew/:id", h.UpdateCrew)
			protected.DELETE("/crew/:id", h.DeleteCrew)

			protected.GET("/projects/:id/equipment", h.ListEquipment)
			protected.POST("/projects/:id/equipment", h.CreateEquipment)
			protected.POST("/projects/:id/equipment/packed", h.SetPacked)
			protected.PATCH("/equipment/:id", h.UpdateEquipment)
			protected.DELETE("/equipment/:id", h.DeleteEquipment)

			protected.GET("/projects/:id/locations", h.ListLocations)
			protected.POST("/projects/:id/locations", h.CreateLocation)
			protected.PATCH("/locations/:id", h.UpdateLocation)
			protected.DELETE("/locations/:id", h.DeleteLocation)
		}

		// Veracity
		if cfg.FactCheckHandler != nil {
			protected.POST("/fact-check", cfg.FactCheckHandler.Scan)
			protected.POST("/fact-check/report", cfg.FactCheckHandler.Report)
		}

		// AI
		if cfg.AIHandler != nil {
			protected.POST("/ai/ask", cfg.AIHandler.Ask)
			protected.POST("/ai/ask-all", cfg.AIHandler.AskAll)
			protected.POST("/ai/generate-script", cfg.AIHandler.GenerateScript)
		}

		// Settings
		if cfg.SettingsHandler != nil {
			protected.GET("/settings", cfg.SettingsHandler.All)
			protected.GET("/settings/api-keys", cfg.SettingsHandler.APIKeys)
			protected.PUT("/settings/api-keys/:provider", cfg.SettingsHandler.SetAPIKey)
			protected.DELETE("/settings/api-keys/:provider", cfg.SettingsHandler.DeleteAPIKey)
			protected.GET("/settings/:key", cfg.SettingsHandler.Get)
			protected.PUT("/settings/:key", cfg.SettingsHandler.Set)
		}
	}

	return r
}
