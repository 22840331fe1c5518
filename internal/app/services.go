package app

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/ai"
	"github.com/yungbote/storygrid-backend/internal/export"
	"github.com/yungbote/storygrid-backend/internal/jobs/persist"
	jobruntime "github.com/yungbote/storygrid-backend/internal/jobs/runtime"
	"github.com/yungbote/storygrid-backend/internal/jobs/worker"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
	"github.com/yungbote/storygrid-backend/internal/platform/secrets"
	"github.com/yungbote/storygrid-backend/internal/realtime"
	"github.com/yungbote/storygrid-backend/internal/services"
	"github.com/yungbote/storygrid-backend/internal/settings"
)

type Services struct {
	Settings   settings.Service
	Projects   services.ProjectService
	Content    services.ContentService
	Reorder    services.ReorderService
	Timeline   services.TimelineService
	Production services.ProductionService
	FactCheck  services.FactCheckService
	AI         services.AIService
	Export     services.ExportService

	// Realtime + write task queue
	Emitter     services.SSEEmitter
	Notifier    services.WriteTaskNotifier
	JobRegistry *jobruntime.Registry
	Worker      *worker.Worker
}

func newSealer(log *logger.Logger, passphrase string) (secrets.Sealer, error) {
	if passphrase == "" {
		log.Warn("SETTINGS_ENCRYPTION_KEY not set; using an ephemeral key, stored API keys will not survive a restart")
		passphrase = uuid.NewString() + uuid.NewString()
	}
	return secrets.NewSealer(passphrase)
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients, hub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	sealer, err := newSealer(log, cfg.SettingsEncryptionKey)
	if err != nil {
		return Services{}, fmt.Errorf("init settings sealer: %w", err)
	}
	settingsSvc := settings.NewService(db, log, r.UserSetting, r.APIKey, sealer)

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if c.Bus != nil {
		emitter = &services.BusEmitter{Bus: c.Bus, Log: log}
	}
	notifier := services.NewWriteTaskNotifier(emitter)

	factCheck, err := services.NewFactCheckService(log, settingsSvc)
	if err != nil {
		return Services{}, fmt.Errorf("init fact check: %w", err)
	}
	exporter, err := export.New(log, c.Bucket)
	if err != nil {
		return Services{}, fmt.Errorf("init exporter: %w", err)
	}
	gateway := ai.NewGateway(log, ai.NewDefaultRegistry(cfg.AI), settingsSvc)

	timeline := services.NewTimelineService(log, r.Project, r.ContentBlock, c.Cache, settingsSvc)

	registry := jobruntime.NewRegistry()
	if err := persist.Register(registry, persist.Deps{
		Log:    log,
		Blocks: r.ContentBlock,
		Cache:  c.Cache,
		Index:  c.Search,
	}); err != nil {
		return Services{}, fmt.Errorf("register write task handlers: %w", err)
	}

	return Services{
		Settings: settingsSvc,
		Projects: services.NewProjectService(db, log, r.Project, r.Template),
		Content:  services.NewContentService(db, log, r.Project, r.ContentBlock, r.WriteTask, c.Cache, c.Search),
		Reorder:  services.NewReorderService(db, log, r.Project, r.ContentBlock, r.WriteTask, c.Cache),
		Timeline: timeline,
		Production: services.NewProductionService(db, log, services.ProductionRepos{
			Projects:  r.Project,
			Blocks:    r.ContentBlock,
			Scripts:   r.ScriptBlock,
			Timeline:  r.TimelineItem,
			Crew:      r.CrewMember,
			Equipment: r.Equipment,
			Locations: r.Location,
		}),
		FactCheck: factCheck,
		AI:        services.NewAIService(log, gateway, r.Project, r.ContentBlock, r.ScriptBlock),
		Export:    services.NewExportService(log, exporter, r.Project, timeline, factCheck),

		Emitter:     emitter,
		Notifier:    notifier,
		JobRegistry: registry,
		Worker:      worker.NewWorker(db, log, r.WriteTask, registry, notifier, cfg.Worker),
	}, nil
}

// ForwardSettings relays settings changes to connected clients until the
// returned func is called.
func (s Services) ForwardSettings() (stop func()) {
	if s.Settings == nil || s.Emitter == nil {
		return func() {}
	}
	return services.ForwardSettingsChanges(s.Settings, s.Emitter)
}
