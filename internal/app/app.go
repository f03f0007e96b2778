package app

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/nuntium/internal/common"
	"github.com/ternarybob/nuntium/internal/handlers"
	"github.com/ternarybob/nuntium/internal/interfaces"
	"github.com/ternarybob/nuntium/internal/services/events"
	"github.com/ternarybob/nuntium/internal/services/feeds"
	"github.com/ternarybob/nuntium/internal/services/llm"
	"github.com/ternarybob/nuntium/internal/services/quotes"
	"github.com/ternarybob/nuntium/internal/services/reports"
	"github.com/ternarybob/nuntium/internal/services/scheduler"
	"github.com/ternarybob/nuntium/internal/storage/badger"
)

// App owns every service and handler. Construction wires the whole
// dependency graph; nothing reaches for shared state.
type App struct {
	Config  *common.Config
	Catalog *common.Catalog
	Logger  arbor.ILogger

	DB            *badger.BadgerDB
	ReportStorage interfaces.ReportStorage
	EventService  interfaces.EventService

	FeedService     interfaces.FeedService
	QuoteService    interfaces.QuoteService
	AnalysisService interfaces.AnalysisService
	AuditLog        *llm.AuditLog
	Pipeline        *reports.Pipeline
	Scheduler       *scheduler.Service

	APIHandler    *handlers.APIHandler
	ReportHandler *handlers.ReportHandler
	StatusHandler *handlers.StatusHandler
	WSHandler     *handlers.WebSocketHandler
}

// New builds the application from configuration.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	catalog, err := common.LoadCatalog(config.Sources)
	if err != nil {
		return nil, fmt.Errorf("failed to load source catalog: %w", err)
	}

	db, err := badger.NewBadgerDB(config.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	eventService := events.NewService(logger)
	reportStorage := badger.NewReportStorage(db, logger)

	auditLog := llm.NewAuditLog()
	analysisService := llm.NewService(config.LLM, auditLog, eventService, logger)

	feedService := feeds.NewService(catalog, config.Feeds, logger)
	quoteService := quotes.NewService(catalog, config.Quotes, logger)

	cache := reports.NewCache(common.Duration(config.Report.CacheTTL, 5*time.Minute))
	assembler := reports.NewAssembler(config.Report, catalog)
	pipeline := reports.NewPipeline(
		feedService,
		quoteService,
		analysisService,
		cache,
		reportStorage,
		assembler,
		eventService,
		config.Report,
		config.LLM,
		logger,
	)

	sched := scheduler.NewService(pipeline, config.Scheduler, logger)

	app := &App{
		Config:          config,
		Catalog:         catalog,
		Logger:          logger,
		DB:              db,
		ReportStorage:   reportStorage,
		EventService:    eventService,
		FeedService:     feedService,
		QuoteService:    quoteService,
		AnalysisService: analysisService,
		AuditLog:        auditLog,
		Pipeline:        pipeline,
		Scheduler:       sched,
		APIHandler:      handlers.NewAPIHandler(logger),
		ReportHandler:   handlers.NewReportHandler(pipeline, reportStorage, logger),
		StatusHandler:   handlers.NewStatusHandler(pipeline, reportStorage, auditLog, sched, logger),
		WSHandler:       handlers.NewWebSocketHandler(eventService, logger),
	}

	logger.Info().
		Int("feeds", len(catalog.Feeds)).
		Int("symbols", len(catalog.Symbols)).
		Str("providers", fmt.Sprintf("%v", config.LLM.ProviderOrder)).
		Msg("Application wired")

	return app, nil
}

// Start launches background services.
func (a *App) Start() error {
	if err := a.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	return nil
}

// Close shuts everything down in reverse dependency order.
func (a *App) Close() {
	a.Scheduler.Stop()
	a.Pipeline.Wait()

	if err := a.EventService.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Event service close failed")
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Storage close failed")
	}
}
