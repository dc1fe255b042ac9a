package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/supportdesk/internal/common"
	"github.com/ternarybob/supportdesk/internal/handlers"
	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/services/audit"
	"github.com/ternarybob/supportdesk/internal/services/embeddings"
	"github.com/ternarybob/supportdesk/internal/services/feedback"
	"github.com/ternarybob/supportdesk/internal/services/history"
	"github.com/ternarybob/supportdesk/internal/services/llm"
	"github.com/ternarybob/supportdesk/internal/services/retrieval"
	"github.com/ternarybob/supportdesk/internal/services/scheduler"
	"github.com/ternarybob/supportdesk/internal/services/support"
	"github.com/ternarybob/supportdesk/internal/services/tickets"
	"github.com/ternarybob/supportdesk/internal/services/tracing"
	"github.com/ternarybob/supportdesk/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Pipeline services
	EmbeddingService *embeddings.Service
	LLMService       *llm.ProviderFactory
	RetrievalService *retrieval.Service
	SupportAgent     *support.Agent
	RequestLogger    *audit.RequestLogger

	// Handoff services
	TicketService   interfaces.TicketService
	FeedbackService interfaces.FeedbackService

	// Corpus maintenance
	Backfiller *embeddings.Backfiller
	Scheduler  *scheduler.Scheduler

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	ChatHandler     *handlers.ChatHandler
	TicketHandler   *handlers.TicketHandler
	FeedbackHandler *handlers.FeedbackHandler
	RequestsHandler *handlers.RequestsHandler
	CorpusHandler   *handlers.CorpusHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize handlers
	app.initHandlers()

	if cfg.Backfill.Enabled {
		if err := app.Scheduler.Start(cfg.Backfill.Schedule); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to start backfill scheduler: %w", err)
		}
	}

	logger.Info().
		Str("agent", cfg.Agent.Name).
		Str("model", cfg.Agent.Model).
		Str("embedding_model", cfg.Embedding.Model).
		Bool("backfill_enabled", cfg.Backfill.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger) and loads corpus seed files
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	if len(a.Config.Corpus.SeedFiles) > 0 {
		loaded, err := a.StorageManager.LoadDocumentsFromFiles(context.Background(), a.Config.Corpus.SeedFiles)
		if err != nil {
			// Log warning but don't fail startup, the existing corpus is still usable
			a.Logger.Warn().Err(err).Msg("Failed to load corpus seed files")
		} else {
			a.Logger.Info().Int("documents", loaded).Msg("Corpus seed files loaded")
		}
	}

	return nil
}

// initServices initializes all business services
func (a *App) initServices() error {
	var err error

	// 1. Embedding provider (shared by retrieval and backfill)
	a.EmbeddingService, err = embeddings.NewService(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize embedding service: %w", err)
	}

	// 2. Generation gateway
	a.LLMService, err = llm.NewProviderFactory(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize llm service: %w", err)
	}

	documents := a.StorageManager.DocumentStorage()

	// 3. Retrieval over the corpus store
	a.RetrievalService = retrieval.NewService(
		documents,
		a.EmbeddingService,
		a.Config.Retrieval.SimilarityThreshold,
		a.Config.Retrieval.ResultLimit,
		a.Logger,
	)

	// 4. Support agent with audit sink and pricing
	a.RequestLogger = audit.NewRequestLogger(a.StorageManager.RequestLogStorage(), a.Logger)
	a.SupportAgent = support.NewAgent(
		a.RetrievalService,
		a.LLMService,
		history.NewBuilder(a.Config.Memory.MaxRecent, a.Config.Memory.MaxOlder),
		a.RequestLogger,
		tracing.NewPriceTable(a.Config.LLM.Pricing, a.Config.LLM.FallbackModel),
		a.Config.Agent,
		a.Logger,
	)

	// 5. Tickets and feedback
	a.TicketService = tickets.NewService(a.StorageManager.TicketStorage(), a.Logger)
	a.FeedbackService = feedback.NewService(a.StorageManager.FeedbackStorage(), a.Logger)

	// 6. Embedding backfill (scheduled when enabled, always available on demand)
	a.Backfiller = embeddings.NewBackfiller(documents, a.EmbeddingService, a.Config.Backfill.Limit, a.Logger)
	a.Scheduler = scheduler.NewScheduler(a.Backfiller, a.Logger)

	a.Logger.Debug().Msg("Services initialized")
	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Config.Agent.Name, a.StorageManager.DocumentStorage(), a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.SupportAgent, a.Logger)
	a.TicketHandler = handlers.NewTicketHandler(a.TicketService, a.Logger)
	a.FeedbackHandler = handlers.NewFeedbackHandler(a.FeedbackService, a.Logger)
	a.RequestsHandler = handlers.NewRequestsHandler(a.StorageManager.RequestLogStorage(), a.Logger)
	a.CorpusHandler = handlers.NewCorpusHandler(a.Scheduler, a.Logger)
}

// Close closes all application resources
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
		a.Logger.Debug().Msg("Backfill scheduler stopped")
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close llm service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Debug().Msg("Storage closed")
	}

	return nil
}
