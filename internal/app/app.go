package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/handlers"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/services/answer"
	"github.com/ternarybob/responsum/internal/services/chunker"
	"github.com/ternarybob/responsum/internal/services/embeddings"
	"github.com/ternarybob/responsum/internal/services/extract"
	"github.com/ternarybob/responsum/internal/services/ingest"
	"github.com/ternarybob/responsum/internal/services/llm"
	"github.com/ternarybob/responsum/internal/services/processing"
	"github.com/ternarybob/responsum/internal/services/search"
	"github.com/ternarybob/responsum/internal/services/vectorindex"
	"github.com/ternarybob/responsum/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Ingestion pipeline
	Registry      interfaces.ExtractorRegistry
	OCRClient     interfaces.OCRClient
	IngestService interfaces.IngestService
	Scheduler     *processing.Scheduler

	// Query pipeline
	EmbeddingService  interfaces.EmbeddingService
	GenerationService interfaces.GenerationService
	VectorIndex       interfaces.VectorIndex
	StructuredSearch  interfaces.StructuredSearch
	AnswerService     interfaces.AnswerService

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	DocumentHandler *handlers.DocumentHandler
	AnswerHandler   *handlers.AnswerHandler
	RecordHandler   *handlers.RecordHandler
	StatusHandler   *handlers.StatusHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	store, err := storage.NewManager(&cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	app.StorageManager = store

	app.EmbeddingService, err = embeddings.NewGeminiService(cfg, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize embedding service: %w", err)
	}

	app.GenerationService, err = llm.NewGenerationService(cfg, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize generation service: %w", err)
	}

	app.VectorIndex, err = vectorindex.New(store.VectorStorage(), logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	// Extractors share one registry keyed by declared format.
	markdown := extract.NewMarkdownExtractor()
	app.OCRClient = extract.NewGosseractClient()
	app.Registry = extract.NewRegistry(logger,
		extract.NewTextExtractor(),
		markdown,
		extract.NewHTMLExtractor(markdown, logger),
		extract.NewPDFExtractor(logger),
		extract.NewDocxExtractor(logger),
		extract.NewTabularExtractor(cfg.Ingest.RowsPerUnit),
		extract.NewImageExtractor(app.OCRClient, cfg.Ingest.OCRMinConfidence, logger),
	)

	chk, err := chunker.New(cfg.Ingest.MinChunkChars, cfg.Ingest.MaxChunkChars, cfg.Ingest.OverlapChars)
	if err != nil {
		store.Close()
		return nil, err
	}

	app.IngestService = ingest.NewService(app.Registry, chk, app.EmbeddingService, app.VectorIndex, store, cfg, logger)
	app.StructuredSearch = search.NewKeywordSearch(store.RecordStorage(), store.RecordSearchIndex(), logger)
	app.AnswerService = answer.NewService(app.EmbeddingService, app.VectorIndex, app.StructuredSearch,
		app.GenerationService, &cfg.Retrieval, logger)
	app.Scheduler = processing.NewScheduler(app.IngestService, &cfg.Processing, logger)

	app.APIHandler = handlers.NewAPIHandler()
	app.DocumentHandler = handlers.NewDocumentHandler(app.IngestService, store.DocumentStorage(), logger)
	app.AnswerHandler = handlers.NewAnswerHandler(app.AnswerService, logger)
	app.RecordHandler = handlers.NewRecordHandler(store.RecordStorage(), logger)
	app.StatusHandler = handlers.NewStatusHandler(store.DocumentStorage(), store.RecordStorage(), app.VectorIndex, logger)

	logger.Info().
		Int("indexed_chunks", app.VectorIndex.Count()).
		Str("embed_model", app.EmbeddingService.ModelID()).
		Msg("Application initialized")

	return app, nil
}

// Start launches background components.
func (a *App) Start() error {
	return a.Scheduler.Start()
}

// Shutdown stops background components and closes storage.
func (a *App) Shutdown(ctx context.Context) error {
	a.Scheduler.Stop()
	a.OCRClient.Close()

	if err := a.StorageManager.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	a.Logger.Info().Msg("Application shutdown complete")
	return nil
}
