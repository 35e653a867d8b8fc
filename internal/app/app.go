// Package app assembles the service graph from configuration. It is the
// shared composition root for the API server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askgate/internal/backend/corpus"
	"github.com/kailas-cloud/askgate/internal/backend/web"
	"github.com/kailas-cloud/askgate/internal/config"
	"github.com/kailas-cloud/askgate/internal/db"
	dbRedis "github.com/kailas-cloud/askgate/internal/db/redis"
	"github.com/kailas-cloud/askgate/internal/domain"
	"github.com/kailas-cloud/askgate/internal/domain/allowlist"
	"github.com/kailas-cloud/askgate/internal/domain/progress"
	"github.com/kailas-cloud/askgate/internal/domain/search/backend"
	"github.com/kailas-cloud/askgate/internal/metrics"
	"github.com/kailas-cloud/askgate/internal/repository/embcache"
	openaiTransport "github.com/kailas-cloud/askgate/internal/transport/openai"
	"github.com/kailas-cloud/askgate/internal/transport/tavily"
	classifyuc "github.com/kailas-cloud/askgate/internal/usecase/classify"
	healthuc "github.com/kailas-cloud/askgate/internal/usecase/health"
	orchestrateuc "github.com/kailas-cloud/askgate/internal/usecase/orchestrate"
	planuc "github.com/kailas-cloud/askgate/internal/usecase/plan"
	synthesizeuc "github.com/kailas-cloud/askgate/internal/usecase/synthesize"
)

// App holds the assembled service graph.
type App struct {
	Orchestrator *orchestrateuc.Service
	Health       *healthuc.Service

	store db.Store
}

// Build assembles the orchestrator and its collaborators from configuration.
// Backends without credentials become permanently-skipped slots, never errors.
// Call Close when done.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	metrics.RegisterRetrievalMetrics()

	llm := openaiTransport.NewLLM(&openaiTransport.LLMConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Logger:  logger,
	})

	app := &App{}

	// Backend slots in fixed order: corpus first, then web. The order decides
	// answer section order when both subsystems contribute.
	slots := []orchestrateuc.Slot{
		{ID: backend.Corpus, Limit: cfg.Corpus.Limit},
		{
			ID:           backend.Web,
			DomainScoped: true,
			Limit:        cfg.Web.MaxResults,
			Depth:        backend.ParseDepth(cfg.Web.Depth),
		},
	}

	if cfg.CorpusEnabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Corpus.Addrs,
			Password: cfg.Corpus.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create corpus store: %w", err)
		}
		app.store = store

		readiness := time.Duration(cfg.Corpus.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			store.Close()
			return nil, fmt.Errorf("corpus store not ready: %w", err)
		}

		var embedder domain.Embedder = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
		if cfg.Embedding.CacheTTLSec > 0 {
			ttl := time.Duration(cfg.Embedding.CacheTTLSec) * time.Second
			embedder = embcache.New(embedder, store, ttl, metrics.EmbeddingCacheTotal, logger)
		}

		slots[0].Adapter = corpus.New(store, embedder, cfg.Corpus.Index, logger)
	}

	if cfg.WebEnabled() {
		client := tavily.NewClient(tavily.Config{
			APIKey:  cfg.Web.APIKey,
			BaseURL: cfg.Web.BaseURL,
		})
		slots[1].Adapter = web.New(client)
	}

	classifier := classifyuc.New(llm, cfg.Retrieval.Topics, logger)

	planner := planuc.New(llm, cfg.Retrieval.PrimaryDomain, logger)

	synth := synthesizeuc.New(llm, logger)

	app.Orchestrator = orchestrateuc.New(
		classifier, planner, synth,
		slots,
		allowlist.New(cfg.Retrieval.AllowedDomains),
		orchestrateuc.Config{
			EvidenceLimit:   cfg.Retrieval.EvidenceLimit,
			ClassifyTimeout: time.Duration(cfg.Retrieval.Timeouts.ClassifySec) * time.Second,
			PlanTimeout:     time.Duration(cfg.Retrieval.Timeouts.PlanSec) * time.Second,
			SearchTimeout:   time.Duration(cfg.Retrieval.Timeouts.SearchSec) * time.Second,
			GenerateTimeout: time.Duration(cfg.Retrieval.Timeouts.GenerateSec) * time.Second,
		},
		logger,
	)

	// Default progress sink logs state transitions at debug level. Callers
	// (the CLI) may replace it.
	app.Orchestrator.WithSink(progress.Func(func(e progress.Event) {
		logger.Debug("orchestration step",
			zap.String("step", string(e.Step)),
			zap.String("message", e.Message),
			zap.Any("data", e.Data),
		)
	}))

	var corpusPinger healthuc.CorpusPinger
	if app.store != nil {
		corpusPinger = app.store
	}
	app.Health = healthuc.New(corpusPinger, llm)

	return app, nil
}

// Close releases held resources.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
}
