package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/telemetry"
	"github.com/mohammad-safakhou/newsdesk/internal/archive"
	"github.com/mohammad-safakhou/newsdesk/internal/runtime"
	"github.com/mohammad-safakhou/newsdesk/internal/store"
	"github.com/mohammad-safakhou/newsdesk/repository"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch"
	"github.com/mohammad-safakhou/newsdesk/tools/web_search"
)

// app holds the dependencies shared by serve and research.
type app struct {
	cfg     *config.Config
	tel     *telemetry.Telemetry
	tracing *runtime.Tracing
	repos   *repository.Repositories
	store   *store.Store
	archive *archive.Archive
	orch    *core.Orchestrator
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, tel: telemetry.NewTelemetry(cfg.Telemetry)}
	var err error
	if a.tracing, err = runtime.SetupTracing(ctx, cfg.Telemetry, version); err != nil {
		return nil, err
	}
	if a.repos, err = repository.NewFromConfig(ctx, cfg.Storage.Redis); err != nil {
		a.close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	if cfg.Storage.Postgres.Enabled() {
		if a.store, err = store.New(ctx, cfg.Storage.Postgres); err != nil {
			a.close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
	}
	if a.archive, err = archive.Open(cfg.Storage.Archive); err != nil {
		a.close()
		return nil, fmt.Errorf("archive: %w", err)
	}

	llm, err := core.NewLLMProvider(cfg.LLM)
	if err != nil {
		a.close()
		return nil, err
	}
	tools, err := buildTools(cfg, a.repos)
	if err != nil {
		a.close()
		return nil, err
	}
	orch, err := core.NewOrchestrator(cfg, llm, tools, log.New(log.Writer(), "[ORCH] ", log.LstdFlags), a.tel)
	if err != nil {
		a.close()
		return nil, err
	}
	if a.store != nil {
		orch.AttachStore(a.store)
	}
	orch.AttachIndex(a.archive)
	a.orch = orch
	return a, nil
}

// buildTools registers search, and fetch when enabled. Search results are
// cached in redis when it is configured.
func buildTools(cfg *config.Config, repos *repository.Repositories) (*core.Registry, error) {
	searcher, err := web_search.NewWebSearcher(cfg.Sources.WebSearch)
	if err != nil {
		return nil, err
	}
	if repos != nil && repos.SearchCache != nil && cfg.Sources.WebSearch.CacheTTL > 0 {
		searcher = web_search.NewCached(searcher, repos.SearchCache, cfg.Sources.WebSearch.Provider, cfg.Sources.WebSearch.CacheTTL)
	}
	tools := []core.Tool{web_search.NewTool(searcher, cfg.Agent.SearchResults, cfg.Sources.Policy)}
	if cfg.Agent.FetchEnabled {
		fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Agent.FetchRenderer), cfg.Agent.FetchTimeout, cfg.Agent.FetchMaxChars)
		if err != nil {
			return nil, err
		}
		tools = append(tools, web_fetch.NewTool(fetcher, cfg.Sources.Policy))
	}
	return core.NewRegistry(tools...)
}

func (a *app) close() {
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			log.Printf("archive close: %v", err)
		}
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.repos != nil {
		_ = a.repos.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracing.Shutdown(ctx); err != nil {
		log.Printf("%v", err)
	}
}
