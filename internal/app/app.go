package app

import (
	"log/slog"
	"net/http"

	"github.com/LJTian/TrendingNews/internal/collector"
	"github.com/LJTian/TrendingNews/internal/config"
	"github.com/LJTian/TrendingNews/internal/enricher"
	"github.com/LJTian/TrendingNews/internal/llm"
	"github.com/LJTian/TrendingNews/internal/logger"
	"github.com/LJTian/TrendingNews/internal/pipeline"
	"github.com/LJTian/TrendingNews/internal/processor"
	"github.com/LJTian/TrendingNews/internal/ratelimit"
	"github.com/LJTian/TrendingNews/internal/report"
	"github.com/LJTian/TrendingNews/internal/script"
	"github.com/LJTian/TrendingNews/internal/storage"
)

// App 按配置组装好的全部组件，供 cmd 下的入口共用
type App struct {
	Config     *config.Config
	Log        *slog.Logger
	Store      *storage.Store
	Cache      *storage.Cache
	Archive    *storage.Archive
	Aggregator *pipeline.Aggregator
	Generator  *script.Generator
	Validator  *script.Validator
	Summarizer *script.Summarizer
	Exporter   *report.MarkdownExporter
}

func New(cfg *config.Config) (*App, error) {
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	store, err := storage.NewStore(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	var cache *storage.Cache
	if cfg.RedisAddr != "" {
		cache = storage.NewCache(cfg.RedisAddr, cfg.CacheTTL)
	}

	model, err := llm.New(llm.Options{
		Provider:   cfg.LLMProvider,
		APIKey:     modelKey(cfg),
		Model:      modelName(cfg),
		BaseURL:    modelBaseURL(cfg),
		HTTPClient: &http.Client{Timeout: 2 * cfg.HTTPTimeout},
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var fallback enricher.ContentSource
	if cfg.BrowserScraperURL != "" {
		fallback = enricher.NewBrowserExtractor(cfg.BrowserScraperURL, &http.Client{Timeout: 2 * cfg.HTTPTimeout})
	}

	archive := storage.NewArchive(cfg.ScrapeDir)
	deps := pipeline.Deps{
		Trends: collector.NewTrendSource(client, cfg.TrendsFeedURL, ratelimit.New(cfg.TrendInterval, ratelimit.RealClock), log),
		// 拼接顺序：NewsAPI 在前，Naver 在后
		Fetchers: []collector.NewsFetcher{
			collector.NewNewsAPIFetcher(client, cfg.NewsAPIBaseURL, cfg.NewsAPIKey),
			collector.NewNaverFetcher(client, cfg.NaverBaseURL, cfg.NaverClientID, cfg.NaverClientSecret),
		},
		Processor: processor.NewProcessor(),
		Enricher: enricher.New(
			enricher.NewScraper(cfg.HTTPTimeout, nil),
			fallback,
			enricher.NewClassifier(model),
			log,
		),
		Sinks:             []pipeline.Sink{archive, store},
		Synonyms:          cfg.RegionSynonyms,
		EnrichConcurrency: cfg.EnrichConcurrency,
		Log:               log,
	}
	if cache != nil {
		deps.Cache = cache
	}

	return &App{
		Config:     cfg,
		Log:        log,
		Store:      store,
		Cache:      cache,
		Archive:    archive,
		Aggregator: pipeline.New(deps),
		Generator:  script.NewGenerator(model),
		Validator:  script.NewValidator(model),
		Summarizer: script.NewSummarizer(model),
		Exporter:   report.NewMarkdownExporter(cfg.ReportDir),
	}, nil
}

func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		a.Log.Warn("close cache", "error", err)
	}
	if err := a.Store.Close(); err != nil {
		a.Log.Warn("close store", "error", err)
	}
}

func modelKey(cfg *config.Config) string {
	if cfg.LLMProvider == "gemini" {
		return cfg.GeminiAPIKey
	}
	return cfg.OpenAIAPIKey
}

func modelBaseURL(cfg *config.Config) string {
	if cfg.LLMProvider == "gemini" {
		return ""
	}
	return cfg.OpenAIBaseURL
}

func modelName(cfg *config.Config) string {
	if cfg.LLMProvider == "gemini" {
		return cfg.GeminiModel
	}
	return cfg.OpenAIModel
}
