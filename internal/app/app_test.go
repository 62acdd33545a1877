package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/TrendingNews/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		DatabaseDSN:       filepath.Join(dir, "news_articles.db"),
		TrendsFeedURL:     "http://127.0.0.1:1/rss?geo=%s",
		TrendInterval:     time.Second,
		NewsAPIKey:        "n",
		NewsAPIBaseURL:    "http://127.0.0.1:1",
		NaverClientID:     "id",
		NaverClientSecret: "secret",
		NaverBaseURL:      "http://127.0.0.1:1",
		LLMProvider:       "openai",
		OpenAIAPIKey:      "sk",
		HTTPTimeout:       time.Second,
		EnrichConcurrency: 2,
		ScrapeDir:         filepath.Join(dir, "scraped_news"),
		ReportDir:         filepath.Join(dir, "reports"),
		LogLevel:          "error",
	}
}

func TestNewWiresComponents(t *testing.T) {
	a, err := New(testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Aggregator)
	assert.NotNil(t, a.Store)
	assert.Nil(t, a.Cache)
	assert.NotNil(t, a.Generator)
	assert.NotNil(t, a.Exporter)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMProvider = "other"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestModelSelection(t *testing.T) {
	cfg := &config.Config{LLMProvider: "gemini", GeminiAPIKey: "g", GeminiModel: "gm", OpenAIAPIKey: "o", OpenAIBaseURL: "http://x"}
	assert.Equal(t, "g", modelKey(cfg))
	assert.Equal(t, "gm", modelName(cfg))
	assert.Empty(t, modelBaseURL(cfg))

	cfg.LLMProvider = "openai"
	assert.Equal(t, "o", modelKey(cfg))
	assert.Equal(t, "http://x", modelBaseURL(cfg))
}
