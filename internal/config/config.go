package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 启动时的配置校验错误
var (
	ErrMissingNewsAPIKey     = errors.New("NEWS_API_KEY is required")
	ErrMissingNaverClientID  = errors.New("NAVER_CLIENT_ID is required")
	ErrMissingNaverSecret    = errors.New("NAVER_CLIENT_SECRET is required")
	ErrMissingOpenAIKey      = errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
	ErrMissingGeminiKey      = errors.New("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
	ErrUnknownLLMProvider    = errors.New("LLM_PROVIDER must be one of: openai, gemini")
	ErrInvalidArticleLimit   = errors.New("ARTICLE_LIMIT must be at least 1")
	ErrInvalidEnrichParallel = errors.New("ENRICH_CONCURRENCY must be at least 1")
)

type Config struct {
	AppPort string

	// DatabaseDSN 以 postgres:// 或 host= 开头时使用 PostgreSQL，否则视为 SQLite 文件路径
	DatabaseDSN string
	// RedisAddr 为空时不启用缓存
	RedisAddr string
	CacheTTL  time.Duration

	CronSpec string

	Region         string
	TrendCount     int
	ArticleLimit   int
	RegionSynonyms []string
	TrendsFeedURL  string
	TrendInterval  time.Duration

	NewsAPIKey        string
	NewsAPIBaseURL    string
	NaverClientID     string
	NaverClientSecret string
	NaverBaseURL      string

	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiModel   string

	HTTPTimeout       time.Duration
	EnrichConcurrency int
	BrowserScraperURL string

	ScrapeDir string
	ReportDir string

	BasicAuthUser string
	BasicAuthPass string

	LogLevel  string
	LogFormat string
}

var defaults = map[string]any{
	"APP_PORT":            "9000",
	"DATABASE_DSN":        "news_articles.db",
	"REDIS_ADDR":          "",
	"CACHE_TTL":           "5m",
	"CRON_SPEC":           "*/5 * * * *",
	"REGION":              "KR",
	"TREND_COUNT":         10,
	"ARTICLE_LIMIT":       10,
	"REGION_SYNONYMS":     "한국,코리아,Korea",
	"TRENDS_FEED_URL":     "https://trends.google.com/trending/rss?geo=%s",
	"TREND_INTERVAL":      "1s",
	"NEWS_API_BASE_URL":   "https://newsapi.org",
	"NAVER_BASE_URL":      "https://openapi.naver.com",
	"LLM_PROVIDER":        "openai",
	"OPENAI_MODEL":        "gpt-3.5-turbo",
	"OPENAI_BASE_URL":     "",
	"GEMINI_MODEL":        "gemini-2.5-flash",
	"HTTP_TIMEOUT":        "20s",
	"ENRICH_CONCURRENCY":  5,
	"BROWSER_SCRAPER_URL": "",
	"SCRAPE_DIR":          "scraped_news",
	"REPORT_DIR":          "generated_news_reports",
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "text",
}

// Load 读取 .env（若存在）、可选的 CONFIG_FILE 以及环境变量，并做启动校验。
// 缺少必需的 API key 时立即返回错误，而不是等到运行中才失败。
func Load() (*Config, error) {
	// .env 不存在时忽略；已有的环境变量不会被覆盖
	_ = godotenv.Load()

	v := viper.New()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		AppPort:           v.GetString("APP_PORT"),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		CacheTTL:          v.GetDuration("CACHE_TTL"),
		CronSpec:          v.GetString("CRON_SPEC"),
		Region:            strings.ToUpper(v.GetString("REGION")),
		TrendCount:        v.GetInt("TREND_COUNT"),
		ArticleLimit:      v.GetInt("ARTICLE_LIMIT"),
		RegionSynonyms:    splitList(v.GetString("REGION_SYNONYMS")),
		TrendsFeedURL:     v.GetString("TRENDS_FEED_URL"),
		TrendInterval:     v.GetDuration("TREND_INTERVAL"),
		NewsAPIKey:        v.GetString("NEWS_API_KEY"),
		NewsAPIBaseURL:    v.GetString("NEWS_API_BASE_URL"),
		NaverClientID:     v.GetString("NAVER_CLIENT_ID"),
		NaverClientSecret: v.GetString("NAVER_CLIENT_SECRET"),
		NaverBaseURL:      v.GetString("NAVER_BASE_URL"),
		LLMProvider:       strings.ToLower(v.GetString("LLM_PROVIDER")),
		OpenAIAPIKey:      v.GetString("OPENAI_API_KEY"),
		OpenAIModel:       v.GetString("OPENAI_MODEL"),
		OpenAIBaseURL:     v.GetString("OPENAI_BASE_URL"),
		GeminiAPIKey:      v.GetString("GEMINI_API_KEY"),
		GeminiModel:       v.GetString("GEMINI_MODEL"),
		HTTPTimeout:       v.GetDuration("HTTP_TIMEOUT"),
		EnrichConcurrency: v.GetInt("ENRICH_CONCURRENCY"),
		BrowserScraperURL: v.GetString("BROWSER_SCRAPER_URL"),
		ScrapeDir:         v.GetString("SCRAPE_DIR"),
		ReportDir:         v.GetString("REPORT_DIR"),
		BasicAuthUser:     v.GetString("APP_BASIC_USER"),
		BasicAuthPass:     v.GetString("APP_BASIC_PASS"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 20 * time.Second
	}
	if cfg.TrendInterval <= 0 {
		cfg.TrendInterval = time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("config loaded: port=%s cron=%s region=%s llm=%s", cfg.AppPort, cfg.CronSpec, cfg.Region, cfg.LLMProvider)
	return cfg, nil
}

// Validate 汇总所有缺失项一次性返回
func (c *Config) Validate() error {
	var errs []error
	if c.NewsAPIKey == "" {
		errs = append(errs, ErrMissingNewsAPIKey)
	}
	if c.NaverClientID == "" {
		errs = append(errs, ErrMissingNaverClientID)
	}
	if c.NaverClientSecret == "" {
		errs = append(errs, ErrMissingNaverSecret)
	}
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, ErrMissingOpenAIKey)
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			errs = append(errs, ErrMissingGeminiKey)
		}
	default:
		errs = append(errs, ErrUnknownLLMProvider)
	}
	if c.ArticleLimit < 1 {
		errs = append(errs, ErrInvalidArticleLimit)
	}
	if c.EnrichConcurrency < 1 {
		errs = append(errs, ErrInvalidEnrichParallel)
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
