package enricher

import (
	"context"
	"errors"
	"log/slog"

	"github.com/LJTian/TrendingNews/internal/models"
)

// Enricher 抓取正文、调用模型分类，再与原始条目合并
type Enricher struct {
	scraper    ContentSource
	fallback   ContentSource
	classifier *Classifier
	log        *slog.Logger
}

// New fallback 可为 nil；非 nil 时在静态抓取拿不到正文的情况下使用
func New(scraper, fallback ContentSource, classifier *Classifier, log *slog.Logger) *Enricher {
	return &Enricher{
		scraper:    scraper,
		fallback:   fallback,
		classifier: classifier,
		log:        log,
	}
}

// Enrich 返回尽量填充的文章和分类后的错误。
// 抓取失败时不再调用模型，失败的文章 FullContent 为空。
func (e *Enricher) Enrich(ctx context.Context, raw models.RawArticle) (models.EnrichedArticle, error) {
	art := models.NewEnriched(raw)

	content, err := e.content(ctx, raw.URL)
	if err != nil {
		art.Fail(err)
		return art, err
	}

	cls, err := e.classifier.Classify(ctx, content)
	if err != nil {
		art.Fail(err)
		return art, err
	}

	art.DerivedTitle = cls.Title
	art.FullContent = cls.Body
	return art, nil
}

func (e *Enricher) content(ctx context.Context, url string) (string, error) {
	content, err := e.scraper.Scrape(ctx, url)
	if err == nil || e.fallback == nil || ctx.Err() != nil || !errors.Is(err, models.ErrExtraction) {
		return content, err
	}

	e.log.Debug("enricher: static extraction empty, trying browser", "url", url)
	content, ferr := e.fallback.Scrape(ctx, url)
	if ferr != nil {
		e.log.Warn("enricher: browser extraction failed", "url", url, "error", ferr)
		return "", err
	}
	return content, nil
}
