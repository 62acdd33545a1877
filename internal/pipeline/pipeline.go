package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/LJTian/TrendingNews/internal/collector"
	"github.com/LJTian/TrendingNews/internal/metrics"
	"github.com/LJTian/TrendingNews/internal/models"
	"github.com/LJTian/TrendingNews/internal/processor"
)

const defaultEnrichConcurrency = 5

// TrendSource 返回按热度排序的关键词
type TrendSource interface {
	Trending(ctx context.Context, region string, count int) []string
}

type ArticleEnricher interface {
	Enrich(ctx context.Context, raw models.RawArticle) (models.EnrichedArticle, error)
}

// Sink 接收补全成功的文章；写入失败只记录，不影响本轮聚合
type Sink interface {
	Name() string
	Save(ctx context.Context, art models.EnrichedArticle) error
}

// Cache 可选的结果缓存
type Cache interface {
	Trends(ctx context.Context, region string) ([]string, bool)
	SetTrends(ctx context.Context, region string, keywords []string)
	News(ctx context.Context, keyword string) ([]models.EnrichedArticle, bool)
	SetNews(ctx context.Context, keyword string, articles []models.EnrichedArticle)
}

// TrendingNews 一轮聚合的结果，Keywords 保持输入顺序且只包含有文章的关键词
type TrendingNews struct {
	Keywords []string                            `json:"keywords"`
	News     map[string][]models.EnrichedArticle `json:"news"`
}

// Deps 聚合器依赖；Fetchers 的顺序决定同一关键词下文章的拼接顺序
type Deps struct {
	Trends            TrendSource
	Fetchers          []collector.NewsFetcher
	Processor         *processor.Processor
	Enricher          ArticleEnricher
	Sinks             []Sink
	Cache             Cache
	Synonyms          []string
	EnrichConcurrency int
	Log               *slog.Logger
}

type Aggregator struct {
	trends    TrendSource
	fetchers  []collector.NewsFetcher
	processor *processor.Processor
	enricher  ArticleEnricher
	sinks     []Sink
	cache     Cache
	synonyms  []string
	parallel  int
	log       *slog.Logger
}

func New(d Deps) *Aggregator {
	if d.Processor == nil {
		d.Processor = processor.NewProcessor()
	}
	if d.EnrichConcurrency <= 0 {
		d.EnrichConcurrency = defaultEnrichConcurrency
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Aggregator{
		trends:    d.Trends,
		fetchers:  d.Fetchers,
		processor: d.Processor,
		enricher:  d.Enricher,
		sinks:     d.Sinks,
		cache:     d.Cache,
		synonyms:  d.Synonyms,
		parallel:  d.EnrichConcurrency,
		log:       d.Log,
	}
}

// Aggregate 并发处理每个关键词：查询所有新闻接口、拼接截断、并发补全。
// 单个接口或单篇文章失败不会中断整轮；ctx 取消时等待所有协程退出后返回 ctx.Err()。
// limit <= 0 时不发起任何请求，返回空结果。
func (a *Aggregator) Aggregate(ctx context.Context, keywords []string, limit int) (TrendingNews, error) {
	if limit <= 0 {
		return TrendingNews{News: map[string][]models.EnrichedArticle{}}, ctx.Err()
	}
	start := time.Now()
	log := a.log.With("run", uuid.NewString())
	keywords = uniqueKeywords(keywords)
	log.Info("aggregate started", "keywords", len(keywords), "limit", limit)

	lists := make([][]models.EnrichedArticle, len(keywords))
	var g errgroup.Group
	for i, kw := range keywords {
		g.Go(func() error {
			lists[i] = a.collect(ctx, log, kw, collector.Query{PageSize: limit}, limit)
			return nil
		})
	}
	_ = g.Wait()
	metrics.AggregateDuration.Observe(time.Since(start).Seconds())

	if err := ctx.Err(); err != nil {
		log.Warn("aggregate cancelled", "error", err)
		return TrendingNews{}, err
	}

	out := TrendingNews{News: make(map[string][]models.EnrichedArticle, len(keywords))}
	for i, kw := range keywords {
		if len(lists[i]) == 0 {
			continue
		}
		out.Keywords = append(out.Keywords, kw)
		out.News[kw] = lists[i]
	}
	log.Info("aggregate finished", "keywords", len(out.Keywords), "elapsed", time.Since(start).String())
	return out, nil
}

// Trending 获取热门关键词并聚合，结果写入缓存
func (a *Aggregator) Trending(ctx context.Context, region string, count, limit int) (TrendingNews, error) {
	keywords := a.trends.Trending(ctx, region, count)
	if len(keywords) == 0 {
		return TrendingNews{News: map[string][]models.EnrichedArticle{}}, ctx.Err()
	}

	res, err := a.Aggregate(ctx, keywords, limit)
	if err != nil {
		return res, err
	}
	if a.cache != nil {
		a.cache.SetTrends(ctx, region, keywords)
		for _, kw := range res.Keywords {
			a.cache.SetNews(ctx, kw, res.News[kw])
		}
	}
	return res, nil
}

// Keywords 优先读缓存，未命中时请求热搜源
func (a *Aggregator) Keywords(ctx context.Context, region string, count int) []string {
	if count <= 0 {
		return nil
	}
	if a.cache != nil {
		if kws, ok := a.cache.Trends(ctx, region); ok && len(kws) >= count {
			return kws[:count]
		}
	}
	kws := a.trends.Trending(ctx, region, count)
	if a.cache != nil {
		a.cache.SetTrends(ctx, region, kws)
	}
	return kws
}

// NewsByKeyword 单个关键词的聚合结果；缓存中条目足够时直接返回
func (a *Aggregator) NewsByKeyword(ctx context.Context, keyword string, limit int) ([]models.EnrichedArticle, error) {
	keyword = strings.TrimSpace(keyword)
	if a.cache != nil {
		if list, ok := a.cache.News(ctx, keyword); ok && limit > 0 && len(list) >= limit {
			return list[:limit], nil
		}
	}

	res, err := a.Aggregate(ctx, []string{keyword}, limit)
	if err != nil {
		return nil, err
	}
	list := res.News[keyword]
	if a.cache != nil {
		a.cache.SetNews(ctx, keyword, list)
	}
	return list, nil
}

// More 按页继续获取某个关键词的新闻，不做截断
func (a *Aggregator) More(ctx context.Context, keyword string, page, start, pageSize int) ([]models.EnrichedArticle, error) {
	log := a.log.With("run", uuid.NewString())
	q := collector.Query{Page: page, Start: start, PageSize: pageSize}
	list := a.collect(ctx, log, strings.TrimSpace(keyword), q, noTruncate)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// noTruncate 仅供 More 使用，表示保留接口返回的全部条目
const noTruncate = -1

// collect 单个关键词的完整流程；limit 为 noTruncate 时不截断
func (a *Aggregator) collect(ctx context.Context, log *slog.Logger, keyword string, q collector.Query, limit int) []models.EnrichedArticle {
	q.Text = collector.AugmentQuery(keyword, a.synonyms)

	raws := a.processor.Normalize(a.fetchAll(ctx, log, q))
	if limit != noTruncate && len(raws) > limit {
		raws = raws[:limit]
	}
	if len(raws) == 0 || ctx.Err() != nil {
		return nil
	}
	return a.enrichAll(ctx, log, keyword, raws)
}

// fetchAll 并发查询所有接口，结果按接口顺序拼接
func (a *Aggregator) fetchAll(ctx context.Context, log *slog.Logger, q collector.Query) []models.RawArticle {
	results := make([][]models.RawArticle, len(a.fetchers))
	var g errgroup.Group
	for i, f := range a.fetchers {
		g.Go(func() error {
			items, err := f.Fetch(ctx, q)
			if err != nil {
				metrics.RecordFetch(f.Name(), models.KindOf(err), 0)
				if ctx.Err() == nil {
					log.Warn("fetch failed", "provider", f.Name(), "query", q.Text, "kind", models.KindOf(err), "error", err)
				}
				return nil
			}
			metrics.RecordFetch(f.Name(), "ok", len(items))
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var all []models.RawArticle
	for _, items := range results {
		all = append(all, items...)
	}
	return all
}

// enrichAll 有限并发补全，输出顺序与输入一致
func (a *Aggregator) enrichAll(ctx context.Context, log *slog.Logger, keyword string, raws []models.RawArticle) []models.EnrichedArticle {
	out := make([]models.EnrichedArticle, len(raws))
	var g errgroup.Group
	g.SetLimit(a.parallel)
	for i, raw := range raws {
		g.Go(func() error {
			art, err := a.enricher.Enrich(ctx, raw)
			art.Keyword = keyword
			if err != nil {
				if art.Err == nil {
					art.Fail(err)
				}
				metrics.RecordEnrich(models.KindOf(err))
				if ctx.Err() == nil {
					log.Warn("enrich failed", "keyword", keyword, "url", raw.URL, "kind", models.KindOf(err), "error", err)
				}
			} else {
				metrics.RecordEnrich("ok")
				a.persist(ctx, log, art)
			}
			out[i] = art
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (a *Aggregator) persist(ctx context.Context, log *slog.Logger, art models.EnrichedArticle) {
	for _, s := range a.sinks {
		if err := s.Save(ctx, art); err != nil {
			metrics.RecordPersistError(s.Name())
			log.Error("persist failed", "sink", s.Name(), "url", art.URL, "error", err)
		}
	}
}

// uniqueKeywords 去掉空白与重复的关键词，保持顺序
func uniqueKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
