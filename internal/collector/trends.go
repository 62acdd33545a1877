package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/LJTian/TrendingNews/internal/metrics"
	"github.com/LJTian/TrendingNews/internal/ratelimit"
)

const trendsUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// TrendSource 从 Google Trends 的每日热搜 RSS 获取当前热门搜索词。
// 每次外部调用前都要经过限速器，相邻两次调用至少间隔一个周期。
type TrendSource struct {
	feedURL string // 含一个 %s，用地区代码填充
	parser  *gofeed.Parser
	limiter *ratelimit.Limiter
	log     *slog.Logger
}

func NewTrendSource(client *http.Client, feedURL string, limiter *ratelimit.Limiter, log *slog.Logger) *TrendSource {
	p := gofeed.NewParser()
	if client != nil {
		p.Client = client
	}
	p.UserAgent = trendsUserAgent
	return &TrendSource{
		feedURL: feedURL,
		parser:  p,
		limiter: limiter,
		log:     log,
	}
}

// Trending 返回按热度排序的关键词，长度不超过 count。
// 接口出错时记录日志并返回空列表，错误不会向上抛出。
func (t *TrendSource) Trending(ctx context.Context, region string, count int) []string {
	if count <= 0 {
		return nil
	}
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			t.log.Warn("trends: rate limiter wait aborted", "region", region, "error", err)
			return nil
		}
	}

	u := t.feedURL
	if strings.Contains(u, "%s") {
		u = fmt.Sprintf(u, region)
	}

	feed, err := t.parser.ParseURLWithContext(u, ctx)
	if err != nil {
		metrics.RecordTrendFetch("error")
		t.log.Error("trends: fetch failed", "region", region, "error", err)
		return nil
	}
	metrics.RecordTrendFetch("ok")

	keywords := make([]string, 0, count)
	seen := make(map[string]bool)
	for _, item := range feed.Items {
		kw := strings.TrimSpace(item.Title)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		keywords = append(keywords, kw)
		if len(keywords) >= count {
			break
		}
	}

	if len(keywords) == 0 {
		t.log.Warn("trends: got 0 keywords", "region", region)
	}
	return keywords
}
