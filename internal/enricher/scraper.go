package enricher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/LJTian/TrendingNews/internal/models"
)

const scraperUserAgent = "TrendingNewsBot/1.0"

// ContentSource 根据 URL 返回文章正文
type ContentSource interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// Scraper 用 colly 抓取静态 HTML 并提取正文
type Scraper struct {
	timeout   time.Duration
	transport http.RoundTripper
}

func NewScraper(timeout time.Duration, transport http.RoundTripper) *Scraper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Scraper{timeout: timeout, transport: transport}
}

// Scrape 网络错误归为 transport，非 2xx 归为 provider，正文为空归为 extraction。
// 任何 2xx（包括 203 之后的）都按正常页面提取正文。
func (s *Scraper) Scrape(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := colly.NewCollector(colly.UserAgent(scraperUserAgent))
	// colly 默认把 >= 203 的状态都当作错误，这里自己按 2xx 判断
	c.ParseHTTPErrorResponse = true
	if s.timeout > 0 {
		c.SetRequestTimeout(s.timeout)
	}
	// colly 的请求不带 context，这里通过 transport 把取消信号传下去
	c.WithTransport(&ctxTransport{ctx: ctx, base: s.transport})

	var (
		content    string
		extractErr error
		status     int
	)
	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode < 200 || r.StatusCode >= 300 {
			status = r.StatusCode
			return
		}
		content, extractErr = ExtractContent(bytes.NewReader(r.Body))
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(url); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if status != 0 {
			return "", models.Wrap(models.ErrProvider, "scrape", fmt.Errorf("%s: status %d", url, status))
		}
		return "", models.Wrap(models.ErrTransport, "scrape", fmt.Errorf("%s: %w", url, err))
	}
	if status != 0 {
		return "", models.Wrap(models.ErrProvider, "scrape", fmt.Errorf("%s: status %d", url, status))
	}
	if extractErr != nil {
		return "", models.Wrap(models.ErrExtraction, "scrape", fmt.Errorf("%s: %w", url, extractErr))
	}
	if content == "" {
		return "", models.Wrap(models.ErrExtraction, "scrape", fmt.Errorf("%s: %w", url, errNoContent))
	}
	return content, nil
}

var errNoContent = errors.New("no paragraph content")

type ctxTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
