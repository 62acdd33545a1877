package collector

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/LJTian/TrendingNews/internal/models"
)

// naver 搜索接口的 display 上限为 100，start 上限为 1000
const (
	naverMaxDisplay = 100
	naverMaxStart   = 1000
)

// NaverFetcher 通过 Naver 开放平台的新闻搜索接口获取新闻，按 start 偏移分页
type NaverFetcher struct {
	client       *http.Client
	baseURL      string
	clientID     string
	clientSecret string
}

func NewNaverFetcher(client *http.Client, baseURL, clientID, clientSecret string) *NaverFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &NaverFetcher{
		client:       client,
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

func (n *NaverFetcher) Name() string {
	return "naver"
}

type naverResp struct {
	Total int `json:"total"`
	Start int `json:"start"`
	Items []struct {
		Title        string `json:"title"`
		OriginalLink string `json:"originallink"`
		Link         string `json:"link"`
		Description  string `json:"description"`
		PubDate      string `json:"pubDate"`
	} `json:"items"`
}

func (n *NaverFetcher) Fetch(ctx context.Context, q Query) ([]models.RawArticle, error) {
	q = q.normalized()
	display := min(q.PageSize, naverMaxDisplay)
	start := min(q.Start, naverMaxStart)

	params := url.Values{}
	params.Set("query", q.Text)
	params.Set("display", strconv.Itoa(display))
	params.Set("start", strconv.Itoa(start))
	params.Set("sort", "sim")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/v1/search/news.json?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, models.Wrap(models.ErrTransport, n.Name(), err)
	}
	req.Header.Set("X-Naver-Client-Id", n.clientID)
	req.Header.Set("X-Naver-Client-Secret", n.clientSecret)

	var data naverResp
	if err := getJSON(n.client, req, n.Name(), &data); err != nil {
		return nil, err
	}
	if len(data.Items) == 0 {
		return nil, nil
	}

	// 标题与摘要中的 <b> 高亮标记由 processor 统一清理
	results := make([]models.RawArticle, 0, len(data.Items))
	for _, it := range data.Items {
		results = append(results, models.RawArticle{
			Title:       it.Title,
			URL:         it.Link,
			Description: it.Description,
			Source:      models.SourceNaver,
		})
	}
	return results, nil
}
