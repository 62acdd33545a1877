package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/LJTian/TrendingNews/internal/models"
)

// NewsAPIFetcher 通过 newsapi.org 的 /v2/everything 搜索新闻，按页码分页
type NewsAPIFetcher struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewNewsAPIFetcher(client *http.Client, baseURL, apiKey string) *NewsAPIFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &NewsAPIFetcher{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

func (n *NewsAPIFetcher) Name() string {
	return "newsapi"
}

type newsAPIResp struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
	} `json:"articles"`
}

func (n *NewsAPIFetcher) Fetch(ctx context.Context, q Query) ([]models.RawArticle, error) {
	q = q.normalized()

	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", strconv.Itoa(q.PageSize))
	params.Set("page", strconv.Itoa(q.Page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/v2/everything?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, models.Wrap(models.ErrTransport, n.Name(), err)
	}
	req.Header.Set("X-Api-Key", n.apiKey)

	var data newsAPIResp
	if err := getJSON(n.client, req, n.Name(), &data); err != nil {
		return nil, err
	}
	if data.Status != "" && data.Status != "ok" {
		return nil, models.Wrap(models.ErrProvider, n.Name(), fmt.Errorf("%s: %s", data.Code, data.Message))
	}
	if len(data.Articles) == 0 {
		return nil, nil
	}

	results := make([]models.RawArticle, 0, len(data.Articles))
	for _, a := range data.Articles {
		results = append(results, models.RawArticle{
			Title:       a.Title,
			URL:         a.URL,
			Description: a.Description,
			Source:      models.SourceNewsAPI,
		})
	}
	return results, nil
}
