package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/LJTian/TrendingNews/internal/models"
)

const maxResponseBytes = 2 << 20 // 2MB，新闻接口响应上限

// Query 一次新闻搜索的参数。Page 供按页码分页的接口使用，Start 供按偏移分页的接口使用。
type Query struct {
	Text     string
	Page     int
	Start    int
	PageSize int
}

// NewsFetcher 抽象每一个新闻搜索接口。
// 返回 (nil, nil) 表示接口正常但没有结果；失败时返回带分类的错误。
type NewsFetcher interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]models.RawArticle, error)
}

// AugmentQuery 在关键词后追加地区同义词，使结果偏向目标国家，
// 例如 "날씨 AND (한국 OR 코리아 OR Korea)"
func AugmentQuery(keyword string, synonyms []string) string {
	keyword = strings.TrimSpace(keyword)
	if len(synonyms) == 0 {
		return keyword
	}
	return fmt.Sprintf("%s AND (%s)", keyword, strings.Join(synonyms, " OR "))
}

func (q Query) normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Start < 1 {
		q.Start = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	return q
}

// getJSON 发送请求并解码 JSON；传输失败归为 ErrTransport，非 2xx 或解码失败归为 ErrProvider
func getJSON(client *http.Client, req *http.Request, op string, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return models.Wrap(models.ErrTransport, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.Wrap(models.ErrProvider, op, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return models.Wrap(models.ErrProvider, op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
