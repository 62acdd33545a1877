package enricher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/LJTian/TrendingNews/internal/models"
)

// BrowserExtractor 调用 headless Chrome 抓取服务，用于静态抓取拿不到正文的页面
type BrowserExtractor struct {
	endpoint string
	client   *http.Client
}

func NewBrowserExtractor(baseURL string, client *http.Client) *BrowserExtractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &BrowserExtractor{
		endpoint: strings.TrimRight(baseURL, "/") + "/extract",
		client:   client,
	}
}

type browserRequest struct {
	URL string `json:"url"`
}

type browserResponse struct {
	OK         bool     `json:"ok"`
	Paragraphs []string `json:"paragraphs,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func (b *BrowserExtractor) Scrape(ctx context.Context, url string) (string, error) {
	payload, _ := json.Marshal(browserRequest{URL: url})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", models.Wrap(models.ErrTransport, "browser extract", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", models.Wrap(models.ErrTransport, "browser extract", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", models.Wrap(models.ErrProvider, "browser extract", fmt.Errorf("status %d", resp.StatusCode))
	}

	var out browserResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&out); err != nil {
		return "", models.Wrap(models.ErrProvider, "browser extract", err)
	}
	if !out.OK {
		return "", models.Wrap(models.ErrExtraction, "browser extract", errors.New(out.Error))
	}

	content := FilterBlocks(out.Paragraphs)
	if content == "" {
		return "", models.Wrap(models.ErrExtraction, "browser extract", errNoContent)
	}
	return content, nil
}
