package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// headless Chrome 抓取服务：为静态抓取拿不到正文的页面返回渲染后的段落列表

type extractRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	OK         bool     `json:"ok"`
	Paragraphs []string `json:"paragraphs,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// paragraphFunc 在页面中提取段落文本，由 chromedp 执行
type paragraphFunc func(ctx context.Context, url string) ([]string, error)

func main() {
	// 创建浏览器执行器与顶层上下文，整个进程复用一个 headless 实例
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// 预热浏览器，避免首个请求耗时过长
	if err := chromedp.Run(browserCtx); err != nil {
		log.Printf("warn: warmup chromedp failed: %v", err)
	}

	extract := func(ctx context.Context, url string) ([]string, error) {
		// 每个请求用独立的超时上下文，复用同一个 browserCtx
		tabCtx, cancelTab := chromedp.NewContext(browserCtx)
		defer cancelTab()
		tabCtx, cancel := context.WithTimeout(tabCtx, 20*time.Second)
		defer cancel()
		stop := context.AfterFunc(ctx, cancel)
		defer stop()

		var paragraphs []string
		err := chromedp.Run(tabCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Evaluate(paragraphsJS, &paragraphs),
		)
		return paragraphs, err
	}

	addr := ":" + getEnv("PORT", "4000")
	log.Printf("browser-scraper listening on %s", addr)
	if err := http.ListenAndServe(addr, newMux(extract)); err != nil {
		log.Fatalf("http server error: %v", err)
	}
}

func newMux(extract paragraphFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/extract", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, extractResponse{OK: false, Error: "invalid json"})
			return
		}
		if req.URL == "" {
			writeJSON(w, http.StatusBadRequest, extractResponse{OK: false, Error: "url is required"})
			return
		}

		paragraphs, err := extract(r.Context(), req.URL)
		if err != nil {
			log.Printf("extract error: %v (url=%s)", err, req.URL)
			writeJSON(w, http.StatusOK, extractResponse{OK: false, Error: err.Error()})
			return
		}

		paragraphs = cleanParagraphs(paragraphs)
		if len(paragraphs) == 0 {
			writeJSON(w, http.StatusOK, extractResponse{OK: false, Error: "empty content"})
			return
		}
		writeJSON(w, http.StatusOK, extractResponse{OK: true, Paragraphs: paragraphs})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// paragraphsJS 返回渲染后页面中全部 <p> 的文本
const paragraphsJS = `(function () {
  var nodes = Array.prototype.slice.call(document.querySelectorAll("p"));
  return nodes.map(function (n) { return (n.innerText || "").trim(); });
})();`

// cleanParagraphs 压缩空白并去掉空段落
func cleanParagraphs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
