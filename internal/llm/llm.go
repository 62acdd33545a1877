package llm

import (
	"context"
	"fmt"
	"net/http"
)

// Request 一次对话补全请求
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// Completer 抽象语言模型接口；任何失败都以 models.ErrModel 返回
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Options 构造 Completer 所需的配置
type Options struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// New 按 Provider 选择实现
func New(opts Options) (Completer, error) {
	switch opts.Provider {
	case "", "openai":
		return NewOpenAI(opts.APIKey, opts.Model, opts.BaseURL, opts.HTTPClient), nil
	case "gemini":
		return NewGemini(opts.APIKey, opts.Model, opts.BaseURL, opts.HTTPClient), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", opts.Provider)
	}
}
