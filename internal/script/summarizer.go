package script

import (
	"context"
	"fmt"

	"github.com/LJTian/TrendingNews/internal/llm"
	"github.com/LJTian/TrendingNews/internal/models"
)

// Summary 单篇文章的摘要结果，Error 非空表示该篇失败
type Summary struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Summarizer struct {
	llm llm.Completer
}

func NewSummarizer(c llm.Completer) *Summarizer {
	return &Summarizer{llm: c}
}

func (s *Summarizer) Summarize(ctx context.Context, a models.EnrichedArticle) (string, error) {
	prompt := fmt.Sprintf("다음 뉴스 기사의 핵심 내용을 간결한 문장으로 요약해주세요.\n중요한 사실만을 포함하고, 불필요한 세부 사항은 제외하세요.\n\n제목: %s\n내용: %s\n\n요약:", a.Title(), a.Description)
	return complete(ctx, s.llm, "summarize", llm.Request{
		System:      "당신은 사실을 정확하게 전달하는 아나운서이며, 뉴스 기사를 간결하고 정확하게 요약하는 전문가입니다.",
		User:        prompt,
		MaxTokens:   150,
		Temperature: 0.3,
	})
}

// SummarizeAll 逐篇摘要，单篇失败记录在结果里，ctx 取消时停止
func (s *Summarizer) SummarizeAll(ctx context.Context, articles []models.EnrichedArticle) ([]Summary, error) {
	out := make([]Summary, 0, len(articles))
	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		item := Summary{Title: a.Title(), URL: a.URL}
		text, err := s.Summarize(ctx, a)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Summary = text
		}
		out = append(out, item)
	}
	return out, nil
}
