package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/LJTian/TrendingNews/internal/llm"
	"github.com/LJTian/TrendingNews/internal/models"
)

// Validator 对照原文核对播报稿，返回修正后的稿件
type Validator struct {
	llm llm.Completer
}

func NewValidator(c llm.Completer) *Validator {
	return &Validator{llm: c}
}

func (v *Validator) Validate(ctx context.Context, script string, articles []models.EnrichedArticle) (string, error) {
	var sb strings.Builder
	sb.WriteString("다음 뉴스 스크립트가 주어진 뉴스 기사와 일치하는지 확인하고, 사실과 다른 부분이 있다면 수정해 주세요.\n")
	sb.WriteString("뉴스 기사의 내용을 정확히 반영하도록 수정해 주세요.\n\n")
	sb.WriteString("뉴스 스크립트:\n")
	sb.WriteString(script)
	sb.WriteString("\n\n뉴스 기사:")
	for _, a := range articles {
		fmt.Fprintf(&sb, "\n\n제목: %s\n내용: %s", a.Title(), a.FullContent)
	}

	return complete(ctx, v.llm, "validate script", llm.Request{
		System:      "당신은 사실을 정확하게 검증하고 수정하는 전문가입니다.",
		User:        sb.String(),
		MaxTokens:   2000,
		Temperature: 0.3,
	})
}
