package enricher

import (
	"context"
	"errors"
	"strings"

	"github.com/LJTian/TrendingNews/internal/llm"
	"github.com/LJTian/TrendingNews/internal/models"
)

const (
	classifySystemPrompt = "당신은 기사 내용을 분류하는 전문가입니다."
	classifyUserPrompt   = "다음 내용에서 기사 제목과 내용, 광고 및 기타 내용을 분류해 주세요:\n\n"
	classifyMaxTokens    = 2000
	classifyTemperature  = 0.3

	titleMarker = "제목:"
)

// Classification 模型对正文的分类结果
type Classification struct {
	Title string
	Body  string
}

// Classifier 让语言模型从正文中分出标题与正文
type Classifier struct {
	llm llm.Completer
}

func NewClassifier(c llm.Completer) *Classifier {
	return &Classifier{llm: c}
}

// Classify 模型调用失败时直接返回错误，不会把错误文本当作正文解析
func (c *Classifier) Classify(ctx context.Context, content string) (Classification, error) {
	text, err := c.llm.Complete(ctx, llm.Request{
		System:      classifySystemPrompt,
		User:        classifyUserPrompt + content,
		MaxTokens:   classifyMaxTokens,
		Temperature: classifyTemperature,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Classification{}, ctx.Err()
		}
		if errors.Is(err, models.ErrModel) {
			return Classification{}, err
		}
		return Classification{}, models.Wrap(models.ErrModel, "classify", err)
	}
	return ParseClassification(text), nil
}

// ParseClassification 以“제목:”开头的行作为标题（多行时取最后一行），
// 其余行去掉首尾空白后以单个空格连接为正文，空行直接丢弃，不会产生多余空格
func ParseClassification(text string) Classification {
	out := Classification{Title: models.NoTitleFound}
	var body []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, titleMarker) {
			out.Title = strings.TrimSpace(strings.TrimPrefix(line, titleMarker))
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		body = append(body, strings.TrimSpace(line))
	}
	out.Body = strings.Join(body, " ")
	return out
}
