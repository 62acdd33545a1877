package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LJTian/TrendingNews/internal/llm"
	"github.com/LJTian/TrendingNews/internal/models"
)

var (
	ErrUnknownStyle    = errors.New("script: unknown style")
	ErrUnknownLanguage = errors.New("script: unknown language")
	ErrNoArticles      = errors.New("script: no articles")
)

const (
	DefaultStyle     = "아나운서"
	DefaultPresenter = "진행자"
	DefaultLanguage  = "한국어"
)

// Style 播报风格及其语气说明
type Style struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// styles 顺序即展示顺序
var styles = []Style{
	{Name: "아나운서", Description: "공식적이고 전문적인 톤으로, 객관적인 사실 전달에 중점을 둡니다."},
	{Name: "친구", Description: "편안하고 친근한 톤으로, 일상적인 대화 스타일을 사용합니다."},
	{Name: "선생님", Description: "교육적이고 설명적인 톤으로, 정보를 쉽게 이해할 수 있도록 합니다."},
	{Name: "정치가", Description: "설득력 있고 강한 톤으로, 의견을 제시하고 주장을 펼칩니다."},
	{Name: "코미디언", Description: "유머러스하고 가벼운 톤으로, 재미있게 정보를 전달합니다."},
}

var languageInstructions = map[string]string{
	"한국어":     "한국어로 작성하세요.",
	"English": "Write in English.",
	"日本語":     "日本語で書いてください。",
	"中文":      "请用中文写作。",
}

// Styles 返回可选风格
func Styles() []Style {
	out := make([]Style, len(styles))
	copy(out, styles)
	return out
}

// Languages 返回支持的输出语言
func Languages() []string {
	return []string{"한국어", "English", "日本語", "中文"}
}

func styleDescription(name string) (string, bool) {
	for _, s := range styles {
		if s.Name == name {
			return s.Description, true
		}
	}
	return "", false
}

type Options struct {
	Style     string
	Presenter string
	Language  string
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Style) == "" {
		o.Style = DefaultStyle
	}
	if strings.TrimSpace(o.Presenter) == "" {
		o.Presenter = DefaultPresenter
	}
	if strings.TrimSpace(o.Language) == "" {
		o.Language = DefaultLanguage
	}
	return o
}

// Generator 根据新闻生成视频播报稿
type Generator struct {
	llm llm.Completer
}

func NewGenerator(c llm.Completer) *Generator {
	return &Generator{llm: c}
}

func (g *Generator) Generate(ctx context.Context, articles []models.EnrichedArticle, opts Options) (string, error) {
	opts = opts.withDefaults()
	tone, ok := styleDescription(opts.Style)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownStyle, opts.Style)
	}
	langInstr, ok := languageInstructions[opts.Language]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownLanguage, opts.Language)
	}
	if len(articles) == 0 {
		return "", ErrNoArticles
	}

	blocks := make([]string, 0, len(articles))
	for _, a := range articles {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nContent: %s", a.Title(), a.FullContent))
	}
	words := "600-800"
	if len(articles) > 1 {
		words = "1000-1200"
	}

	prompt := fmt.Sprintf(generatePrompt, opts.Presenter, strings.Join(blocks, "\n\n"), words, opts.Style, tone, langInstr, opts.Language, opts.Style)
	system := fmt.Sprintf("You are a skilled YouTube script writer, creating content in the style of a %s for a %s-speaking audience. Focus on the provided news articles and include specific details.", opts.Style, opts.Language)

	return complete(ctx, g.llm, "generate script", llm.Request{
		System:      system,
		User:        prompt,
		MaxTokens:   2000,
		Temperature: 0.7,
	})
}

const generatePrompt = `Create a natural and engaging script for a YouTube news video discussing the following news articles:

Presenter Name: %s

News Articles:
%s

The script should:
1. Start with a brief greeting and introduction using the presenter's name.
2. Present each news article in a flowing, conversational manner, as if naturally transitioning from one topic to another.
3. Include specific details for each news item:
   - For products: mention features, prices, and any other key information viewers might be curious about.
   - For sports events: include results, scores, key players involved in scoring, and any significant moments.
   - For political or economic news: mention key figures, important data or statistics, and potential impacts.
   - For entertainment news: include names of celebrities, event details, and any notable quotes or incidents.
4. Avoid using numbering or explicit segmentation between news items.
5. Integrate the information from all articles into a cohesive narrative, using appropriate transitions between topics.
6. End with a brief conclusion and a subtle call to action for viewers to engage with the channel.
7. Be approximately %s words long.
8. Use a tone and style suitable for a %s. %s
9. %s

Please write the entire script in %s, adapting the content and style to match that of a %s, ensuring a smooth flow throughout the entire script while including specific, detailed information for each news item.`

// complete 统一把模型失败包装为 ErrModel
func complete(ctx context.Context, c llm.Completer, op string, req llm.Request) (string, error) {
	out, err := c.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, models.ErrModel) {
			return "", err
		}
		return "", models.Wrap(models.ErrModel, op, err)
	}
	return strings.TrimSpace(out), nil
}
