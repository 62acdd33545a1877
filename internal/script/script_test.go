package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/TrendingNews/internal/llm"
	"github.com/LJTian/TrendingNews/internal/models"
)

type recordingCompleter struct {
	reply string
	err   error
	reqs  []llm.Request
	fail  map[string]bool // 用户提示中包含该标题时失败
}

func (r *recordingCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	r.reqs = append(r.reqs, req)
	for title := range r.fail {
		if strings.Contains(req.User, title) {
			return "", errors.New("quota exceeded")
		}
	}
	return r.reply, r.err
}

func sampleArticles() []models.EnrichedArticle {
	return []models.EnrichedArticle{
		{OriginalTitle: "orig", DerivedTitle: "서울 폭염", URL: "https://a/1", Description: "덥다", FullContent: "서울 낮 최고 35도"},
		{OriginalTitle: "부산 태풍", DerivedTitle: models.NoTitleFound, URL: "https://a/2", Description: "비", FullContent: "태풍 북상"},
	}
}

func TestGenerateBuildsPrompt(t *testing.T) {
	rc := &recordingCompleter{reply: "  안녕하세요, 진행자입니다.  "}
	out, err := NewGenerator(rc).Generate(context.Background(), sampleArticles(), Options{Style: "친구", Language: "English"})
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요, 진행자입니다.", out)

	require.Len(t, rc.reqs, 1)
	req := rc.reqs[0]
	assert.Equal(t, 2000, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	assert.Contains(t, req.System, "in the style of a 친구 for a English-speaking audience")
	assert.Contains(t, req.User, "Presenter Name: 진행자")
	assert.Contains(t, req.User, "Title: 서울 폭염\nContent: 서울 낮 최고 35도")
	assert.Contains(t, req.User, "Title: 부산 태풍\nContent: 태풍 북상")
	assert.Contains(t, req.User, "1000-1200 words")
	assert.Contains(t, req.User, "편안하고 친근한 톤으로")
	assert.Contains(t, req.User, "9. Write in English.")
}

func TestGenerateSingleArticleWordHint(t *testing.T) {
	rc := &recordingCompleter{reply: "script"}
	_, err := NewGenerator(rc).Generate(context.Background(), sampleArticles()[:1], Options{Presenter: "민지"})
	require.NoError(t, err)
	assert.Contains(t, rc.reqs[0].User, "600-800 words")
	assert.Contains(t, rc.reqs[0].User, "Presenter Name: 민지")
	assert.Contains(t, rc.reqs[0].User, "한국어로 작성하세요.")
}

func TestGenerateRejectsUnknownOptions(t *testing.T) {
	g := NewGenerator(&recordingCompleter{})
	_, err := g.Generate(context.Background(), sampleArticles(), Options{Style: "래퍼"})
	assert.ErrorIs(t, err, ErrUnknownStyle)

	_, err = g.Generate(context.Background(), sampleArticles(), Options{Language: "Deutsch"})
	assert.ErrorIs(t, err, ErrUnknownLanguage)

	_, err = g.Generate(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrNoArticles)
}

func TestGenerateModelFailure(t *testing.T) {
	rc := &recordingCompleter{err: errors.New("boom")}
	_, err := NewGenerator(rc).Generate(context.Background(), sampleArticles(), Options{})
	assert.ErrorIs(t, err, models.ErrModel)
}

func TestValidatePrompt(t *testing.T) {
	rc := &recordingCompleter{reply: "수정된 스크립트"}
	out, err := NewValidator(rc).Validate(context.Background(), "원본 스크립트", sampleArticles())
	require.NoError(t, err)
	assert.Equal(t, "수정된 스크립트", out)

	req := rc.reqs[0]
	assert.Equal(t, "당신은 사실을 정확하게 검증하고 수정하는 전문가입니다.", req.System)
	assert.InDelta(t, 0.3, req.Temperature, 1e-6)
	assert.Contains(t, req.User, "뉴스 스크립트:\n원본 스크립트")
	assert.Contains(t, req.User, "제목: 서울 폭염\n내용: 서울 낮 최고 35도")
}

func TestSummarizeAllCarriesFailuresPerItem(t *testing.T) {
	rc := &recordingCompleter{reply: "요약입니다", fail: map[string]bool{"부산 태풍": true}}
	out, err := NewSummarizer(rc).SummarizeAll(context.Background(), sampleArticles())
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, Summary{Title: "서울 폭염", URL: "https://a/1", Summary: "요약입니다"}, out[0])
	assert.Equal(t, "부산 태풍", out[1].Title)
	assert.Empty(t, out[1].Summary)
	assert.Contains(t, out[1].Error, "quota exceeded")
	assert.Equal(t, 150, rc.reqs[0].MaxTokens)
	assert.Contains(t, rc.reqs[0].User, "내용: 덥다")
}

func TestStylesAndLanguages(t *testing.T) {
	names := make([]string, 0)
	for _, s := range Styles() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"아나운서", "친구", "선생님", "정치가", "코미디언"}, names)
	assert.Len(t, Languages(), 4)
	for _, l := range Languages() {
		_, ok := languageInstructions[l]
		assert.True(t, ok, l)
	}
}
