package models

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsKindAndCause(t *testing.T) {
	err := Wrap(ErrTransport, "naver", context.DeadlineExceeded)

	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, ErrProvider))
	assert.Equal(t, "transport", KindOf(fmt.Errorf("outer: %w", err)))
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{Wrap(ErrProvider, "newsapi", nil), "provider"},
		{Wrap(ErrModel, "openai", errors.New("quota")), "model"},
		{Wrap(ErrExtraction, "scrape", nil), "extraction"},
		{Wrap(ErrPersistence, "archive", nil), "persistence"},
		{errors.New("boom"), "unknown"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, KindOf(c.err))
	}
}

func TestEnrichedArticleTitleFallsBackToOriginal(t *testing.T) {
	a := NewEnriched(RawArticle{Title: "원래 제목", URL: "https://example.com/1"})
	assert.Equal(t, "원래 제목", a.Title())

	a.DerivedTitle = NoTitleFound
	assert.Equal(t, "원래 제목", a.Title())

	a.DerivedTitle = "모델 제목"
	assert.Equal(t, "모델 제목", a.Title())
	assert.Equal(t, "원래 제목", a.OriginalTitle)
}

func TestEnrichedArticleFailClearsContent(t *testing.T) {
	a := NewEnriched(RawArticle{Title: "t", URL: "u"})
	a.FullContent = "something"
	a.Fail(Wrap(ErrModel, "classify", errors.New("quota exceeded")))

	assert.True(t, a.Failed())
	assert.Empty(t, a.FullContent)
	assert.True(t, errors.Is(a.Err, ErrModel))
	assert.Contains(t, a.Error, "quota exceeded")
}
