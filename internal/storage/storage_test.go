package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/TrendingNews/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "news_articles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func article(title, url string) models.EnrichedArticle {
	return models.EnrichedArticle{
		ID:            "id-" + url,
		Keyword:       "날씨",
		OriginalTitle: "원래 " + title,
		DerivedTitle:  title,
		URL:           url,
		Source:        models.SourceNaver,
		FullContent:   "본문",
	}
}

func TestStoreUpsertByTitleKeepsLastURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, article("폭염 특보", "https://a/1")))
	require.NoError(t, s.Save(ctx, article("폭염 특보", "https://a/2")))
	require.NoError(t, s.Save(ctx, article("태풍 소식", "https://a/3")))

	list, err := s.ListArticles(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byTitle := map[string]Article{}
	for _, a := range list {
		byTitle[a.Title] = a
	}
	assert.Equal(t, "https://a/2", byTitle["폭염 특보"].URL)
	assert.Equal(t, "https://a/3", byTitle["태풍 소식"].URL)
	assert.Equal(t, "날씨", byTitle["태풍 소식"].Keyword)
}

func TestStoreUsesOriginalTitleWhenNoDerivedTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	art := article(models.NoTitleFound, "https://a/1")
	require.NoError(t, s.Save(ctx, art))

	list, err := s.ListArticles(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "원래 No title found", list[0].Title)
}

func TestStoreRejectsEmptyTitle(t *testing.T) {
	s := newTestStore(t)
	err := s.Save(context.Background(), models.EnrichedArticle{URL: "https://a/1"})
	assert.ErrorIs(t, err, models.ErrPersistence)
}

func TestDialectorPicksDriver(t *testing.T) {
	assert.Equal(t, "postgres", dialector("postgres://u:p@localhost/db").Name())
	assert.Equal(t, "postgres", dialector("host=localhost user=u dbname=db").Name())
	assert.Equal(t, "sqlite", dialector("news_articles.db").Name())
}

func TestSanitizeHelpers(t *testing.T) {
	assert.Equal(t, "a\uFFFDb", toValidUTF8("a\xffb"))
	assert.Equal(t, "가나", truncateRunesDB("  가나다  ", 2))
	assert.Equal(t, "", truncateRunesDB("abc", 0))
}

func TestSafeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"폭염 특보: 서울 35도!", "폭염 특보 서울 35도"},
		{"a/b\\c?.json  ", "abcjson"},
		{"   ", ""},
		{strings.Repeat("가", 60), strings.Repeat("가", 50)},
		{strings.Repeat("a", 49) + " b", strings.Repeat("a", 49)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeTitle(tt.in), "input %q", tt.in)
	}
}

func fixedArchive(t *testing.T) (*Archive, string) {
	t.Helper()
	dir := t.TempDir()
	a := NewArchive(dir)
	a.now = func() time.Time { return time.Date(2024, 7, 1, 10, 0, 0, 0, time.Local) }
	return a, filepath.Join(dir, "20240701")
}

func TestArchiveWritesIndentedJSON(t *testing.T) {
	a, folder := fixedArchive(t)

	path, err := a.Write(article("폭염 특보", "https://a/1"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(folder, "폭염 특보.json"), path)

	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(bs), "\n    \"id\"")
	assert.Contains(t, string(bs), "폭염 특보")

	var got models.EnrichedArticle
	require.NoError(t, json.Unmarshal(bs, &got))
	assert.Equal(t, "https://a/1", got.URL)
	assert.Equal(t, "본문", got.FullContent)
}

func TestArchiveCollisionDoesNotOverwriteOtherURL(t *testing.T) {
	a, folder := fixedArchive(t)

	p1, err := a.Write(article("같은 제목", "https://a/1"))
	require.NoError(t, err)
	p2, err := a.Write(article("같은 제목", "https://a/2"))
	require.NoError(t, err)
	p3, err := a.Write(article("같은 제목", "https://a/1"))
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
	assert.Equal(t, p1, p3)
	assert.Equal(t, filepath.Join(folder, "같은 제목-"+urlHash("https://a/2")[:8]+".json"), p2)

	entries, err := os.ReadDir(folder)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestArchiveUsesFallbackNameForSymbolOnlyTitle(t *testing.T) {
	a, folder := fixedArchive(t)
	art := article("!!!", "https://a/1")
	art.OriginalTitle = "???"

	path, err := a.Write(art)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(folder, "article.json"), path)
}

func TestCacheRoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewCache(mr.Addr(), time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	_, ok := c.Trends(ctx, "KR")
	assert.False(t, ok)

	c.SetTrends(ctx, "KR", []string{"날씨", "손흥민"})
	got, ok := c.Trends(ctx, "KR")
	require.True(t, ok)
	assert.Equal(t, []string{"날씨", "손흥민"}, got)

	c.SetNews(ctx, "날씨", []models.EnrichedArticle{article("폭염", "https://a/1")})
	news, ok := c.News(ctx, "날씨")
	require.True(t, ok)
	require.Len(t, news, 1)
	assert.Equal(t, "폭염", news[0].DerivedTitle)

	mr.FastForward(2 * time.Minute)
	_, ok = c.Trends(ctx, "KR")
	assert.False(t, ok)
}

func TestCacheUnavailableIsMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewCache(mr.Addr(), time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	mr.Close()

	c.SetTrends(context.Background(), "KR", []string{"x"})
	_, ok := c.Trends(context.Background(), "KR")
	assert.False(t, ok)

	var nilCache *Cache
	_, ok = nilCache.News(context.Background(), "x")
	assert.False(t, ok)
}
