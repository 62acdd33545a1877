package processor

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/LJTian/TrendingNews/internal/models"
)

// descriptionMaxRunes 摘要按 rune 截断的上限
const descriptionMaxRunes = 600

// Processor 在补全前清洗接口返回的条目：去掉 HTML 标记、反转义实体、生成 ID。
// 不做去重，同一新闻可能来自两个接口。
type Processor struct {
	policy *bluemonday.Policy
}

func NewProcessor() *Processor {
	return &Processor{policy: bluemonday.StrictPolicy()}
}

// Normalize 保持输入顺序，丢弃没有 URL 的条目
func (p *Processor) Normalize(items []models.RawArticle) []models.RawArticle {
	out := make([]models.RawArticle, 0, len(items))
	for _, it := range items {
		u := strings.TrimSpace(it.URL)
		if u == "" {
			continue
		}
		out = append(out, models.RawArticle{
			ID:          HashURL(u),
			Title:       p.cleanText(it.Title),
			URL:         u,
			Description: truncateRunes(p.cleanText(it.Description), descriptionMaxRunes),
			Source:      it.Source,
		})
	}
	return out
}

// cleanText 去掉标签后反转义，并把连续空白压缩为一个空格
func (p *Processor) cleanText(s string) string {
	s = p.policy.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// HashURL 以 URL 的 sha1 作为文章 ID
func HashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

// truncateRunes 按 rune 截断，超出时追加省略号
func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if limit <= 0 || len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}
