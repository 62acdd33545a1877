package enricher

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// boilerplateMarkers 段落中出现这些词即视为署名或广告，整段丢弃
var boilerplateMarkers = []string{"기사", "광고"}

// ExtractContent 提取页面中所有 <p> 段落的文本，过滤样板段落后以单个空格连接
func ExtractContent(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	var blocks []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s.Text())
	})
	return FilterBlocks(blocks), nil
}

// FilterBlocks 丢弃包含样板标记的段落和空段落，其余段落去掉首尾空白后按原顺序以单个空格连接
func FilterBlocks(blocks []string) string {
	kept := make([]string, 0, len(blocks))
	for _, b := range blocks {
		b = strings.TrimSpace(b)
		if b == "" || isBoilerplate(b) {
			continue
		}
		kept = append(kept, b)
	}
	return strings.Join(kept, " ")
}

func isBoilerplate(block string) bool {
	for _, m := range boilerplateMarkers {
		if strings.Contains(block, m) {
			return true
		}
	}
	return false
}
