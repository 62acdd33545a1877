package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/LJTian/TrendingNews/internal/models"
)

const indexTitleWidth = 48

// Report 一份播报稿及其引用的文章
type Report struct {
	Presenter string
	Style     string
	Script    string
	Articles  []models.EnrichedArticle
}

type Exporter interface {
	Export(ctx context.Context, r Report) (string, error)
}

// MarkdownExporter 写到 <dir>/<YYYYMMDD>/<日期>_<主持人>_<风格>_<关键词>.md
type MarkdownExporter struct {
	dir string
	now func() time.Time
}

func NewMarkdownExporter(dir string) *MarkdownExporter {
	return &MarkdownExporter{dir: dir, now: time.Now}
}

func (m *MarkdownExporter) Export(ctx context.Context, r Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	date := m.now().Format("20060102")
	folder := filepath.Join(m.dir, date)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", models.Wrap(models.ErrPersistence, "export report", err)
	}

	parts := []string{date, fileSafe(r.Presenter), fileSafe(r.Style)}
	parts = append(parts, Keywords(r.Script, 3)...)
	path := filepath.Join(folder, strings.Join(parts, "_")+".md")

	if err := os.WriteFile(path, []byte(Render(r, date)), 0o644); err != nil {
		return "", models.Wrap(models.ErrPersistence, "export report", err)
	}
	return path, nil
}

// Render 生成 Markdown 文本
func Render(r Report, date string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# 뉴스 리포트 - %s\n\n", date)
	fmt.Fprintf(&sb, "- 진행자: %s\n", r.Presenter)
	fmt.Fprintf(&sb, "- 스타일: %s\n\n", r.Style)

	sb.WriteString("## 생성된 스크립트\n\n")
	sb.WriteString(strings.TrimSpace(r.Script))
	sb.WriteString("\n\n")

	if len(r.Articles) == 0 {
		return sb.String()
	}

	sb.WriteString("## 기사 목록\n\n")
	rows := [][]string{{"#", "제목", "출처"}}
	for i, a := range r.Articles {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			runewidth.Truncate(tableCell(a.Title()), indexTitleWidth, "…"),
			tableCell(a.Source),
		})
	}
	for _, line := range alignTable(rows) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	for i, a := range r.Articles {
		fmt.Fprintf(&sb, "\n## 뉴스 기사 %d\n\n", i+1)
		fmt.Fprintf(&sb, "### 제목: %s\n\n", a.Title())
		fmt.Fprintf(&sb, "URL: %s\n\n", a.URL)
		sb.WriteString("#### 전체 내용:\n\n")
		sb.WriteString(a.FullContent)
		sb.WriteString("\n")
	}
	return sb.String()
}

// alignTable 按显示宽度补齐每一列，第一行为表头
func alignTable(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	line := func(cells []string) string {
		var sb strings.Builder
		sb.WriteString("|")
		for i, w := range widths {
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(cells[i], w))
			sb.WriteString(" |")
		}
		return sb.String()
	}

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}

	out := []string{line(rows[0]), line(sep)}
	for _, row := range rows[1:] {
		out = append(out, line(row))
	}
	return out
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	return strings.Join(strings.Fields(s), " ")
}

func fileSafe(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, s)
}
