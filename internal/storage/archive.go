package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/LJTian/TrendingNews/internal/models"
)

const safeTitleMaxRunes = 50

// Archive 把补全后的文章按日期写成 JSON 文件：<dir>/<YYYYMMDD>/<标题>.json
type Archive struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

func NewArchive(dir string) *Archive {
	return &Archive{dir: dir, now: time.Now}
}

func (a *Archive) Name() string {
	return "archive"
}

func (a *Archive) Save(ctx context.Context, art models.EnrichedArticle) error {
	_, err := a.Write(art)
	return err
}

// Write 返回写入的文件路径。同名文件属于同一 URL 时原地覆盖，
// 属于其他 URL 时在文件名后加 URL 哈希前缀
func (a *Archive) Write(art models.EnrichedArticle) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	folder := filepath.Join(a.dir, a.now().Format("20060102"))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", models.Wrap(models.ErrPersistence, "archive", err)
	}

	safe := SafeTitle(art.Title())
	if safe == "" {
		safe = "article"
	}
	path := filepath.Join(folder, safe+".json")

	owner, exists, err := archivedURL(path)
	if err != nil {
		return "", models.Wrap(models.ErrPersistence, "archive", err)
	}
	if exists && owner != art.URL {
		path = filepath.Join(folder, fmt.Sprintf("%s-%s.json", safe, urlHash(art.URL)[:8]))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(art); err != nil {
		return "", models.Wrap(models.ErrPersistence, "archive", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", models.Wrap(models.ErrPersistence, "archive", err)
	}
	return path, nil
}

// archivedURL 读取已有文件中的 url；无法解析的文件返回空 url，视为其他文章
func archivedURL(path string) (string, bool, error) {
	bs, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var existing struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(bs, &existing)
	return existing.URL, true, nil
}

// SafeTitle 只保留字母、数字和空格，去掉尾部空白后截断到 50 个字符
func SafeTitle(title string) string {
	var sb strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			sb.WriteRune(r)
		}
	}
	s := strings.TrimRight(sb.String(), " ")
	rs := []rune(s)
	if len(rs) > safeTitleMaxRunes {
		s = strings.TrimRight(string(rs[:safeTitleMaxRunes]), " ")
	}
	return s
}

func urlHash(url string) string {
	h := sha1.Sum([]byte(url))
	return hex.EncodeToString(h[:])
}
