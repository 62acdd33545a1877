package storage

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/LJTian/TrendingNews/internal/models"
)

// Article 关系库中的文章记录，title 为自然键，后写入的同标题记录覆盖旧记录
type Article struct {
	ID        uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string            `gorm:"size:512;uniqueIndex;not null" json:"title"`
	URL       string            `gorm:"size:1024" json:"url"`
	Source    string            `gorm:"size:64;index" json:"source"`
	Keyword   string            `gorm:"size:128;index" json:"keyword"`
	ExtraData datatypes.JSONMap `json:"extraData"`
	Date      time.Time         `gorm:"index" json:"date"`
}

type Store struct {
	DB *gorm.DB
}

// NewStore 按 DSN 选择驱动：postgres:// 或 host= 开头用 PostgreSQL，其余视为 SQLite 文件路径
func NewStore(dsn string) (*Store, error) {
	db, err := gorm.Open(dialector(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, models.Wrap(models.ErrPersistence, "open store", err)
	}

	if err := db.AutoMigrate(&Article{}); err != nil {
		return nil, models.Wrap(models.ErrPersistence, "migrate store", err)
	}
	return &Store{DB: db}, nil
}

func dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.HasPrefix(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// Name 实现 pipeline 的 Sink
func (s *Store) Name() string {
	return "db"
}

// Save 以展示标题为键做 upsert
func (s *Store) Save(ctx context.Context, art models.EnrichedArticle) error {
	title := truncateRunesDB(toValidUTF8(art.Title()), 512)
	if title == "" {
		return models.Wrap(models.ErrPersistence, "save article", fmt.Errorf("empty title for %s", art.URL))
	}

	rec := &Article{
		Title:   title,
		URL:     truncateRunesDB(toValidUTF8(art.URL), 1024),
		Source:  art.Source,
		Keyword: truncateRunesDB(toValidUTF8(art.Keyword), 128),
		ExtraData: datatypes.JSONMap{
			"id":             art.ID,
			"original_title": toValidUTF8(art.OriginalTitle),
			"description":    toValidUTF8(art.Description),
		},
		Date: time.Now(),
	}

	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "title"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "source", "keyword", "extra_data", "date"}),
	}).Create(rec).Error
	if err != nil {
		log.Printf("store: save article %q failed: %v", title, err)
		return models.Wrap(models.ErrPersistence, "save article", err)
	}
	return nil
}

// ListArticles 按保存时间倒序返回
func (s *Store) ListArticles(ctx context.Context, limit int) ([]Article, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	var list []Article
	if err := s.DB.WithContext(ctx).Order("date DESC").Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, models.Wrap(models.ErrPersistence, "list articles", err)
	}
	return list, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// truncateRunesDB 按 rune 数截断字符串，确保不会超过数据库字段长度
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
