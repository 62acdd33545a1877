package storage

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LJTian/TrendingNews/internal/models"
)

// Cache 用 Redis 缓存热门关键词与按关键词聚合的新闻；不可用时所有读取视为未命中
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(addr string, ttl time.Duration) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}

	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func trendsKey(region string) string {
	return "trends:" + region
}

func newsKey(keyword string) string {
	return "news:keyword:" + keyword
}

func (c *Cache) Trends(ctx context.Context, region string) ([]string, bool) {
	var out []string
	if !c.get(ctx, trendsKey(region), &out) {
		return nil, false
	}
	return out, true
}

func (c *Cache) SetTrends(ctx context.Context, region string, keywords []string) {
	if len(keywords) == 0 {
		return
	}
	c.set(ctx, trendsKey(region), keywords)
}

func (c *Cache) News(ctx context.Context, keyword string) ([]models.EnrichedArticle, bool) {
	var out []models.EnrichedArticle
	if !c.get(ctx, newsKey(keyword), &out) {
		return nil, false
	}
	return out, true
}

func (c *Cache) SetNews(ctx context.Context, keyword string, articles []models.EnrichedArticle) {
	if len(articles) == 0 {
		return
	}
	c.set(ctx, newsKey(keyword), articles)
}

func (c *Cache) get(ctx context.Context, key string, out any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	bs, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("warn: redis get %s: %v", key, err)
		}
		return false
	}
	return json.Unmarshal(bs, out) == nil
}

func (c *Cache) set(ctx context.Context, key string, v any) {
	if c == nil || c.rdb == nil {
		return
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, bs, c.ttl).Err(); err != nil {
		log.Printf("warn: redis set %s: %v", key, err)
	}
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
