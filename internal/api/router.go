package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LJTian/TrendingNews/internal/models"
	"github.com/LJTian/TrendingNews/internal/pipeline"
	"github.com/LJTian/TrendingNews/internal/report"
	"github.com/LJTian/TrendingNews/internal/script"
	"github.com/LJTian/TrendingNews/internal/storage"
)

// NewsService 新闻聚合能力，由 pipeline.Aggregator 实现
type NewsService interface {
	Keywords(ctx context.Context, region string, count int) []string
	Trending(ctx context.Context, region string, count, limit int) (pipeline.TrendingNews, error)
	NewsByKeyword(ctx context.Context, keyword string, limit int) ([]models.EnrichedArticle, error)
	More(ctx context.Context, keyword string, page, start, pageSize int) ([]models.EnrichedArticle, error)
}

type ArticleLister interface {
	ListArticles(ctx context.Context, limit int) ([]storage.Article, error)
}

type ScriptWriter interface {
	Generate(ctx context.Context, articles []models.EnrichedArticle, opts script.Options) (string, error)
}

type ScriptChecker interface {
	Validate(ctx context.Context, text string, articles []models.EnrichedArticle) (string, error)
}

type ArticleSummarizer interface {
	SummarizeAll(ctx context.Context, articles []models.EnrichedArticle) ([]script.Summary, error)
}

// Defaults 请求未带参数时使用的默认值
type Defaults struct {
	Region     string
	TrendCount int
	Limit      int
}

type Deps struct {
	News       NewsService
	Articles   ArticleLister
	Generator  ScriptWriter
	Validator  ScriptChecker
	Summarizer ArticleSummarizer
	Exporter   report.Exporter
	Defaults   Defaults
}

type Server struct {
	Deps
}

func NewServer(d Deps) *Server {
	if d.Defaults.Region == "" {
		d.Defaults.Region = "KR"
	}
	if d.Defaults.TrendCount <= 0 {
		d.Defaults.TrendCount = 10
	}
	if d.Defaults.Limit <= 0 {
		d.Defaults.Limit = 10
	}
	return &Server{Deps: d}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/trends", s.listTrends)
		v1.GET("/news", s.newsByKeyword)
		v1.GET("/news/trending", s.trendingNews)
		v1.GET("/news/more", s.moreNews)
		v1.GET("/articles", s.listArticles)
		v1.GET("/scripts/styles", s.listStyles)
		v1.POST("/scripts", s.createScript)
		v1.POST("/summaries", s.createSummaries)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listTrends(c *gin.Context) {
	region := strings.ToUpper(c.DefaultQuery("region", s.Defaults.Region))
	count := queryInt(c, "count", s.Defaults.TrendCount, 50)

	ok(c, gin.H{
		"region":   region,
		"keywords": s.News.Keywords(c.Request.Context(), region, count),
	})
}

func (s *Server) newsByKeyword(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		fail(c, http.StatusBadRequest, "invalid_argument", "keyword is required")
		return
	}
	limit := queryInt(c, "limit", s.Defaults.Limit, 100)

	items, err := s.News.NewsByKeyword(c.Request.Context(), keyword, limit)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, gin.H{"keyword": keyword, "articles": nonNil(items)})
}

func (s *Server) trendingNews(c *gin.Context) {
	region := strings.ToUpper(c.DefaultQuery("region", s.Defaults.Region))
	count := queryInt(c, "count", s.Defaults.TrendCount, 50)
	limit := queryInt(c, "limit", s.Defaults.Limit, 100)

	res, err := s.News.Trending(c.Request.Context(), region, count, limit)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, res)
}

func (s *Server) moreNews(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		fail(c, http.StatusBadRequest, "invalid_argument", "keyword is required")
		return
	}
	page := queryInt(c, "page", 2, 100)
	pageSize := queryInt(c, "page_size", s.Defaults.Limit, 100)
	start := queryInt(c, "start", (page-1)*pageSize+1, 1000)

	items, err := s.News.More(c.Request.Context(), keyword, page, start, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, gin.H{"keyword": keyword, "page": page, "start": start, "articles": nonNil(items)})
}

func (s *Server) listArticles(c *gin.Context) {
	limit := queryInt(c, "limit", 50, 1000)
	items, err := s.Articles.ListArticles(c.Request.Context(), limit)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, items)
}

func (s *Server) listStyles(c *gin.Context) {
	ok(c, gin.H{
		"styles":    script.Styles(),
		"languages": script.Languages(),
	})
}

type scriptRequest struct {
	Articles  []models.EnrichedArticle `json:"articles"`
	Style     string                   `json:"style"`
	Presenter string                   `json:"presenter"`
	Language  string                   `json:"language"`
	Validate  bool                     `json:"validate"`
	Export    bool                     `json:"export"`
}

type scriptResponse struct {
	Script     string `json:"script"`
	Validated  bool   `json:"validated"`
	ReportPath string `json:"reportPath,omitempty"`
}

func (s *Server) createScript(c *gin.Context) {
	var req scriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return
	}
	if len(req.Articles) == 0 {
		fail(c, http.StatusBadRequest, "invalid_argument", "articles are required")
		return
	}

	ctx := c.Request.Context()
	opts := script.Options{Style: req.Style, Presenter: req.Presenter, Language: req.Language}
	text, err := s.Generator.Generate(ctx, req.Articles, opts)
	if err != nil {
		failErr(c, err)
		return
	}

	resp := scriptResponse{Script: text}
	if req.Validate && s.Validator != nil {
		checked, err := s.Validator.Validate(ctx, text, req.Articles)
		if err != nil {
			failErr(c, err)
			return
		}
		resp.Script = checked
		resp.Validated = true
	}

	if req.Export && s.Exporter != nil {
		presenter := req.Presenter
		if strings.TrimSpace(presenter) == "" {
			presenter = script.DefaultPresenter
		}
		style := req.Style
		if strings.TrimSpace(style) == "" {
			style = script.DefaultStyle
		}
		path, err := s.Exporter.Export(ctx, report.Report{
			Presenter: presenter,
			Style:     style,
			Script:    resp.Script,
			Articles:  req.Articles,
		})
		if err != nil {
			failErr(c, err)
			return
		}
		resp.ReportPath = path
	}

	ok(c, resp)
}

type summariesRequest struct {
	Articles []models.EnrichedArticle `json:"articles"`
}

func (s *Server) createSummaries(c *gin.Context) {
	var req summariesRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Articles) == 0 {
		fail(c, http.StatusBadRequest, "invalid_argument", "articles are required")
		return
	}
	items, err := s.Summarizer.SummarizeAll(c.Request.Context(), req.Articles)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, items)
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    data,
	})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

// failErr 按错误分类映射 HTTP 状态码
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, script.ErrUnknownStyle), errors.Is(err, script.ErrUnknownLanguage), errors.Is(err, script.ErrNoArticles):
		fail(c, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusGatewayTimeout, "timeout", "request timed out")
	case errors.Is(err, context.Canceled):
		fail(c, 499, "canceled", "request canceled")
	case errors.Is(err, models.ErrModel):
		fail(c, http.StatusBadGateway, "model_error", "language model unavailable")
	case errors.Is(err, models.ErrTransport), errors.Is(err, models.ErrProvider):
		fail(c, http.StatusBadGateway, "upstream_error", "upstream provider unavailable")
	default:
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func queryInt(c *gin.Context, key string, def, max int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

func nonNil(items []models.EnrichedArticle) []models.EnrichedArticle {
	if items == nil {
		return []models.EnrichedArticle{}
	}
	return items
}

// BasicAuth 为整个站点增加一个简单的 Basic Auth 访问密码。
// /health 与 /metrics 不做认证，便于健康检查和采集。
func BasicAuth(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		if p := c.Request.URL.Path; p == "/health" || p == "/metrics" {
			c.Next()
			return
		}
		u, p, authed := c.Request.BasicAuth()
		if !authed ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
