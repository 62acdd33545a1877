package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/TrendingNews/internal/api"
	"github.com/LJTian/TrendingNews/internal/app"
	"github.com/LJTian/TrendingNews/internal/config"
	"github.com/LJTian/TrendingNews/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}
	defer a.Close()

	// 定时刷新热门关键词及其新闻，结果写入缓存和存储
	s, err := scheduler.New(cfg.CronSpec, a.Aggregator, scheduler.Job{
		Region: cfg.Region,
		Count:  cfg.TrendCount,
		Limit:  cfg.ArticleLimit,
	}, a.Log)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()
	defer s.Stop()

	r := gin.Default()
	// 若配置了全局访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(api.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	api.NewServer(api.Deps{
		News:       a.Aggregator,
		Articles:   a.Store,
		Generator:  a.Generator,
		Validator:  a.Validator,
		Summarizer: a.Summarizer,
		Exporter:   a.Exporter,
		Defaults: api.Defaults{
			Region:     cfg.Region,
			TrendCount: cfg.TrendCount,
			Limit:      cfg.ArticleLimit,
		},
	}).RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("starting api server at %s ...", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server exit: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down api server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("warn: server shutdown: %v", err)
	}
}
