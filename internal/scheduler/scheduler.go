package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/LJTian/TrendingNews/internal/pipeline"
)

// ErrAlreadyRunning 上一轮尚未结束时再次触发
var ErrAlreadyRunning = errors.New("scheduler: a round is already running")

// Runner 执行一轮热门新闻聚合
type Runner interface {
	Trending(ctx context.Context, region string, count, limit int) (pipeline.TrendingNews, error)
}

// Job 每轮聚合的参数
type Job struct {
	Region  string
	Count   int
	Limit   int
	Timeout time.Duration
}

type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	job    Job
	log    *slog.Logger

	startupDelay time.Duration
	running      atomic.Bool
	baseCtx      context.Context
	cancel       context.CancelFunc

	mu       sync.Mutex
	stopped  bool
	firstRun *time.Timer
	inflight sync.WaitGroup
}

func New(spec string, runner Runner, job Job, log *slog.Logger) (*Scheduler, error) {
	if job.Timeout <= 0 {
		job.Timeout = 10 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New()

	s := &Scheduler{
		cron:         c,
		runner:       runner,
		job:          job,
		log:          log,
		startupDelay: 15 * time.Second,
		baseCtx:      ctx,
		cancel:       cancel,
	}

	_, err := c.AddFunc(spec, s.runScheduled)
	if err != nil {
		cancel()
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟执行首轮，避免与服务启动争抢资源
	s.mu.Lock()
	s.firstRun = time.AfterFunc(s.startupDelay, s.runScheduled)
	s.mu.Unlock()
}

// Stop 停止调度并取消正在运行的一轮，等待其退出
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	if s.firstRun != nil {
		s.firstRun.Stop()
	}
	s.mu.Unlock()

	s.cancel()
	<-s.cron.Stop().Done()
	s.inflight.Wait()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发；与定时任务互斥
func (s *Scheduler) RunOnce(ctx context.Context) (pipeline.TrendingNews, error) {
	if !s.running.CompareAndSwap(false, true) {
		return pipeline.TrendingNews{}, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.job.Timeout)
	defer cancel()

	s.log.Info("start trending job", "region", s.job.Region, "count", s.job.Count, "limit", s.job.Limit)
	start := time.Now()
	res, err := s.runner.Trending(ctx, s.job.Region, s.job.Count, s.job.Limit)
	if err != nil {
		s.log.Error("trending job failed", "error", err)
		return res, err
	}

	articles := 0
	for _, list := range res.News {
		articles += len(list)
	}
	s.log.Info("trending job done", "keywords", len(res.Keywords), "articles", articles, "elapsed", time.Since(start).String())
	return res, nil
}

func (s *Scheduler) runScheduled() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	if _, err := s.RunOnce(s.baseCtx); errors.Is(err, ErrAlreadyRunning) {
		s.log.Warn("skip trending job: previous round still running")
	}
}
