package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Clock 抽象时间来源，测试中可替换为假时钟
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RealClock 使用系统时间
var RealClock Clock = realClock{}

// Limiter 保证相邻两次调用之间至少间隔 interval。
// 预约在互斥锁内完成，并发调用者不会同时通过检查。
type Limiter struct {
	mu       sync.Mutex
	lim      *rate.Limiter
	clock    Clock
	interval time.Duration
}

// New 创建限速器；clock 为 nil 时使用系统时间
func New(interval time.Duration, clock Clock) *Limiter {
	if clock == nil {
		clock = RealClock
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Limiter{
		lim:      rate.NewLimiter(rate.Every(interval), 1),
		clock:    clock,
		interval: interval,
	}
}

// Interval 返回最小调用间隔
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Wait 阻塞到允许下一次调用为止；ctx 结束时撤销预约并返回 ctx.Err()
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	now := l.clock.Now()
	r := l.lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	l.mu.Unlock()

	if delay <= 0 {
		return nil
	}
	if err := l.clock.Sleep(ctx, delay); err != nil {
		l.mu.Lock()
		r.CancelAt(l.clock.Now())
		l.mu.Unlock()
		return err
	}
	return nil
}
