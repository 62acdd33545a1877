package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/TrendingNews/internal/logger"
	"github.com/LJTian/TrendingNews/internal/models"
	"github.com/LJTian/TrendingNews/internal/pipeline"
)

type fakeRunner struct {
	calls    atomic.Int32
	finished atomic.Int32
	release  chan struct{}
	region   atomic.Value
}

func (f *fakeRunner) Trending(ctx context.Context, region string, count, limit int) (pipeline.TrendingNews, error) {
	f.calls.Add(1)
	defer f.finished.Add(1)
	f.region.Store(region)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return pipeline.TrendingNews{}, ctx.Err()
		}
	}
	return pipeline.TrendingNews{
		Keywords: []string{"날씨"},
		News:     map[string][]models.EnrichedArticle{"날씨": make([]models.EnrichedArticle, limit)},
	}, nil
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	_, err := New("not a cron spec", &fakeRunner{}, Job{}, logger.Discard())
	assert.Error(t, err)
}

func TestRunOnce(t *testing.T) {
	r := &fakeRunner{}
	s, err := New("*/5 * * * *", r, Job{Region: "KR", Count: 5, Limit: 3}, logger.Discard())
	require.NoError(t, err)

	res, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"날씨"}, res.Keywords)
	assert.Len(t, res.News["날씨"], 3)
	assert.Equal(t, "KR", r.region.Load())
}

func TestRunOnceRejectsOverlap(t *testing.T) {
	r := &fakeRunner{release: make(chan struct{})}
	s, err := New("*/5 * * * *", r, Job{Region: "KR", Count: 1, Limit: 1}, logger.Discard())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.RunOnce(context.Background())
	}()

	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	_, err = s.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(r.release)
	<-done
	_, err = s.RunOnce(context.Background())
	assert.NoError(t, err)
}

func TestStartRunsAfterDelayAndStopCancels(t *testing.T) {
	r := &fakeRunner{release: make(chan struct{})}
	s, err := New("0 0 1 1 *", r, Job{Region: "KR", Count: 1, Limit: 1}, logger.Discard())
	require.NoError(t, err)
	s.startupDelay = 10 * time.Millisecond

	s.Start()
	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	// Stop 返回时正在运行的一轮已被取消并退出
	assert.Equal(t, int32(1), r.finished.Load())
	assert.False(t, s.running.Load())
}

func TestStopBeforeFirstRunCancelsIt(t *testing.T) {
	r := &fakeRunner{}
	s, err := New("0 0 1 1 *", r, Job{Region: "KR", Count: 1, Limit: 1}, logger.Discard())
	require.NoError(t, err)
	s.startupDelay = 30 * time.Millisecond

	s.Start()
	s.Stop()
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, r.calls.Load())

	// 停止后到点的任务不再执行
	s.runScheduled()
	assert.Zero(t, r.calls.Load())
}
