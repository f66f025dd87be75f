package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/LJTian/FeedbackHub/internal/pipeline"
)

// Runner 是一次完整的采集流水线
type Runner interface {
	Run(ctx context.Context) (pipeline.Stats, error)
}

type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	log    *zap.Logger
	ctx    context.Context

	// running 保证定时与手动触发的任务不会重叠
	running sync.Mutex
	wg      sync.WaitGroup
}

// New 上一轮尚未结束时跳过本轮，同一时间最多一个流水线在运行
func New(ctx context.Context, spec string, runner Runner, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{log.Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	s := &Scheduler{
		cron:   c,
		runner: runner,
		log:    log,
		ctx:    ctx,
	}

	if _, err := c.AddFunc(spec, func() { s.runOnce() }); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("entries", len(s.cron.Entries())))
}

// Stop 等待正在运行的任务结束，包括 RunAsync 启动的任务
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发采集；
// 已有任务在运行时直接跳过并返回 false
func (s *Scheduler) RunOnce() bool {
	s.wg.Add(1)
	defer s.wg.Done()
	return s.runOnce()
}

// RunAsync 在后台执行一次，Stop 会等待它结束
func (s *Scheduler) RunAsync() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runOnce()
	}()
}

// Next 返回下一次计划执行的时间
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runOnce() bool {
	if !s.running.TryLock() {
		s.log.Warn("collect job still running, skip")
		return false
	}
	defer s.running.Unlock()

	s.log.Info("start collect job...")
	stats, err := s.runner.Run(s.ctx)
	if err != nil {
		s.log.Error("collect job failed", zap.String("run_id", stats.RunID), zap.Error(err))
		return true
	}
	s.log.Info("collect job done",
		zap.String("run_id", stats.RunID),
		zap.Int("collected", stats.Collected),
		zap.Int("new", stats.New),
	)
	return true
}

// cronLogger 把 cron 内部日志转到 zap
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
