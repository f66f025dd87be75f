// Package pipeline 串起一次完整的每日任务：采集 -> 追加累计文件 -> 镜像存储 -> 生成页面。
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LJTian/FeedbackHub/internal/collector"
	"github.com/LJTian/FeedbackHub/internal/metrics"
	"github.com/LJTian/FeedbackHub/internal/render"
	"github.com/LJTian/FeedbackHub/internal/storage"
)

const (
	CumulativeFile = "feedback_all.jsonl"
	IndexFile      = "index.html"
)

// Stats 一次运行的结果
type Stats struct {
	RunID          string
	Collected      int
	New            int
	Skipped        int
	TotalLines     int
	SnapshotPath   string
	CumulativePath string
	IndexPath      string
	TodayPath      string
}

type Pipeline struct {
	Collector *collector.Collector
	DataDir   string
	Limit     int
	// Mirrors 接收每次新追加的记录，失败只记日志
	Mirrors []storage.Mirror
	Log     *zap.Logger
}

var now = time.Now

// Run 不支持对同一数据目录并发执行
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	start := now()
	stats := Stats{
		RunID:          uuid.NewString(),
		SnapshotPath:   filepath.Join(p.DataDir, "feedback_"+start.Format("2006-01-02_15-04-05")+".jsonl"),
		CumulativePath: filepath.Join(p.DataDir, CumulativeFile),
	}
	log = log.With(zap.String("run_id", stats.RunID))
	log.Info("daily collection started", zap.String("date", start.Format("2006-01-02")), zap.Int("limit", p.Limit))

	stats, err := p.run(ctx, log, start, stats)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		log.Error("daily collection failed", zap.Error(err))
		return stats, err
	}
	if stats.Collected == 0 {
		metrics.PipelineRuns.WithLabelValues("empty").Inc()
		return stats, nil
	}

	metrics.PipelineRuns.WithLabelValues("success").Inc()
	metrics.PipelineLastSuccess.SetToCurrentTime()
	metrics.CumulativeRecords.Set(float64(stats.TotalLines))
	log.Info("collection complete",
		zap.Int("total_all_time", stats.TotalLines),
		zap.Int("new_today", stats.New),
		zap.String("snapshot", stats.SnapshotPath),
		zap.String("cumulative", stats.CumulativePath),
		zap.String("index", stats.IndexPath),
		zap.Duration("elapsed", time.Since(start)),
	)
	return stats, nil
}

func (p *Pipeline) run(ctx context.Context, log *zap.Logger, start time.Time, stats Stats) (Stats, error) {
	if err := os.MkdirAll(p.DataDir, 0o755); err != nil {
		return stats, fmt.Errorf("pipeline: create %s: %w", p.DataDir, err)
	}

	items, err := p.Collector.Run(ctx, p.Limit, stats.SnapshotPath)
	if err != nil {
		return stats, fmt.Errorf("pipeline: collect: %w", err)
	}
	stats.Collected = len(items)
	if len(items) == 0 {
		log.Warn("no feedback collected today")
		return stats, nil
	}

	res, err := storage.Merge(stats.CumulativePath, items)
	if err != nil {
		return stats, fmt.Errorf("pipeline: merge: %w", err)
	}
	stats.New, stats.Skipped = res.New, res.Skipped
	metrics.FeedbackAppended.Add(float64(res.New))
	metrics.FeedbackDuplicates.Add(float64(res.Skipped))
	log.Info("appended to cumulative file", zap.Int("new", res.New), zap.Int("skipped", res.Skipped))

	p.mirror(ctx, log, res.Appended)

	stats.IndexPath = filepath.Join(p.DataDir, IndexFile)
	if err := render.Render(stats.CumulativePath, stats.IndexPath, render.Options{}); err != nil {
		return stats, fmt.Errorf("pipeline: render index: %w", err)
	}
	stats.TodayPath = filepath.Join(p.DataDir, "today_"+start.Format("2006-01-02")+".html")
	if err := render.Render(stats.SnapshotPath, stats.TodayPath, render.Options{}); err != nil {
		return stats, fmt.Errorf("pipeline: render today: %w", err)
	}

	if stats.TotalLines, err = storage.CountLines(stats.CumulativePath); err != nil {
		return stats, fmt.Errorf("pipeline: count: %w", err)
	}
	return stats, nil
}

func (p *Pipeline) mirror(ctx context.Context, log *zap.Logger, items []collector.Feedback) {
	if len(items) == 0 {
		return
	}
	for _, m := range p.Mirrors {
		if err := m.SaveBatch(ctx, items); err != nil {
			log.Warn("mirror save failed", zap.String("mirror", m.Name()), zap.Error(err))
			continue
		}
		log.Info("mirror saved", zap.String("mirror", m.Name()), zap.Int("count", len(items)))
	}
}
