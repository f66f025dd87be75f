package collector

import (
	"context"
	"time"

	"github.com/LJTian/FeedbackHub/internal/metrics"
	"go.uber.org/zap"
)

const progressTitleRunes = 60

// Collector 按顺序运行各个 Fetcher（不并发），并可选地写出 JSONL 快照
type Collector struct {
	Fetchers []Fetcher
	Log      *zap.Logger
}

// New 使用默认的 Reddit + Hacker News 数据源
func New(log *zap.Logger, reddit *RedditFetcher, hn *HackerNewsFetcher) *Collector {
	if reddit.Log == nil {
		reddit.Log = log
	}
	if hn.Log == nil {
		hn.Log = log
	}
	return &Collector{
		Fetchers: []Fetcher{reddit, hn},
		Log:      log,
	}
}

// Run 每个数据源各自受 limit 约束，结果按抓取顺序拼接；outputPath 非空时覆盖写入
func (c *Collector) Run(ctx context.Context, limit int, outputPath string) ([]Feedback, error) {
	log := loggerOrNop(c.Log)
	var all []Feedback

	for _, f := range c.Fetchers {
		name := f.Name()
		log.Info("scraping source", zap.String("fetcher", name))

		start := time.Now()
		count := 0
		for item := range f.Fetch(ctx, limit) {
			all = append(all, item)
			count++
			log.Info("collected",
				zap.Int("n", count),
				zap.String("product", string(item.FirstProduct())),
				zap.String("title", progressTitle(item)),
			)
		}
		metrics.FeedbackCollected.WithLabelValues(string(f.Source())).Add(float64(count))
		log.Info("source done",
			zap.String("fetcher", name),
			zap.Int("count", count),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	log.Info("total collected", zap.Int("count", len(all)))

	if outputPath != "" {
		if err := WriteJSONL(outputPath, all); err != nil {
			return all, err
		}
		log.Info("saved snapshot", zap.String("path", outputPath))
	}
	return all, nil
}

func progressTitle(f Feedback) string {
	if f.Title == nil {
		return "(no title)"
	}
	rs := []rune(*f.Title)
	if len(rs) > progressTitleRunes {
		rs = rs[:progressTitleRunes]
	}
	return string(rs) + "..."
}
