// Package app 根据配置组装各命令共用的组件。
package app

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/LJTian/FeedbackHub/internal/collector"
	"github.com/LJTian/FeedbackHub/internal/config"
	"github.com/LJTian/FeedbackHub/internal/pipeline"
	"github.com/LJTian/FeedbackHub/internal/storage"
)

func NewCollector(cfg *config.Config, log *zap.Logger) *collector.Collector {
	reddit := &collector.RedditFetcher{
		BaseURL: cfg.RedditBaseURL,
		Timeout: cfg.RequestTimeout,
	}
	hn := &collector.HackerNewsFetcher{
		BaseURL: cfg.HNBaseURL,
		Timeout: cfg.RequestTimeout,
	}
	return collector.New(log, reddit, hn)
}

// Stores 持有已启用的镜像存储；Lister 优先使用 Postgres，否则读累计文件
type Stores struct {
	Mirrors []storage.Mirror
	Lister  storage.Lister

	pg    *storage.Store
	mongo *storage.MongoMirror
}

// OpenStores 镜像存储连接失败只记录告警，不影响文件流程
func OpenStores(ctx context.Context, cfg *config.Config, log *zap.Logger) *Stores {
	s := &Stores{
		Lister: storage.NewFileStore(filepath.Join(cfg.DataDir, pipeline.CumulativeFile)),
	}

	if cfg.PostgresDSN != "" {
		pg, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr, log)
		if err != nil {
			log.Warn("postgres disabled", zap.Error(err))
		} else {
			s.pg = pg
			s.Mirrors = append(s.Mirrors, pg)
			s.Lister = pg
		}
	}

	if cfg.MongoURI != "" {
		m, err := storage.NewMongoMirror(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Warn("mongo disabled", zap.Error(err))
		} else {
			s.mongo = m
			s.Mirrors = append(s.Mirrors, m)
		}
	}
	return s
}

func (s *Stores) Close(ctx context.Context) {
	if s.pg != nil {
		_ = s.pg.Close()
	}
	if s.mongo != nil {
		_ = s.mongo.Close(ctx)
	}
}

func NewPipeline(cfg *config.Config, stores *Stores, log *zap.Logger) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Collector: NewCollector(cfg, log),
		DataDir:   cfg.DataDir,
		Limit:     cfg.Limit,
		Mirrors:   stores.Mirrors,
		Log:       log,
	}
}
