package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/LJTian/FeedbackHub/internal/collector"
	"github.com/LJTian/FeedbackHub/internal/processor"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// 列表缓存 5 分钟；不做主动失效，依赖 TTL 自然过期
const listCacheTTL = 5 * time.Minute

// Mirror 接收每次新追加的记录（累计文件之外的副本）
type Mirror interface {
	Name() string
	SaveBatch(ctx context.Context, items []collector.Feedback) error
}

// FeedbackRow 是 feedback 表的一行
type FeedbackRow struct {
	ID          string                      `gorm:"primaryKey;size:64" json:"id"`
	Source      string                      `gorm:"size:32;index" json:"source"`
	SourceURL   string                      `gorm:"size:1024" json:"source_url"`
	Title       *string                     `gorm:"size:1024" json:"title"`
	Text        string                      `gorm:"type:text" json:"text"`
	Author      *string                     `gorm:"size:128" json:"author"`
	Timestamp   time.Time                   `gorm:"index" json:"timestamp"`
	Score       *int                        `json:"score"`
	NumComments *int                        `json:"num_comments"`
	Products    datatypes.JSONSlice[string] `json:"products"`
	Categories  datatypes.JSONSlice[string] `json:"categories"`
	Sentiment   *string                     `gorm:"size:32" json:"sentiment"`
	CollectedAt time.Time                   `json:"collected_at"`
	Processed   bool                        `gorm:"index" json:"processed"`

	CreatedAt time.Time `json:"-"`
}

func (FeedbackRow) TableName() string {
	return "feedback"
}

// Store 使用 Postgres 保存反馈副本，Redis 缓存列表查询
type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
	Log   *zap.Logger
}

// NewStore redisAddr 为空时不启用缓存
func NewStore(dsn, redisAddr string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}

	if err := db.AutoMigrate(&FeedbackRow{}); err != nil {
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}

	s := &Store{DB: db, Log: log}
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: redisAddr,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis ping failed", zap.String("addr", redisAddr), zap.Error(err))
		}
		s.Redis = rdb
	}
	return s, nil
}

func (s *Store) Name() string {
	return "postgres"
}

// Close 关闭数据库连接与 Redis 客户端
func (s *Store) Close() error {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// SaveBatch 以 id 作为幂等键，已存在的记录保持不变
func (s *Store) SaveBatch(ctx context.Context, items []collector.Feedback) error {
	for _, it := range items {
		row := toRow(it)
		if err := s.DB.WithContext(ctx).Where("id = ?", row.ID).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("storage: save %s: %w", it.ID, err)
		}
	}
	return nil
}

// ListFeedback 按来源/产品/分类过滤，按 timestamp 倒序，结果缓存在 Redis
func (s *Store) ListFeedback(ctx context.Context, q Query) ([]collector.Feedback, error) {
	limit := q.limit()
	cacheKey := fmt.Sprintf("feedback:list:%s:%s:%s:%d", q.Source, q.Product, q.Category, limit)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []collector.Feedback
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	db := s.DB.WithContext(ctx).Model(&FeedbackRow{})
	if q.Source != "" {
		db = db.Where("source = ?", q.Source)
	}
	if q.Product != "" {
		db = db.Where("products @> ?::jsonb", jsonArray(q.Product))
	}
	if q.Category != "" {
		db = db.Where("categories @> ?::jsonb", jsonArray(q.Category))
	}

	var rows []FeedbackRow
	if err := db.Order("timestamp DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("storage: list feedback: %w", err)
	}

	list := make([]collector.Feedback, 0, len(rows))
	for _, r := range rows {
		list = append(list, fromRow(r))
	}

	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err(); err != nil {
				s.Log.Debug("redis set failed", zap.String("key", cacheKey), zap.Error(err))
			}
		}
	}
	return list, nil
}

func jsonArray(v string) string {
	b, _ := json.Marshal([]string{v})
	return string(b)
}

func toRow(f collector.Feedback) FeedbackRow {
	var title, author *string
	if f.Title != nil {
		t := toValidUTF8(*f.Title)
		title = &t
	}
	if f.Author != nil {
		a := toValidUTF8(*f.Author)
		author = &a
	}

	products := make([]string, 0, len(f.Products))
	for _, p := range f.Products {
		products = append(products, string(p))
	}
	categories := make([]string, 0, len(f.Categories))
	for _, c := range f.Categories {
		categories = append(categories, string(c))
	}

	return FeedbackRow{
		ID:          f.ID,
		Source:      string(f.Source),
		SourceURL:   f.SourceURL,
		Title:       title,
		Text:        toValidUTF8(f.Text),
		Author:      author,
		Timestamp:   f.Timestamp,
		Score:       f.Score,
		NumComments: f.NumComments,
		Products:    datatypes.NewJSONSlice(products),
		Categories:  datatypes.NewJSONSlice(categories),
		Sentiment:   f.Sentiment,
		CollectedAt: f.CollectedAt,
		Processed:   f.Processed,
	}
}

func fromRow(r FeedbackRow) collector.Feedback {
	products := make([]processor.Product, 0, len(r.Products))
	for _, p := range r.Products {
		products = append(products, processor.Product(p))
	}
	categories := make([]processor.Category, 0, len(r.Categories))
	for _, c := range r.Categories {
		categories = append(categories, processor.Category(c))
	}

	return collector.Feedback{
		ID:          r.ID,
		Source:      collector.Source(r.Source),
		SourceURL:   r.SourceURL,
		Title:       r.Title,
		Text:        r.Text,
		Author:      r.Author,
		Timestamp:   r.Timestamp.UTC(),
		Score:       r.Score,
		NumComments: r.NumComments,
		Products:    processor.UniqueProducts(products),
		Categories:  processor.UniqueCategories(categories),
		Sentiment:   r.Sentiment,
		CollectedAt: r.CollectedAt.UTC(),
		Processed:   r.Processed,
	}
}
