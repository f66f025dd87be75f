package collector

import (
	"context"
	"iter"
	"time"

	"github.com/LJTian/FeedbackHub/internal/processor"
)

// Source 反馈来源平台
type Source string

const (
	SourceReddit     Source = "reddit"
	SourceHackerNews Source = "hackernews"
)

// Feedback 统一采集后的反馈记录，创建后不再修改
type Feedback struct {
	ID          string
	Source      Source
	SourceURL   string
	Title       *string
	Text        string
	Author      *string
	Timestamp   time.Time
	Score       *int
	NumComments *int
	Products    []processor.Product
	Categories  []processor.Category
	// 预留字段，目前始终为空
	Sentiment   *string
	CollectedAt time.Time
	Processed   bool
}

// Fetcher 抽象每一个数据源。Fetch 返回的序列是惰性的、有限的，且只能遍历一次。
type Fetcher interface {
	Name() string
	Source() Source
	Fetch(ctx context.Context, limit int) iter.Seq[Feedback]
}

// FirstProduct 用于进度日志
func (f Feedback) FirstProduct() processor.Product {
	if len(f.Products) == 0 {
		return processor.ProductUnknown
	}
	return f.Products[0]
}

// TitleOrEmpty 返回标题，缺失时为空串
func (f Feedback) TitleOrEmpty() string {
	if f.Title == nil {
		return ""
	}
	return *f.Title
}

// nowUTC 采集时间统一为 UTC 且精确到微秒，保证序列化往返一致
var nowUTC = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }
