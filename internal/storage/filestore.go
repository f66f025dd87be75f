package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/LJTian/FeedbackHub/internal/collector"
	"github.com/LJTian/FeedbackHub/internal/processor"
)

const (
	defaultListLimit = 20
	maxListLimit     = 1000
)

// Query 列表查询条件，空字段表示不过滤
type Query struct {
	Source   string
	Product  string
	Category string
	Limit    int
}

func (q Query) limit() int {
	if q.Limit <= 0 || q.Limit > maxListLimit {
		return defaultListLimit
	}
	return q.Limit
}

func (q Query) match(f collector.Feedback) bool {
	if q.Source != "" && string(f.Source) != q.Source {
		return false
	}
	if q.Product != "" && !slices.Contains(f.Products, processor.Product(q.Product)) {
		return false
	}
	if q.Category != "" && !slices.Contains(f.Categories, processor.Category(q.Category)) {
		return false
	}
	return true
}

// Lister 提供按时间倒序的反馈列表
type Lister interface {
	ListFeedback(ctx context.Context, q Query) ([]collector.Feedback, error)
}

// FileStore 直接读取累计 JSONL 文件，适合未配置数据库时使用
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// ListFeedback 跳过格式错误的行，结果按 timestamp 倒序
func (s *FileStore) ListFeedback(_ context.Context, q Query) ([]collector.Feedback, error) {
	file, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []collector.Feedback{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", s.Path, err)
	}
	defer file.Close()

	list := make([]collector.Feedback, 0, 64)
	err = eachLine(file, func(line []byte) {
		var f collector.Feedback
		if json.Unmarshal(line, &f) != nil {
			return
		}
		if q.match(f) {
			list = append(list, f)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", s.Path, err)
	}

	slices.SortStableFunc(list, func(a, b collector.Feedback) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if n := q.limit(); len(list) > n {
		list = list[:n]
	}
	return list, nil
}
