package collector

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/LJTian/FeedbackHub/internal/processor"
)

// isoLayout 与已有累计文件保持一致：UTC 偏移写成 +00:00，最多微秒
const isoLayout = "2006-01-02T15:04:05.999999-07:00"

// feedbackLine 是 JSONL 中一行的线上格式
type feedbackLine struct {
	ID          string               `json:"id"`
	Source      Source               `json:"source"`
	SourceURL   string               `json:"source_url"`
	Title       *string              `json:"title"`
	Text        string               `json:"text"`
	Author      *string              `json:"author"`
	Timestamp   string               `json:"timestamp"`
	Score       *int                 `json:"score"`
	NumComments *int                 `json:"num_comments"`
	Products    []processor.Product  `json:"products"`
	Categories  []processor.Category `json:"categories"`
	Sentiment   *string              `json:"sentiment"`
	CollectedAt string               `json:"collected_at"`
	Processed   bool                 `json:"processed"`
}

func (f Feedback) MarshalJSON() ([]byte, error) {
	return json.Marshal(feedbackLine{
		ID:          f.ID,
		Source:      f.Source,
		SourceURL:   f.SourceURL,
		Title:       f.Title,
		Text:        f.Text,
		Author:      f.Author,
		Timestamp:   formatISO(f.Timestamp),
		Score:       f.Score,
		NumComments: f.NumComments,
		Products:    f.Products,
		Categories:  f.Categories,
		Sentiment:   f.Sentiment,
		CollectedAt: formatISO(f.CollectedAt),
		Processed:   f.Processed,
	})
}

func (f *Feedback) UnmarshalJSON(data []byte) error {
	var line feedbackLine
	if err := json.Unmarshal(data, &line); err != nil {
		return err
	}
	ts, err := parseISO(line.Timestamp)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	collectedAt, err := parseISO(line.CollectedAt)
	if err != nil {
		return fmt.Errorf("collected_at: %w", err)
	}

	*f = Feedback{
		ID:          line.ID,
		Source:      line.Source,
		SourceURL:   line.SourceURL,
		Title:       line.Title,
		Text:        line.Text,
		Author:      line.Author,
		Timestamp:   ts,
		Score:       line.Score,
		NumComments: line.NumComments,
		Products:    processor.UniqueProducts(line.Products),
		Categories:  processor.UniqueCategories(line.Categories),
		Sentiment:   line.Sentiment,
		CollectedAt: collectedAt,
		Processed:   line.Processed,
	}
	return nil
}

func formatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// parseISO 兼容 RFC 3339 以及不带时区的 ISO 时间（按 UTC 处理）
func parseISO(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05.999999999", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// EncodeLine 将一条记录编码为不含换行的 JSON
func EncodeLine(f Feedback) ([]byte, error) {
	return json.Marshal(f)
}

// WriteJSONL 覆盖写入：每条记录一行
func WriteJSONL(path string, items []Feedback) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("collector: create %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, it := range items {
		b, err := EncodeLine(it)
		if err != nil {
			return fmt.Errorf("collector: encode %s: %w", it.ID, err)
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return fmt.Errorf("collector: write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("collector: write %s: %w", path, err)
	}
	return file.Close()
}

// ReadJSONL 读取全部记录，空行忽略，格式错误直接返回错误
func ReadJSONL(path string) ([]Feedback, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("collector: open %s: %w", path, err)
	}
	defer file.Close()

	var (
		out    []Feedback
		r      = bufio.NewReader(file)
		lineNo int
	)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				var f Feedback
				if err := json.Unmarshal(trimmed, &f); err != nil {
					return nil, fmt.Errorf("collector: %s line %d: %w", path, lineNo, err)
				}
				out = append(out, f)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("collector: read %s: %w", path, err)
		}
	}
	return out, nil
}
