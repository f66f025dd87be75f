package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/LJTian/FeedbackHub/internal/processor"
	"go.uber.org/zap"
)

const (
	hnBaseURL          = "https://hacker-news.firebaseio.com"
	hnItemPageURL      = "https://news.ycombinator.com/item?id="
	hnMaxStories       = 500
	hnMaxKids          = 10
	hnMaxResponseBytes = 1 << 20 // 1MB
	hnReplyTitleRunes  = 50
)

// HackerNewsFetcher 通过官方 Firebase API 抓取最新故事及其一级评论
type HackerNewsFetcher struct {
	BaseURL string
	Timeout time.Duration
	Log     *zap.Logger
}

func (h *HackerNewsFetcher) Name() string {
	return "hackernews_new"
}

func (h *HackerNewsFetcher) Source() Source {
	return SourceHackerNews
}

type hnItem struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Text        string  `json:"text"`
	By          *string `json:"by"`
	Time        int64   `json:"time"`
	Score       *int    `json:"score"`
	Descendants *int    `json:"descendants"`
	Kids        []int   `json:"kids"`
	Type        string  `json:"type"`
}

func (h *HackerNewsFetcher) Fetch(ctx context.Context, limit int) iter.Seq[Feedback] {
	return func(yield func(Feedback) bool) {
		log := loggerOrNop(h.Log).With(zap.String("fetcher", h.Name()))

		// 每次 Fetch 独占一个 client，退出时释放空闲连接
		client := &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   h.timeout(),
		}
		defer client.CloseIdleConnections()

		ids, err := h.newStories(ctx, client)
		if err != nil {
			// 列表拉取失败：放弃整个 HN 采集，但不影响其它来源
			log.Error("scrape hackernews failed", zap.Error(err))
			return
		}

		collected := 0
		for _, id := range ids {
			if collected >= limit || ctx.Err() != nil {
				return
			}

			story, err := h.getItem(ctx, client, id)
			if err != nil || story == nil {
				log.Debug("hackernews: story unavailable", zap.Int("id", id), zap.Error(err))
				continue
			}

			combined := story.Title + "\n\n" + story.Text
			if cls := processor.Classify(combined); cls.Relevant {
				if !yield(storyFeedback(story, cls)) {
					return
				}
				collected++
			}

			kids := story.Kids
			if len(kids) > hnMaxKids {
				kids = kids[:hnMaxKids]
			}
			for _, kid := range kids {
				if collected >= limit {
					break
				}
				comment, err := h.getItem(ctx, client, kid)
				if err != nil || comment == nil || comment.Text == "" {
					continue
				}
				// 评论只看自身文本，不拼接故事标题
				cls := processor.Classify(comment.Text)
				if !cls.Relevant {
					continue
				}
				if !yield(commentFeedback(comment, story.Title, cls)) {
					return
				}
				collected++
			}
		}
	}
}

func storyFeedback(story *hnItem, cls processor.Classification) Feedback {
	return Feedback{
		ID:          fmt.Sprintf("hn_story_%d", story.ID),
		Source:      SourceHackerNews,
		SourceURL:   fmt.Sprintf("%s%d", hnItemPageURL, story.ID),
		Title:       strPtr(story.Title),
		Text:        story.Text,
		Author:      story.By,
		Timestamp:   time.Unix(story.Time, 0).UTC(),
		Score:       story.Score,
		NumComments: story.Descendants,
		Products:    cls.Products,
		Categories:  cls.Categories,
		CollectedAt: nowUTC(),
	}
}

func commentFeedback(comment *hnItem, storyTitle string, cls processor.Classification) Feedback {
	return Feedback{
		ID:          fmt.Sprintf("hn_comment_%d", comment.ID),
		Source:      SourceHackerNews,
		SourceURL:   fmt.Sprintf("%s%d", hnItemPageURL, comment.ID),
		Title:       strPtr(ReplyTitle(storyTitle)),
		Text:        comment.Text,
		Author:      comment.By,
		Timestamp:   time.Unix(comment.Time, 0).UTC(),
		Products:    cls.Products,
		Categories:  cls.Categories,
		CollectedAt: nowUTC(),
	}
}

// ReplyTitle 为评论合成标题："Re: <故事标题前 50 个字符>..."
func ReplyTitle(storyTitle string) string {
	rs := []rune(storyTitle)
	if len(rs) > hnReplyTitleRunes {
		rs = rs[:hnReplyTitleRunes]
	}
	return "Re: " + string(rs) + "..."
}

func (h *HackerNewsFetcher) newStories(ctx context.Context, client *http.Client) ([]int, error) {
	url := h.baseURL() + "/v0/newstories.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("hackernews: build new stories request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hackernews: fetch new stories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hackernews: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, hnMaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("hackernews: read new stories: %w", err)
	}

	var ids []int
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("hackernews: unmarshal new stories: %w", err)
	}

	if len(ids) > hnMaxStories {
		ids = ids[:hnMaxStories]
	}
	return ids, nil
}

// getItem 对不存在的条目（API 返回 null）返回 nil, nil
func (h *HackerNewsFetcher) getItem(ctx context.Context, client *http.Client, id int) (*hnItem, error) {
	url := fmt.Sprintf("%s/v0/item/%d.json", h.baseURL(), id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var it *hnItem
	if err := json.NewDecoder(io.LimitReader(resp.Body, hnMaxResponseBytes)).Decode(&it); err != nil {
		return nil, err
	}
	return it, nil
}

func (h *HackerNewsFetcher) baseURL() string {
	if h.BaseURL == "" {
		return hnBaseURL
	}
	return strings.TrimRight(h.BaseURL, "/")
}

func (h *HackerNewsFetcher) timeout() time.Duration {
	if h.Timeout <= 0 {
		return DefaultTimeout
	}
	return h.Timeout
}
