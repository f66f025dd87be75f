package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/LJTian/FeedbackHub/internal/processor"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const (
	RedditBaseURL   = "https://www.reddit.com"
	DefaultUA       = "AI Product Feedback Collector v1.0"
	DefaultTimeout  = 30 * time.Second
	redditPermaHost = "https://reddit.com"
)

// DefaultSubreddits 默认轮询的社区
var DefaultSubreddits = []string{
	"artificial", "ChatGPT", "ClaudeAI", "OpenAI",
	"LocalLLaMA", "ArtificialIntelligence", "MachineLearning", "singularity",
}

// RedditFetcher 通过 /r/<sub>/new.json 抓取各社区最新帖子
type RedditFetcher struct {
	BaseURL    string
	Subreddits []string
	UserAgent  string
	Timeout    time.Duration
	Log        *zap.Logger
}

func (r *RedditFetcher) Name() string {
	return "reddit_new"
}

func (r *RedditFetcher) Source() Source {
	return SourceReddit
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      *string `json:"author"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       *int    `json:"score"`
	NumComments *int    `json:"num_comments"`
}

func (r *RedditFetcher) Fetch(ctx context.Context, limit int) iter.Seq[Feedback] {
	return func(yield func(Feedback) bool) {
		log := loggerOrNop(r.Log).With(zap.String("fetcher", r.Name()))

		// 每次 Fetch 独占一个 transport，退出时释放空闲连接
		transport := http.DefaultTransport.(*http.Transport).Clone()
		defer transport.CloseIdleConnections()

		c := colly.NewCollector(colly.UserAgent(r.userAgent()))
		c.WithTransport(transport)
		c.SetRequestTimeout(r.timeout())
		c.AllowURLRevisit = true

		var body []byte
		c.OnResponse(func(resp *colly.Response) {
			body = resp.Body
		})

		collected := 0
		for _, sub := range r.subreddits() {
			if collected >= limit || ctx.Err() != nil {
				return
			}

			body = nil
			posts, err := r.fetchSubreddit(c, sub, &body)
			if err != nil {
				log.Warn("scrape subreddit failed", zap.String("subreddit", sub), zap.Error(err))
				continue
			}

			for _, p := range posts {
				if collected >= limit {
					return
				}
				item, ok := r.toFeedback(p)
				if !ok {
					continue
				}
				if !yield(item) {
					return
				}
				collected++
			}
		}
	}
}

// fetchSubreddit 同步访问一个社区，响应体由 OnResponse 回调写入 body
func (r *RedditFetcher) fetchSubreddit(c *colly.Collector, sub string, body *[]byte) ([]redditPost, error) {
	url := fmt.Sprintf("%s/r/%s/new.json", strings.TrimRight(r.baseURL(), "/"), sub)
	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("reddit: visit %s: %w", url, err)
	}
	if *body == nil {
		return nil, fmt.Errorf("reddit: empty response from %s", url)
	}

	var listing redditListing
	if err := json.Unmarshal(*body, &listing); err != nil {
		return nil, fmt.Errorf("reddit: decode r/%s: %w", sub, err)
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

func (r *RedditFetcher) toFeedback(p redditPost) (Feedback, bool) {
	combined := p.Title + "\n\n" + p.Selftext
	cls := processor.Classify(combined)
	if !cls.Relevant {
		return Feedback{}, false
	}

	return Feedback{
		ID:          "reddit_" + p.ID,
		Source:      SourceReddit,
		SourceURL:   redditPermaHost + p.Permalink,
		Title:       strPtr(p.Title),
		Text:        p.Selftext,
		Author:      p.Author,
		Timestamp:   unixFloatUTC(p.CreatedUTC),
		Score:       p.Score,
		NumComments: p.NumComments,
		Products:    cls.Products,
		Categories:  cls.Categories,
		CollectedAt: nowUTC(),
	}, true
}

func (r *RedditFetcher) baseURL() string {
	if r.BaseURL == "" {
		return RedditBaseURL
	}
	return r.BaseURL
}

func (r *RedditFetcher) subreddits() []string {
	if len(r.Subreddits) == 0 {
		return DefaultSubreddits
	}
	return r.Subreddits
}

func (r *RedditFetcher) userAgent() string {
	if r.UserAgent == "" {
		return DefaultUA
	}
	return r.UserAgent
}

func (r *RedditFetcher) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

func unixFloatUTC(sec float64) time.Time {
	whole := int64(sec)
	frac := sec - float64(whole)
	return time.Unix(whole, int64(frac*1e9)).UTC().Truncate(time.Microsecond)
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
