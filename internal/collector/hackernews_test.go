package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hnServer 用内存中的条目模拟 Firebase API；缺失的 id 返回 null
func hnServer(t *testing.T, ids []int, items map[int]map[string]any) (*httptest.Server, *int64) {
	t.Helper()
	var itemHits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/v0/newstories.json" {
			json.NewEncoder(w).Encode(ids)
			return
		}
		var id int
		if _, err := fmt.Sscanf(r.URL.Path, "/v0/item/%d.json", &id); err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		atomic.AddInt64(&itemHits, 1)
		it, ok := items[id]
		if !ok {
			w.Write([]byte("null"))
			return
		}
		json.NewEncoder(w).Encode(it)
	}))
	t.Cleanup(srv.Close)
	return srv, &itemHits
}

func story(id int, title, text string, kids ...int) map[string]any {
	return map[string]any{
		"id": id, "type": "story", "title": title, "text": text,
		"by": "alice", "time": 1700000000, "score": 42, "descendants": len(kids), "kids": kids,
	}
}

func comment(id int, text string) map[string]any {
	return map[string]any{"id": id, "type": "comment", "text": text, "by": "bob", "time": 1700000100}
}

func TestHackerNewsLimitCapsStoriesAndComments(t *testing.T) {
	kids := []int{101, 102, 103, 104, 105, 106, 107, 108, 109, 110}
	items := map[int]map[string]any{
		1: story(1, "Claude has a confusing interface", "", kids...),
	}
	for _, k := range kids {
		items[k] = comment(k, "ChatGPT error message was unclear")
	}
	srv, hits := hnServer(t, []int{1}, items)

	f := &HackerNewsFetcher{BaseURL: srv.URL}
	got := slices.Collect(f.Fetch(context.Background(), 5))

	require.Len(t, got, 5)
	assert.Equal(t, "hn_story_1", got[0].ID)
	assert.Equal(t, "hn_comment_101", got[1].ID)
	// 达到上限后不再请求剩余评论
	assert.EqualValues(t, 5, atomic.LoadInt64(hits))
}

func TestHackerNewsStoryAndCommentRecords(t *testing.T) {
	longTitle := "Why is it called Claude Opus when " + strings.Repeat("x", 40)
	items := map[int]map[string]any{
		7:  story(7, longTitle, "some body", 70, 71, 72),
		70: comment(70, "Gemini sounds robotic"),
		71: {"id": 71, "type": "comment", "deleted": true, "time": 1700000200},
		// 72 缺失：API 返回 null
	}
	srv, _ := hnServer(t, []int{7, 8}, items)

	f := &HackerNewsFetcher{BaseURL: srv.URL}
	got := slices.Collect(f.Fetch(context.Background(), 100))
	require.Len(t, got, 2)

	s := got[0]
	assert.Equal(t, "hn_story_7", s.ID)
	assert.Equal(t, SourceHackerNews, s.Source)
	assert.Equal(t, "https://news.ycombinator.com/item?id=7", s.SourceURL)
	require.NotNil(t, s.Score)
	assert.Equal(t, 42, *s.Score)
	require.NotNil(t, s.NumComments)
	assert.Equal(t, 3, *s.NumComments)
	require.NotNil(t, s.Author)
	assert.Equal(t, "alice", *s.Author)
	assert.Equal(t, int64(1700000000), s.Timestamp.Unix())
	assert.False(t, s.Processed)
	assert.Nil(t, s.Sentiment)

	c := got[1]
	assert.Equal(t, "hn_comment_70", c.ID)
	assert.Equal(t, "Re: "+string([]rune(longTitle)[:50])+"...", c.TitleOrEmpty())
	assert.Nil(t, c.Score)
	assert.Nil(t, c.NumComments)
	assert.Equal(t, "gemini", string(c.Products[0]))
	assert.Equal(t, "tone", string(c.Categories[0]))
}

func TestHackerNewsCommentsUseOwnTextOnly(t *testing.T) {
	items := map[int]map[string]any{
		// 故事本身相关，但评论只有 UX 词，不应被收录
		1:  story(1, "Copilot output is confusing", "", 10),
		10: comment(10, "the interface is confusing"),
	}
	srv, _ := hnServer(t, []int{1}, items)

	got := slices.Collect((&HackerNewsFetcher{BaseURL: srv.URL}).Fetch(context.Background(), 10))
	require.Len(t, got, 1)
	assert.Equal(t, "hn_story_1", got[0].ID)
}

func TestHackerNewsIDListFailureEndsSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	got := slices.Collect((&HackerNewsFetcher{BaseURL: srv.URL}).Fetch(context.Background(), 10))
	assert.Empty(t, got)
}

func TestHackerNewsConsumerCanStopEarly(t *testing.T) {
	items := map[int]map[string]any{
		1: story(1, "Grok ux is frustrating", ""),
		2: story(2, "Perplexity ux is frustrating", ""),
	}
	srv, hits := hnServer(t, []int{1, 2}, items)

	f := &HackerNewsFetcher{BaseURL: srv.URL}
	for item := range f.Fetch(context.Background(), 10) {
		assert.Equal(t, "hn_story_1", item.ID)
		break
	}
	assert.EqualValues(t, 1, atomic.LoadInt64(hits))
}

func TestReplyTitleCountsRunes(t *testing.T) {
	assert.Equal(t, "Re: short...", ReplyTitle("short"))
	title := strings.Repeat("字", 60)
	assert.Equal(t, "Re: "+strings.Repeat("字", 50)+"...", ReplyTitle(title))
}
