package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/FeedbackHub/internal/collector"
	"github.com/LJTian/FeedbackHub/internal/processor"
)

func item(id, title string, ts time.Time) collector.Feedback {
	f := collector.Feedback{
		ID:          id,
		Source:      collector.SourceReddit,
		SourceURL:   "https://reddit.com/r/ClaudeAI/comments/" + id,
		Text:        "body of " + id,
		Timestamp:   ts,
		Products:    []processor.Product{processor.ProductClaude, processor.ProductChatGPT},
		Categories:  []processor.Category{processor.CategoryTone, processor.CategoryGeneralUX},
		CollectedAt: ts,
	}
	if title != "" {
		f.Title = &title
	}
	return f
}

func renderDoc(t *testing.T, items []collector.Feedback, opts Options) *goquery.Document {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "feedback.jsonl")
	require.NoError(t, collector.WriteJSONL(in, items))

	out := DefaultOutputPath(in)
	require.NoError(t, Render(in, out, opts))

	file, err := os.Open(out)
	require.NoError(t, err)
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	require.NoError(t, err)
	return doc
}

func TestRenderOrdersNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	doc := renderDoc(t, []collector.Feedback{
		item("t1", "T1", base),
		item("t2", "T2", base.Add(time.Hour)),
	}, Options{})

	titles := doc.Find(".item .title a").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	assert.Equal(t, []string{"T2", "T1"}, titles)
	assert.Equal(t, "2", doc.Find("#total").Text())

	first := doc.Find(".item").First()
	assert.Contains(t, first.Find(".title").Text(), "1.")
	assert.Equal(t, "2024-05-01 11:00", first.Find(".time").Text())
	assert.Equal(t, "tone, general_ux", first.Find(".category").Text())
	href, _ := first.Find(".title a").Attr("href")
	assert.Equal(t, "https://reddit.com/r/ClaudeAI/comments/t2", href)

	badges := first.Find(".badge").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	assert.Equal(t, []string{"claude", "chatgpt", "reddit"}, badges)
	assert.True(t, first.Find(".badge").First().HasClass("badge-claude"))
}

func TestRenderNullFields(t *testing.T) {
	f := item("x", "", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	doc := renderDoc(t, []collector.Feedback{f}, Options{})

	assert.Equal(t, "(no title)", doc.Find(".item .title a").Text())
	assert.Equal(t, "0 points", doc.Find(".points").Text())
	assert.Equal(t, "0 comments", doc.Find(".comments").Text())
}

func TestRenderScoreAndComments(t *testing.T) {
	f := item("x", "T", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	score, comments := 42, 7
	f.Score = &score
	f.NumComments = &comments
	doc := renderDoc(t, []collector.Feedback{f}, Options{})

	assert.Equal(t, "42 points", doc.Find(".points").Text())
	assert.Equal(t, "7 comments", doc.Find(".comments").Text())
}

func TestRenderTruncatesPreview(t *testing.T) {
	f := item("long", "Long", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	f.Text = strings.Repeat("é", 500)
	doc := renderDoc(t, []collector.Feedback{f}, Options{})

	assert.Equal(t, strings.Repeat("é", 400)+"...", doc.Find(".text").Text())
}

func TestRenderHideText(t *testing.T) {
	f := item("x", "T", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	doc := renderDoc(t, []collector.Feedback{f}, Options{HideText: true})

	assert.Equal(t, 0, doc.Find(".text").Length())
	assert.Equal(t, 1, doc.Find(".item").Length())
}

func TestRenderEscapesTitle(t *testing.T) {
	f := item("x", `<script>alert("x")</script>`, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	doc := renderDoc(t, []collector.Feedback{f}, Options{})

	assert.Equal(t, 0, doc.Find(".title script").Length())
	assert.Equal(t, `<script>alert("x")</script>`, doc.Find(".item .title a").Text())
}

func TestRenderHackerNewsMarkup(t *testing.T) {
	f := item("hn_comment_1", "Re: x...", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	f.Source = collector.SourceHackerNews
	f.Text = "it&#x27;s slow<p>second paragraph"
	doc := renderDoc(t, []collector.Feedback{f}, Options{})

	text := doc.Find(".text").Text()
	assert.Contains(t, text, "it's slow")
	assert.Contains(t, text, "second paragraph")
	assert.NotContains(t, text, "<p>")
}

func TestRenderHackerNewsPreviewIsPlainText(t *testing.T) {
	f := item("hn_comment_2", "Re: y...", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	f.Source = collector.SourceHackerNews
	f.Text = `gpt-4_turbo is *fast* &amp; cheap<p><i>really</i> see <a href="https://example.com/docs">the docs</a>`
	doc := renderDoc(t, []collector.Feedback{f}, Options{})

	text := doc.Find(".text").Text()
	assert.Contains(t, text, "gpt-4_turbo is *fast* & cheap")
	assert.Contains(t, text, "really see the docs")
	assert.NotContains(t, text, `\_`)
	assert.NotContains(t, text, `\*`)
	assert.NotContains(t, text, "](")
}

func TestRenderMalformedInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(in, []byte("{not json}\n"), 0o644))

	err := Render(in, filepath.Join(dir, "out.html"), Options{})
	require.Error(t, err)
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "data/feedback_all.html", DefaultOutputPath("data/feedback_all.jsonl"))
	assert.Equal(t, "plain.html", DefaultOutputPath("plain"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
}
