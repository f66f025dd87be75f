package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LJTian/FeedbackHub/internal/collector"
	"github.com/LJTian/FeedbackHub/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedback(id string, ts time.Time) collector.Feedback {
	title := "title " + id
	return collector.Feedback{
		ID:          id,
		Source:      collector.SourceReddit,
		SourceURL:   "https://reddit.com/r/ClaudeAI/" + id,
		Title:       &title,
		Text:        "claude keeps confusing me",
		Timestamp:   ts,
		Products:    []processor.Product{processor.ProductClaude},
		Categories:  []processor.Category{processor.CategoryGeneralUX},
		CollectedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(bs), "\n"), "\n")
}

func TestMergeAppendsOnlyNewIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback_all.jsonl")
	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	existing, err := collector.EncodeLine(feedback("reddit_abc", ts))
	require.NoError(t, err)
	writeLines(t, path, string(existing))

	res, err := Merge(path, []collector.Feedback{feedback("reddit_abc", ts), feedback("reddit_xyz", ts)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.New)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Appended, 1)
	assert.Equal(t, "reddit_xyz", res.Appended[0].ID)

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	// 已有的行保持原样
	assert.Equal(t, string(existing), lines[0])
	assert.Contains(t, lines[1], `"id":"reddit_xyz"`)
}

func TestMergeIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback_all.jsonl")
	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	batch := []collector.Feedback{feedback("a", ts), feedback("b", ts)}

	res, err := Merge(path, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, res.New)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	res, err = Merge(path, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, res.New)
	assert.Equal(t, 2, res.Skipped)
	assert.Empty(t, res.Appended)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMergeDeduplicatesWithinBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback_all.jsonl")
	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	res, err := Merge(path, []collector.Feedback{feedback("a", ts), feedback("a", ts), feedback("b", ts)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.New)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, readLines(t, path), 2)
}

func TestReadIDsSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback_all.jsonl")
	writeLines(t, path,
		`{"id":"one"}`,
		`not json`,
		``,
		`{"source":"reddit"}`,
		`  {"id":"two"}  `,
	)

	ids, err := ReadIDs(path)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "one")
	assert.Contains(t, ids, "two")
}

func TestReadIDsMissingFile(t *testing.T) {
	ids, err := ReadIDs(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMergeKeepsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback_all.jsonl")
	writeLines(t, path, `{"id":"old"}`, `garbage`)

	res, err := Merge(path, []collector.Feedback{feedback("new", time.Now().UTC())})
	require.NoError(t, err)
	assert.Equal(t, 1, res.New)

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.Equal(t, "garbage", lines[1])
}

func TestCountLines(t *testing.T) {
	dir := t.TempDir()

	n, err := CountLines(filepath.Join(dir, "missing.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	path := filepath.Join(dir, "f.jsonl")
	writeLines(t, path, `{"id":"a"}`, `bad`, `{"id":"b"}`)
	n, err = CountLines(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMergeRepairsMissingTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback_all.jsonl")
	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	existing, err := collector.EncodeLine(feedback("reddit_abc", ts))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, existing, 0o644))

	res, err := Merge(path, []collector.Feedback{feedback("reddit_xyz", ts)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.New)

	ids, err := ReadIDs(path)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "reddit_abc")
	assert.Contains(t, ids, "reddit_xyz")

	// 再次合并不应产生重复
	res, err = Merge(path, []collector.Feedback{feedback("reddit_abc", ts), feedback("reddit_xyz", ts)})
	require.NoError(t, err)
	assert.Equal(t, 0, res.New)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, readLines(t, path), 2)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteNewReturnsZeroResultOnError(t *testing.T) {
	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	seen := map[string]struct{}{"old": {}}

	res, err := writeNew(failingWriter{}, seen, []collector.Feedback{feedback("old", ts), feedback("a", ts)})
	require.Error(t, err)
	assert.Equal(t, MergeResult{}, res)
}
