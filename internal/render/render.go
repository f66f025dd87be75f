package render

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/LJTian/FeedbackHub/internal/collector"
)

const (
	previewRunes = 400
	timeLayout   = "2006-01-02 15:04"
)

// Options 控制页面内容
type Options struct {
	// HideText 为 true 时不输出正文预览
	HideText bool
}

type badge struct {
	Class string
	Label string
}

type itemView struct {
	Rank       int
	URL        string
	Title      string
	Badges     []badge
	Points     string
	Comments   string
	Time       string
	Categories string
	Preview    string
}

type pageView struct {
	Total       int
	LastUpdated string
	Items       []itemView
}

var now = time.Now

// DefaultOutputPath 把输入文件的扩展名替换为 .html
func DefaultOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".html"
}

// Render 读取 JSONL 记录，按 timestamp 倒序生成单个 HTML 页面
func Render(inputPath, outputPath string, opts Options) error {
	items, err := collector.ReadJSONL(inputPath)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	slices.SortStableFunc(items, func(a, b collector.Feedback) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	conv := newPlainConverter()
	page := pageView{
		Total:       len(items),
		LastUpdated: now().Format(timeLayout),
		Items:       make([]itemView, 0, len(items)),
	}
	for i, f := range items {
		page.Items = append(page.Items, buildItem(conv, i+1, f, opts))
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("render: create %s: %w", outputPath, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := pageTmpl.Execute(w, page); err != nil {
		return fmt.Errorf("render: execute template: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("render: write %s: %w", outputPath, err)
	}
	return file.Close()
}

func buildItem(conv *md.Converter, rank int, f collector.Feedback, opts Options) itemView {
	title := f.TitleOrEmpty()
	if f.Title == nil || title == "" {
		title = "(no title)"
	}

	badges := make([]badge, 0, len(f.Products)+1)
	for _, p := range f.Products {
		badges = append(badges, badge{Class: "badge-" + string(p), Label: string(p)})
	}
	badges = append(badges, badge{Class: "badge-" + string(f.Source), Label: string(f.Source)})

	categories := make([]string, 0, len(f.Categories))
	for _, c := range f.Categories {
		categories = append(categories, string(c))
	}

	v := itemView{
		Rank:       rank,
		URL:        f.SourceURL,
		Title:      title,
		Badges:     badges,
		Points:     countLabel(f.Score, "points"),
		Comments:   countLabel(f.NumComments, "comments"),
		Time:       f.Timestamp.Format(timeLayout),
		Categories: strings.Join(categories, ", "),
	}
	if !opts.HideText && f.Text != "" {
		v.Preview = Truncate(plainText(conv, f), previewRunes)
	}
	return v
}

// plainText Hacker News 的正文是 HTML 片段，转换为纯文本后再截断
func plainText(conv *md.Converter, f collector.Feedback) string {
	if f.Source != collector.SourceHackerNews || !strings.ContainsAny(f.Text, "<&") {
		return f.Text
	}
	out, err := conv.ConvertString(f.Text)
	if err != nil {
		return f.Text
	}
	return out
}

// newPlainConverter 关闭 markdown 转义，行内标签只保留文字
func newPlainConverter() *md.Converter {
	conv := md.NewConverter("", true, &md.Options{EscapeMode: "disabled"})
	conv.AddRules(md.Rule{
		Filter: []string{"a", "i", "em", "b", "strong", "code"},
		Replacement: func(content string, _ *goquery.Selection, _ *md.Options) *string {
			return md.String(content)
		},
	})
	return conv
}

func countLabel(v *int, unit string) string {
	n := 0
	if v != nil {
		n = *v
	}
	return strconv.Itoa(n) + " " + unit
}

// Truncate 按字符截断，超过 n 时追加 "..."
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
