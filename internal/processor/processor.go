package processor

import "strings"

// Product 标识反馈所讨论的 AI 产品
type Product string

const (
	ProductClaude     Product = "claude"
	ProductChatGPT    Product = "chatgpt"
	ProductGemini     Product = "gemini"
	ProductCopilot    Product = "copilot"
	ProductPerplexity Product = "perplexity"
	ProductGrok       Product = "grok"
	ProductUnknown    Product = "unknown"
)

// Category 标识反馈的 UX 主题
type Category string

const (
	CategoryNamingTerminology Category = "naming_terminology"
	CategoryFeatureDiscovery  Category = "feature_discovery"
	CategoryErrorMessages     Category = "error_messages"
	CategoryTone              Category = "tone"
	CategoryContentClarity    Category = "content_clarity"
	CategoryOnboarding        Category = "onboarding"
	CategoryNavigation        Category = "navigation"
	CategoryResponseQuality   Category = "response_quality"
	CategoryGeneralUX         Category = "general_ux"
)

// Classification 是一段文本的完整打标结果
type Classification struct {
	Relevant   bool
	Products   []Product
	Categories []Category
}

// Classify 一次性计算相关性、产品与分类
func Classify(text string) Classification {
	return Classification{
		Relevant:   IsRelevant(text),
		Products:   ExtractProducts(text),
		Categories: ExtractCategories(text),
	}
}

// IsRelevant 要求文本同时命中 AI 关键词与 UX 关键词
func IsRelevant(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	return containsAny(lower, AIKeywords) && containsAny(lower, UXKeywords)
}

// ExtractProducts 按固定顺序检查每个产品分组，全部未命中时返回 unknown
func ExtractProducts(text string) []Product {
	lower := strings.ToLower(text)
	out := make([]Product, 0, 2)
	for _, g := range productGroups {
		if containsAny(lower, g.keywords) {
			out = append(out, g.product)
		}
	}
	if len(out) == 0 {
		return []Product{ProductUnknown}
	}
	return out
}

// ExtractCategories 各分类独立判断（非互斥），全部未命中时返回 general_ux
func ExtractCategories(text string) []Category {
	lower := strings.ToLower(text)
	out := make([]Category, 0, 2)
	for _, g := range categoryGroups {
		if containsAny(lower, g.keywords) {
			out = append(out, g.category)
		}
	}
	if len(out) == 0 {
		return []Category{CategoryGeneralUX}
	}
	return out
}

// UniqueProducts 去重并保持首次出现的顺序，用于解码历史数据
func UniqueProducts(in []Product) []Product {
	return unique(in)
}

// UniqueCategories 同 UniqueProducts
func UniqueCategories(in []Category) []Category {
	return unique(in)
}

func unique[T comparable](in []T) []T {
	if in == nil {
		return nil
	}
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
