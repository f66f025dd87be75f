package processor

import (
	"testing"
)

func TestIsRelevantRequiresBothKeywordGroups(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"", false},
		{"I love ChatGPT", false},                         // 仅 AI 关键词
		{"this interface is confusing", false},            // 仅 UX 关键词
		{"ChatGPT's error messages are confusing", true},  // 两者兼有
		{"WHY IS IT CALLED OPUS? Anthropic please", true}, // 大小写不敏感
	}

	for _, c := range cases {
		if got := IsRelevant(c.text); got != c.want {
			t.Fatalf("IsRelevant(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestExtractProductsKeepsGroupOrder(t *testing.T) {
	got := ExtractProducts("I use Claude and ChatGPT daily")
	want := []Product{ProductClaude, ProductChatGPT}
	if len(got) != len(want) {
		t.Fatalf("ExtractProducts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ExtractProducts[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// 顺序由分组决定而不是出现位置
	got = ExtractProducts("grok beats gemini and bard")
	if len(got) != 2 || got[0] != ProductGemini || got[1] != ProductGrok {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestExtractProductsNoDuplicatesAndUnknown(t *testing.T) {
	got := ExtractProducts("openai gpt-4 chatgpt gpt-3")
	if len(got) != 1 || got[0] != ProductChatGPT {
		t.Fatalf("expected single chatgpt tag, got %v", got)
	}

	got = ExtractProducts("nothing AI related")
	if len(got) != 1 || got[0] != ProductUnknown {
		t.Fatalf("expected [unknown], got %v", got)
	}
}

func TestExtractCategoriesAdditive(t *testing.T) {
	got := ExtractCategories("why is it called Opus?")
	if !hasCategory(got, CategoryNamingTerminology) {
		t.Fatalf("expected naming_terminology in %v", got)
	}

	got = ExtractCategories("the tone is off and the error message is useless")
	if !hasCategory(got, CategoryTone) || !hasCategory(got, CategoryErrorMessages) {
		t.Fatalf("expected tone and error_messages in %v", got)
	}
	// error_messages 排在 tone 之前
	if indexOf(got, CategoryErrorMessages) > indexOf(got, CategoryTone) {
		t.Fatalf("categories not in priority order: %v", got)
	}

	got = ExtractCategories("plain words")
	if len(got) != 1 || got[0] != CategoryGeneralUX {
		t.Fatalf("expected [general_ux], got %v", got)
	}
}

func TestClassifyBundlesResults(t *testing.T) {
	c := Classify("Copilot output is a wall of text")
	if !c.Relevant {
		t.Fatalf("expected relevant")
	}
	if len(c.Products) != 1 || c.Products[0] != ProductCopilot {
		t.Fatalf("unexpected products: %v", c.Products)
	}
	if !hasCategory(c.Categories, CategoryContentClarity) || !hasCategory(c.Categories, CategoryResponseQuality) {
		t.Fatalf("unexpected categories: %v", c.Categories)
	}
}

func TestUniqueKeepsFirstSeenOrder(t *testing.T) {
	got := UniqueProducts([]Product{ProductGrok, ProductClaude, ProductGrok})
	if len(got) != 2 || got[0] != ProductGrok || got[1] != ProductClaude {
		t.Fatalf("UniqueProducts = %v", got)
	}
	if UniqueCategories(nil) != nil {
		t.Fatalf("UniqueCategories(nil) should stay nil")
	}
}

func hasCategory(list []Category, c Category) bool {
	return indexOf(list, c) >= 0
}

func indexOf(list []Category, c Category) int {
	for i, v := range list {
		if v == c {
			return i
		}
	}
	return -1
}
