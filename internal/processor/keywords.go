package processor

// AIKeywords 产品名、厂商名与模型名片段，全部小写
var AIKeywords = []string{
	"chatgpt", "claude", "gemini", "copilot", "perplexity",
	"grok", "bard", "gpt-4", "gpt-3", "openai", "anthropic",
}

// UXKeywords 通用 UX 词汇 + 具体反馈句式
var UXKeywords = []string{
	"ux", "user experience", "confusing", "unclear", "error",
	"interface", "design", "usability", "hard to use", "difficult",
	"tone", "response", "output", "formatting", "frustrating",

	"why is it called", "why did they name", "confusing name",
	"what does", "what's a", "what is a", "difference between",
	"didn't know", "didn't realize", "had no idea", "just learned",
	"hidden feature", "found by accident", "error message",
	"sounds", "comes across", "robotic", "verbose", "patronizing",
	"wall of text", "hard to read", "doesn't make sense",
	"getting started", "new user", "first time", "learning curve",
	"can't find", "where is", "how do i",
}

type productGroup struct {
	product  Product
	keywords []string
}

// 顺序决定结果中的产品顺序
var productGroups = []productGroup{
	{ProductClaude, []string{"claude", "anthropic"}},
	{ProductChatGPT, []string{"chatgpt", "gpt-4", "gpt-3", "openai"}},
	{ProductGemini, []string{"gemini", "bard"}},
	{ProductCopilot, []string{"copilot"}},
	{ProductPerplexity, []string{"perplexity"}},
	{ProductGrok, []string{"grok"}},
}

type categoryGroup struct {
	category Category
	keywords []string
}

var categoryGroups = []categoryGroup{
	{CategoryNamingTerminology, []string{
		"why is it called", "why did they name", "confusing name",
		"what does", "what's a", "what is a", "difference between",
	}},
	{CategoryFeatureDiscovery, []string{
		"didn't know", "didn't realize", "had no idea", "just learned",
		"didn't even know", "hidden feature", "found by accident",
	}},
	{CategoryErrorMessages, []string{"error message", "error:", "failed"}},
	{CategoryTone, []string{
		"tone", "sounds", "comes across", "robotic", "verbose", "patronizing",
	}},
	{CategoryContentClarity, []string{
		"unclear", "confusing", "doesn't make sense", "hard to read", "wall of text",
	}},
	{CategoryOnboarding, []string{
		"onboarding", "getting started", "new user", "first time", "learning curve",
	}},
	{CategoryNavigation, []string{"navigation", "find", "locate", "menu", "can't find"}},
	{CategoryResponseQuality, []string{"response", "output", "answer", "result", "quality"}},
}
