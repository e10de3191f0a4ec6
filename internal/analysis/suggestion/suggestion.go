package suggestion

import (
	"strings"

	"github.com/zhouzirui/shopease/backend/internal/analysis/language"
)

// Suggestion 是一个快捷回复：Label 用于展示，Prompt 在点击后作为用户输入提交。
type Suggestion struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

type category struct {
	keywords []string
	pairs    map[language.Language][]Suggestion
}

// categories 的顺序即检查顺序：先退货/退款，再订单/物流。
var categories = []category{
	{
		keywords: []string{"return", "refund", "रिटर्न"},
		pairs: map[language.Language][]Suggestion{
			language.English: {
				{Label: "🔄 Initiate Return", Prompt: "I want to initiate a return"},
				{Label: "📋 Return Policy", Prompt: "What is your return policy?"},
			},
			language.Hindi: {
				{Label: "🔄 रिटर्न शुरू करें", Prompt: "मैं एक आइटम वापस करना चाहता हूं"},
				{Label: "📋 रिटर्न पॉलिसी", Prompt: "रिटर्न पॉलिसी क्या है?"},
			},
		},
	},
	{
		keywords: []string{"order", "tracking", "ऑर्डर"},
		pairs: map[language.Language][]Suggestion{
			language.English: {
				{Label: "📦 Track Another Order", Prompt: "I want to track another order"},
			},
			language.Hindi: {
				{Label: "📦 दूसरा ऑर्डर ट्रैक करें", Prompt: "मैं दूसरा ऑर्डर ट्रैक करना चाहता हूं"},
			},
		},
	},
}

// Suggest 根据助手回复中的关键词生成快捷回复。
func Suggest(reply string, lang language.Language) []Suggestion {
	normalized := strings.ToLower(reply)

	var out []Suggestion
	for _, c := range categories {
		if !containsAny(normalized, c.keywords) {
			continue
		}
		pairs, ok := c.pairs[lang]
		if !ok {
			pairs = c.pairs[language.English]
		}
		out = append(out, pairs...)
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, word := range keywords {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
