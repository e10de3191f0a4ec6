package language

import (
	"strings"
	"unicode"
)

// Language 表示回复建议可使用的语言。
type Language string

const (
	English Language = "english"
	Hindi   Language = "hindi"
)

const (
	devanagariFirst = '\u0900'
	devanagariLast  = '\u097F'
)

var hindiIndicators = map[string]struct{}{
	"mera": {}, "kya": {}, "kahan": {}, "kaise": {}, "hai": {}, "mein": {}, "ka": {},
	"ki": {}, "ko": {}, "aur": {}, "order": {}, "karna": {}, "chahta": {}, "chahte": {},
}

var englishIndicators = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "what": {}, "how": {}, "where": {}, "when": {},
	"why": {}, "is": {}, "are": {}, "can": {}, "do": {}, "does": {}, "will": {}, "would": {},
	"should": {}, "could": {},
}

// Detect 判断文本是印地语还是英语。任何天城文字符直接判定为印地语，
// 否则比较罗马化印地语功能词与英语功能词的出现次数，平局取英语。
func Detect(text string) Language {
	for _, r := range text {
		if r >= devanagariFirst && r <= devanagariLast {
			return Hindi
		}
	}

	hindi, english := 0, 0
	for _, token := range tokenize(text) {
		if _, ok := hindiIndicators[token]; ok {
			hindi++
		}
		if _, ok := englishIndicators[token]; ok {
			english++
		}
	}

	if hindi > english {
		return Hindi
	}
	return English
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
