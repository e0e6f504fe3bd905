package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field", "expected" or "got").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator. Templates use
// {name} placeholders filled from data; unknown placeholders are left as is.
type dictTranslator struct{ lang string }

var dicts = map[string]map[string]string{
	"en": {
		"schema":        "invalid schema declaration: {reason}",
		"required":      "required field {field} is missing",
		"invalid_type":  "invalid type: expected {expected}, got {got}",
		"validation":    "value of {field} failed validation",
		"immutable":     "field {field} is immutable",
		"unknown_key":   "unknown key {field}",
		"duplicate_key": "duplicate key",
		"parse_error":   "parse error",
		"truncated":     "truncated",
	},
	"ja": {
		"schema":        "スキーマ定義が不正です: {reason}",
		"required":      "必須フィールド {field} が不足しています",
		"invalid_type":  "型が不正です: {expected} が必要ですが {got} でした",
		"validation":    "{field} の値が検証に失敗しました",
		"immutable":     "フィールド {field} は変更できません",
		"unknown_key":   "未知のキー {field} です",
		"duplicate_key": "キーが重複しています",
		"parse_error":   "解析エラー",
		"truncated":     "打ち切られました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dicts[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
