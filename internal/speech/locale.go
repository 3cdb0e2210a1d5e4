package speech

import (
	"fmt"
	"strings"
)

// pause surrounds spoken punctuation so engines leave a gap around it.
const pause = "     "

// Replacement maps a punctuation mark to its spoken name.
type Replacement struct {
	Mark string
	Word string
}

// Locale holds the wording used for one language.
type Locale struct {
	Prefix      string
	Announce    func(n int) string
	Punctuation []Replacement
}

var chinese = Locale{
	Prefix:   "zh",
	Announce: func(n int) string { return fmt.Sprintf("第 %d 题", n) },
	Punctuation: []Replacement{
		{"。", "句号"},
		{"，", "逗号"},
		{"！", "感叹号"},
		{"？", "问号"},
		{"；", "分号"},
		{"：", "冒号"},
		{"、", "顿号"},
		{"—", "破折号"},
		{"（", "左括号"},
		{"）", "右括号"},
		{"“", "左引号"},
		{"”", "右引号"},
		{"\"", "引号"},
		{"《", "左书名号"},
		{"》", "右书名号"},
		{".", "句号"},
		{",", "逗号"},
		{"!", "感叹号"},
		{"?", "问号"},
		{";", "分号"},
		{":", "冒号"},
		{"(", "左括号"},
		{")", "右括号"},
	},
}

var english = Locale{
	Prefix:   "en",
	Announce: func(n int) string { return fmt.Sprintf("Number %d", n) },
	Punctuation: []Replacement{
		{".", "period"},
		{",", "comma"},
		{"!", "exclamation mark"},
		{"?", "question mark"},
		{";", "semicolon"},
		{":", "colon"},
		{"—", "em dash"},
		{"-", "dash"},
		{"(", "open parenthesis"},
		{")", "close parenthesis"},
		{"\"", "quote"},
	},
}

// LocaleFor returns the locale for a voice language. Anything that is not
// Chinese is read in English.
func LocaleFor(lang string) Locale {
	if strings.HasPrefix(lang, chinese.Prefix) {
		return chinese
	}
	return english
}

// Announcement is the spoken item number, counted from 1.
func Announcement(lang string, n int) string {
	return LocaleFor(lang).Announce(n)
}

// Verbalize replaces punctuation in text with spoken names, padded with
// pauses. Replacements apply in table order.
func Verbalize(lang, text string) string {
	for _, r := range LocaleFor(lang).Punctuation {
		text = strings.ReplaceAll(text, r.Mark, pause+r.Word+pause)
	}
	return text
}
