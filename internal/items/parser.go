package items

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Blank replaces a masked span in the on-screen context.
const Blank = "_______"

var (
	numberingPattern = regexp.MustCompile(`(?m)^\s*\d+[.)]\s*`)
	maskedPattern    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	sentencePattern  = regexp.MustCompile(`[^.?!。？！]+[.?!。？！]|\s\w+\s\w+\s\w+`)
)

// homoglyphs maps CJK radical variants that look like common characters to
// the standard ideographs a speech engine knows how to read.
var homoglyphs = map[rune]rune{
	'⽜': '牛',
	'⻋': '车',
	'⽔': '水',
	'⻑': '长',
}

var homoglyphTransformer = runes.Map(func(r rune) rune {
	if std, ok := homoglyphs[r]; ok {
		return std
	}
	return r
})

// Normalize replaces known homoglyphs with their standard forms.
func Normalize(text string) string {
	out, _, err := transform.String(homoglyphTransformer, text)
	if err != nil {
		return text
	}
	return out
}

// Parse splits raw list text into test items. It never fails; lines that
// are blank after numbering is stripped produce no item.
func Parse(raw string) []Item {
	text := numberingPattern.ReplaceAllString(Normalize(raw), "")

	var parsed []Item
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parsed = append(parsed, parseLine(line))
	}
	return parsed
}

// ParseList parses raw text for a new session and rejects input that
// cannot produce one.
func ParseList(raw string) ([]Item, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}
	parsed := Parse(raw)
	if len(parsed) == 0 {
		return nil, ErrNoItems
	}
	return parsed, nil
}

func parseLine(line string) Item {
	// A masked answer keeps the whole line together.
	if maskedPattern.MatchString(line) {
		return singleItem(ParseSingle(line))
	}

	sentences := splitSentences(line)
	if len(sentences) <= 1 {
		return singleItem(ParseSingle(line))
	}

	para := Item{
		Kind:       KindParagraph,
		Original:   line,
		Sentences:  make([]Single, 0, len(sentences)),
		TestedPart: line,
	}
	for _, s := range sentences {
		para.Sentences = append(para.Sentences, ParseSingle(s))
	}
	return para
}

func splitSentences(line string) []string {
	found := sentencePattern.FindAllString(line, -1)
	if found == nil {
		found = []string{line}
	}

	sentences := make([]string, 0, len(found))
	for _, s := range found {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// ParseSingle parses one phrase, extracting its masked spans.
// An unterminated marker is not a span; its asterisks are still
// dropped from the spoken text.
func ParseSingle(phrase string) Single {
	var tested []string
	for _, m := range maskedPattern.FindAllStringSubmatch(phrase, -1) {
		tested = append(tested, m[1])
	}

	s := Single{
		Original: phrase,
		ToRead:   strings.ReplaceAll(phrase, "**", ""),
	}
	if len(tested) > 0 {
		s.Context = maskedPattern.ReplaceAllLiteralString(phrase, Blank)
		s.TestedPart = strings.Join(tested, " ")
	} else {
		s.TestedPart = s.ToRead
	}
	return s
}

func singleItem(s Single) Item {
	return Item{
		Kind:       KindSingle,
		Original:   s.Original,
		ToRead:     s.ToRead,
		Context:    s.Context,
		TestedPart: s.TestedPart,
	}
}
