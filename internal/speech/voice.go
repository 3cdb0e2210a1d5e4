package speech

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Voice is a voice offered by an engine.
type Voice struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Lang   string `yaml:"lang"`
	Engine string `yaml:"engine"`

	LocalService bool `yaml:"local"`
	Default      bool `yaml:"default"`
}

// String renders the voice the way it is listed to the user.
func (v Voice) String() string {
	return fmt.Sprintf("%s (%s)", v.Name, v.Lang)
}

// IsChinese reports whether the voice speaks Chinese.
func (v Voice) IsChinese() bool {
	return strings.HasPrefix(strings.ToLower(v.Lang), "zh")
}

// languages lists the supported language prefixes in display order.
var languages = []struct{ prefix, group string }{
	{"en", "English"},
	{"zh", "Chinese"},
}

// Score rates how natural a voice is likely to sound. Higher is better.
func Score(v Voice) int {
	name := strings.ToLower(v.Name)
	score := 0
	if strings.Contains(name, "alex") {
		score += 100
	}
	if strings.Contains(name, "samantha") {
		score += 90
	}
	if strings.Contains(name, "siri") {
		score += 80
	}
	if strings.Contains(name, "premium") || strings.Contains(name, "enhanced") {
		score += 50
	}
	if v.LocalService {
		score += 20
	}
	if v.Default {
		score += 10
	}
	if strings.HasPrefix(strings.ToLower(v.Lang), "en-us") {
		score += 5
	}
	return score
}

// Group names the language group of lang, or "" if it is unsupported.
func Group(lang string) string {
	for _, l := range languages {
		if strings.HasPrefix(lang, l.prefix) {
			return l.group
		}
	}
	return ""
}

// Eligible keeps the English and Chinese voices.
func Eligible(voices []Voice) []Voice {
	var out []Voice
	for _, v := range voices {
		if Group(v.Lang) != "" {
			out = append(out, v)
		}
	}
	return out
}

// Rank returns the eligible voices, best first. Equal scores keep their
// original order.
func Rank(voices []Voice) []Voice {
	ranked := Eligible(voices)
	slices.SortStableFunc(ranked, func(a, b Voice) int {
		return cmp.Compare(Score(b), Score(a))
	})
	return ranked
}

// Grouped splits ranked voices by language group, English first.
func Grouped(voices []Voice) map[string][]Voice {
	groups := make(map[string][]Voice)
	for _, v := range Rank(voices) {
		g := Group(v.Lang)
		groups[g] = append(groups[g], v)
	}
	return groups
}

// GroupNames returns the group names in display order.
func GroupNames() []string {
	names := make([]string, len(languages))
	for i, l := range languages {
		names[i] = l.group
	}
	return names
}

// Select returns the eligible voice with the given ID, or the best ranked
// voice when id is empty or unknown.
func Select(voices []Voice, id string) (Voice, error) {
	ranked := Rank(voices)
	if len(ranked) == 0 {
		return Voice{}, ErrNoVoices
	}
	if id != "" {
		for _, v := range ranked {
			if v.ID == id {
				return v, nil
			}
		}
	}
	return ranked[0], nil
}
