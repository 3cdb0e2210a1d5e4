package items

import "errors"

var (
	// ErrEmptyInput is returned when the list is empty or only whitespace.
	ErrEmptyInput = errors.New("Please enter a list of words or sentences.") //nolint:staticcheck

	// ErrNoItems is returned when the list holds text but nothing survives parsing.
	ErrNoItems = errors.New("No valid items found in the list.") //nolint:staticcheck
)

// Kind identifies the variant of a test item.
type Kind int

const (
	// KindSingle is one phrase, optionally with masked spans.
	KindSingle Kind = iota
	// KindParagraph is two or more sentences read in order.
	KindParagraph
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindParagraph:
		return "paragraph"
	default:
		return "unknown"
	}
}

// Single is one phrase of a test.
type Single struct {
	Original   string `yaml:"original"`
	ToRead     string `yaml:"to_read"`
	Context    string `yaml:"context,omitempty"`
	TestedPart string `yaml:"tested_part"`
}

// Item is a single phrase or a paragraph of sentences.
// ToRead and Context are only set for singles; Sentences only for paragraphs.
type Item struct {
	Kind       Kind     `yaml:"-"`
	Original   string   `yaml:"original"`
	ToRead     string   `yaml:"to_read,omitempty"`
	Context    string   `yaml:"context,omitempty"`
	Sentences  []Single `yaml:"sentences,omitempty"`
	TestedPart string   `yaml:"tested_part"`
}

// IsParagraph reports whether the item is read sentence by sentence.
func (it Item) IsParagraph() bool {
	return it.Kind == KindParagraph
}

// SentenceCount returns the number of readable sentences. A single counts as one.
func (it Item) SentenceCount() int {
	if it.IsParagraph() {
		return len(it.Sentences)
	}
	return 1
}

// Sentence returns the i-th readable sentence. Out of range indexes are
// clamped, and a single is its own only sentence.
func (it Item) Sentence(i int) Single {
	if !it.IsParagraph() {
		return Single{
			Original:   it.Original,
			ToRead:     it.ToRead,
			Context:    it.Context,
			TestedPart: it.TestedPart,
		}
	}
	if len(it.Sentences) == 0 {
		return Single{}
	}
	if i < 0 {
		i = 0
	}
	if i >= len(it.Sentences) {
		i = len(it.Sentences) - 1
	}
	return it.Sentences[i]
}

// TestedParts returns the tested part of every item, in order.
func TestedParts(list []Item) []string {
	parts := make([]string, 0, len(list))
	for _, it := range list {
		parts = append(parts, it.TestedPart)
	}
	return parts
}
