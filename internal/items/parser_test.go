package items

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseSingle(t *testing.T) {
	tests := []struct {
		name   string
		phrase string
		want   Single
	}{
		{
			name:   "masked span",
			phrase: "The cat **sat** down.",
			want: Single{
				Original:   "The cat **sat** down.",
				ToRead:     "The cat sat down.",
				Context:    "The cat _______ down.",
				TestedPart: "sat",
			},
		},
		{
			name:   "two masked spans",
			phrase: "**A** and **B**",
			want: Single{
				Original:   "**A** and **B**",
				ToRead:     "A and B",
				Context:    "_______ and _______",
				TestedPart: "A B",
			},
		},
		{
			name:   "no span",
			phrase: "Hello world.",
			want: Single{
				Original:   "Hello world.",
				ToRead:     "Hello world.",
				TestedPart: "Hello world.",
			},
		},
		{
			name:   "unterminated marker",
			phrase: "The **cat sat.",
			want: Single{
				Original:   "The **cat sat.",
				ToRead:     "The cat sat.",
				TestedPart: "The cat sat.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSingle(tt.phrase)
			if got != tt.want {
				t.Errorf("ParseSingle(%q) = %+v, want %+v", tt.phrase, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKinds []Kind
		wantRead  []string // ToRead of singles, Original of paragraphs
	}{
		{
			name:      "numbering stripped",
			input:     "3. Hello\n12) Hi there",
			wantKinds: []Kind{KindSingle, KindSingle},
			wantRead:  []string{"Hello", "Hi there"},
		},
		{
			name:      "blank lines dropped",
			input:     "one\n\n   \n\ttwo\n",
			wantKinds: []Kind{KindSingle, KindSingle},
			wantRead:  []string{"one", "two"},
		},
		{
			name:      "masked line stays single",
			input:     "One. **Two** three. Four.",
			wantKinds: []Kind{KindSingle},
			wantRead:  []string{"One. Two three. Four."},
		},
		{
			name:      "paragraph",
			input:     "It rained. We stayed in. The cat slept.",
			wantKinds: []Kind{KindParagraph},
			wantRead:  []string{"It rained. We stayed in. The cat slept."},
		},
		{
			name:      "chinese terminators",
			input:     "我爱吃苹果。你呢？",
			wantKinds: []Kind{KindParagraph},
			wantRead:  []string{"我爱吃苹果。你呢？"},
		},
		{
			name:      "single sentence",
			input:     "Only one sentence here.",
			wantKinds: []Kind{KindSingle},
			wantRead:  []string{"Only one sentence here."},
		},
		{
			name:      "homoglyphs normalized",
			input:     "⽜奶和⽔",
			wantKinds: []Kind{KindSingle},
			wantRead:  []string{"牛奶和水"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if len(got) != len(tt.wantKinds) {
				t.Fatalf("Parse() returned %d items, want %d: %+v", len(got), len(tt.wantKinds), got)
			}
			for i, it := range got {
				if it.Kind != tt.wantKinds[i] {
					t.Errorf("item %d kind = %v, want %v", i, it.Kind, tt.wantKinds[i])
				}
				read := it.ToRead
				if it.IsParagraph() {
					read = it.Original
				}
				if read != tt.wantRead[i] {
					t.Errorf("item %d text = %q, want %q", i, read, tt.wantRead[i])
				}
			}
		})
	}
}

func TestParse_Paragraph(t *testing.T) {
	got := Parse("It rained. We stayed in. The **cat** slept!")
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}

	// The masked span keeps the line a single.
	if got[0].IsParagraph() {
		t.Fatalf("masked line parsed as paragraph")
	}

	got = Parse("It rained. We stayed in. The cat slept!")
	para := got[0]
	if !para.IsParagraph() {
		t.Fatalf("expected paragraph, got %v", para.Kind)
	}
	want := []string{"It rained.", "We stayed in.", "The cat slept!"}
	if para.SentenceCount() != len(want) {
		t.Fatalf("SentenceCount() = %d, want %d", para.SentenceCount(), len(want))
	}
	for i, s := range para.Sentences {
		if s.ToRead != want[i] || s.TestedPart != want[i] || s.Context != "" {
			t.Errorf("sentence %d = %+v, want plain %q", i, s, want[i])
		}
	}
	if para.TestedPart != para.Original {
		t.Errorf("paragraph TestedPart = %q, want whole line", para.TestedPart)
	}
}

func TestParse_LineCountPreserved(t *testing.T) {
	input := "1. apple\n2. The **dog** barked.\n\n3. banana split\n4) 我喜欢⽔果"
	got := Parse(input)
	want := []string{"apple", "The dog barked.", "banana split", "我喜欢水果"}
	if len(got) != len(want) {
		t.Fatalf("Parse() returned %d items, want %d", len(got), len(want))
	}
	for i, it := range got {
		if it.IsParagraph() {
			t.Errorf("item %d unexpectedly a paragraph", i)
		}
		if it.ToRead != want[i] {
			t.Errorf("item %d ToRead = %q, want %q", i, it.ToRead, want[i])
		}
	}
}

func TestParse_Sample(t *testing.T) {
	got := Parse(Sample)
	if len(got) != 11 {
		t.Fatalf("sample parsed to %d items, want 11", len(got))
	}
	for i := 0; i < 10; i++ {
		if got[i].IsParagraph() {
			t.Errorf("sample item %d should be single", i+1)
		}
		if got[i].Context == "" {
			t.Errorf("sample item %d should carry a context", i+1)
		}
	}
	if got[3].TestedPart != "eyebrows narrowed" {
		t.Errorf("item 4 TestedPart = %q", got[3].TestedPart)
	}
	if !got[10].IsParagraph() || got[10].SentenceCount() != 5 {
		t.Errorf("item 11 = %v with %d sentences, want paragraph of 5", got[10].Kind, got[10].SentenceCount())
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantLen int
	}{
		{name: "empty", input: "", wantErr: ErrEmptyInput},
		{name: "whitespace", input: "  \n\t ", wantErr: ErrEmptyInput},
		{name: "only numbering", input: "1.\n2)", wantErr: ErrNoItems},
		{name: "valid", input: "a\nb", wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseList(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseList() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseList() unexpected error: %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("ParseList() returned %d items, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestItem_Sentence(t *testing.T) {
	single := Parse("The **fox** ran.")[0]
	if s := single.Sentence(3); s.ToRead != "The fox ran." || s.Context != "The _______ ran." {
		t.Errorf("single Sentence() = %+v", s)
	}

	para := Parse("One two. Three four.")[0]
	if s := para.Sentence(-1); s.ToRead != "One two." {
		t.Errorf("Sentence(-1) = %q, want first", s.ToRead)
	}
	if s := para.Sentence(9); s.ToRead != "Three four." {
		t.Errorf("Sentence(9) = %q, want last", s.ToRead)
	}
}

func TestTestedParts(t *testing.T) {
	got := TestedParts(Parse("The **cat** sat.\nA dog.\n**x** and **y**"))
	want := []string{"cat", "A dog.", "x y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TestedParts() = %v, want %v", got, want)
	}
}
