package speech

import "testing"

func TestAnnouncement(t *testing.T) {
	tests := []struct {
		lang string
		n    int
		want string
	}{
		{"en-US", 1, "Number 1"},
		{"en-GB", 12, "Number 12"},
		{"", 3, "Number 3"},
		{"zh-CN", 4, "第 4 题"},
		{"zh-TW", 10, "第 10 题"},
	}
	for _, tt := range tests {
		if got := Announcement(tt.lang, tt.n); got != tt.want {
			t.Errorf("Announcement(%q, %d) = %q, want %q", tt.lang, tt.n, got, tt.want)
		}
	}
}

func TestVerbalize(t *testing.T) {
	p := pause
	tests := []struct {
		name string
		lang string
		text string
		want string
	}{
		{
			name: "english sentence",
			lang: "en-US",
			text: "Hi, there.",
			want: "Hi" + p + "comma" + p + " there" + p + "period" + p,
		},
		{
			name: "english dashes",
			lang: "en-GB",
			text: "well-known—yes",
			want: "well" + p + "dash" + p + "known" + p + "em dash" + p + "yes",
		},
		{
			name: "english quote and parens",
			lang: "en-US",
			text: `"(a)"`,
			want: p + "quote" + p + p + "open parenthesis" + p + "a" + p + "close parenthesis" + p + p + "quote" + p,
		},
		{
			name: "chinese full width",
			lang: "zh-CN",
			text: "你好，世界！",
			want: "你好" + p + "逗号" + p + "世界" + p + "感叹号" + p,
		},
		{
			name: "chinese ascii marks",
			lang: "zh-CN",
			text: "好.",
			want: "好" + p + "句号" + p,
		},
		{
			name: "chinese quotes",
			lang: "zh-TW",
			text: "“书”《书名》",
			want: p + "左引号" + p + "书" + p + "右引号" + p + p + "左书名号" + p + "书名" + p + "右书名号" + p,
		},
		{
			name: "no punctuation",
			lang: "en-US",
			text: "plain words",
			want: "plain words",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Verbalize(tt.lang, tt.text); got != tt.want {
				t.Errorf("Verbalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVerbalize_DoesNotMutateInput(t *testing.T) {
	text := "Stop."
	_ = Verbalize("en-US", text)
	if got := Verbalize("en-US", text); got != "Stop"+pause+"period"+pause {
		t.Errorf("second call = %q", got)
	}
}
