package webassert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightPartialMatch(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		needle  string
		want    string
	}{
		{
			name:    "prefix at start",
			subject: "Hello Webdriver",
			needle:  "Hello World",
			want:    "Hello Webdriver\n^^^^^^^",
		},
		{
			name:    "prefix in the middle",
			subject: "Say Hello Webdriver",
			needle:  "Hello World",
			want:    "Say Hello Webdriver\n    ^^^^^^^",
		},
		{
			name:    "no match",
			subject: "Hello Webdriver",
			needle:  "Goodbye",
			want:    "Hello Webdriver",
		},
		{
			name:    "single rune is not enough",
			subject: "Hello",
			needle:  "Hx",
			want:    "Hello",
		},
		{
			name:    "second line",
			subject: "first\nsecond line",
			needle:  "second lime",
			want:    "first\nsecond line\n^^^^^^^^^",
		},
		{
			name:    "wide runes",
			subject: "日本語テキスト",
			needle:  "語テ!",
			want:    "日本語テキスト\n    ^^^^",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, highlightPartialMatch(tt.subject, tt.needle))
		})
	}
}

func TestValueDiff(t *testing.T) {
	diff := valueDiff("visibility: hidden;", "display: none;")

	assert.Contains(t, diff, "--- expected")
	assert.Contains(t, diff, "+++ actual")
	assert.Contains(t, diff, "-visibility: hidden;")
	assert.Contains(t, diff, "+display: none;")
}
