package expect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		subject   string
		words     string
		notWords  string
		negatable bool
		args      []ArgShape
	}{
		{
			name:    "no args",
			pattern: "<WebElement> to exist",
			subject: "WebElement",
			words:   "to exist",
		},
		{
			name:    "variadic",
			pattern: "<WebElement> to contain text <string+>",
			subject: "WebElement",
			words:   "to contain text",
			args:    []ArgShape{{Type: "string", Variadic: true}},
		},
		{
			name:      "negatable",
			pattern:   "<WebElement>   [not] to have attribute <string>",
			subject:   "WebElement",
			words:     "to have attribute",
			notWords:  "not to have attribute",
			negatable: true,
			args:      []ArgShape{{Type: "string"}},
		},
		{
			name:      "not in the middle",
			pattern:   "<any> to [not] be <string> <string>",
			subject:   "any",
			words:     "to be",
			notWords:  "to not be",
			negatable: true,
			args:      []ArgShape{{Type: "string"}, {Type: "string"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parsePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.subject, a.Subject)
			assert.Equal(t, tt.words, a.Words)
			assert.Equal(t, tt.notWords, a.NotWords)
			assert.Equal(t, tt.negatable, a.Negatable)
			assert.Equal(t, tt.args, a.Args)
		})
	}
}

func TestParsePattern_Invalid(t *testing.T) {
	patterns := []string{
		"",
		"to exist",
		"<WebElement>",
		"<WebElement> <string>",
		"<WebElement> to contain <string+> <string>",
		"<WebElement> to contain <string> text",
		"<WebElement> [not] to [not] exist",
		"<string+> to exist",
	}

	for _, p := range patterns {
		t.Run(p, func(t *testing.T) {
			_, err := parsePattern(p)
			assert.Error(t, err)
		})
	}
}

func TestArgShape_String(t *testing.T) {
	assert.Equal(t, "<string+>", ArgShape{Type: "string", Variadic: true}.String())
	assert.Equal(t, "<regexp>", ArgShape{Type: "regexp"}.String())
}
