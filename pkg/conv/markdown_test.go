package conv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "bold and italic survive",
			input:    "**bold** and *italic*",
			contains: []string{"<strong>bold</strong>", "<em>italic</em>"},
		},
		{
			name:     "code blocks survive",
			input:    "```go\nfmt.Println(1)\n```",
			contains: []string{"<code", "fmt.Println(1)"},
		},
		{
			name:     "disallowed tags stripped",
			input:    "# Heading\n\ntext",
			contains: []string{"text"},
			excludes: []string{"<h1>"},
		},
		{
			name:     "script injection stripped",
			input:    "hello <script>alert(1)</script>",
			contains: []string{"hello"},
			excludes: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarkdownToTelegramHTML([]byte(tt.input))
			for _, s := range tt.contains {
				assert.True(t, strings.Contains(got, s), "expected %q in %q", s, got)
			}
			for _, s := range tt.excludes {
				assert.False(t, strings.Contains(got, s), "did not expect %q in %q", s, got)
			}
		})
	}
}
