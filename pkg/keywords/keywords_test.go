package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "english words three chars and up",
			input:    "open github.com and read the trending page",
			expected: []string{"open", "github", "com", "and", "read", "the", "trending", "page"},
		},
		{
			name:     "short tokens dropped",
			input:    "go to it",
			expected: nil,
		},
		{
			name:     "case folded and deduplicated",
			input:    "Search SEARCH search",
			expected: []string{"search"},
		},
		{
			name:     "quoted phrases kept verbatim and first",
			input:    `triggers on "ask chatgpt" or chatgpt mentions`,
			expected: []string{"ask chatgpt", "triggers", "ask", "chatgpt", "mentions"},
		},
		{
			name:     "cjk greedy four gram",
			input:    "打开浏览器",
			expected: []string{"打开浏览"}, // trailing single char is below the bigram floor
		},
		{
			name:     "mixed scripts",
			input:    "用 chatgpt 搜索资料",
			expected: []string{"搜索资料", "chatgpt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Extract(tt.input))
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	input := `"ask chatgpt" then 打开网页 and save the file`
	first := Extract(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Extract(input))
	}
}

func TestWeight(t *testing.T) {
	assert.Equal(t, float64(2), Weight("github"))
	assert.Equal(t, float64(2), Weight("浏览器"))
	assert.Equal(t, float64(1), Weight("go"))
	assert.Equal(t, float64(1), Weight("打开"))
}

func TestTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"browser task", "open github.com in the browser", []string{"browser"}},
		{"chatgpt task", "ask ChatGPT about go generics", []string{"chatgpt"}},
		{"multiple tags ordered by dictionary", "run some code and save the file", []string{"code", "file"}},
		{"cjk triggers", "打开网页搜索资料", []string{"browser", "search"}},
		{"no tags", "summarize this text", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tags(tt.input))
		})
	}
}

func TestTagsNoDuplicates(t *testing.T) {
	tags := Tags("browser web page browser web")
	assert.Equal(t, []string{"browser"}, tags)
}
