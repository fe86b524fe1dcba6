// Package keywords is the one tokenizer behind every relevance heuristic in
// the agent: skill matching, episode recall and tag derivation all go through
// it so their scoring never diverges. Everything here is pure.
package keywords

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	quotedRe = regexp.MustCompile(`"([^"]+)"`)
	hanRe    = regexp.MustCompile(`\p{Han}{2,4}`)
	wordRe   = regexp.MustCompile(`[a-z0-9_]{3,}`)
)

// Extract returns the deduplicated keyword list for text, in first-seen
// order: quoted trigger phrases verbatim, CJK 2-4 grams, then word runs of
// three or more characters. Matching is case-insensitive.
func Extract(text string) []string {
	lower := strings.ToLower(text)

	var out []string
	seen := make(map[string]struct{})
	add := func(kw string) {
		if _, ok := seen[kw]; ok {
			return
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}

	for _, m := range quotedRe.FindAllStringSubmatch(lower, -1) {
		add(m[1])
	}
	for _, m := range hanRe.FindAllString(lower, -1) {
		add(m)
	}
	for _, m := range wordRe.FindAllString(lower, -1) {
		add(m)
	}
	return out
}

// Weight is the score contribution of one matched keyword: longer keywords
// count double.
func Weight(kw string) float64 {
	if utf8.RuneCountInString(kw) > 2 {
		return 2
	}
	return 1
}

// tagEntry keeps the dictionary iteration order fixed so derived tag lists
// are deterministic.
type tagEntry struct {
	tag      string
	triggers []string
}

var tagDictionary = []tagEntry{
	{"browser", []string{"浏览器", "网页", "打开", "访问", "browser", "web", "page"}},
	{"chatgpt", []string{"chatgpt", "gpt", "openai"}},
	{"code", []string{"代码", "执行", "运行", "code", "execute", "run"}},
	{"file", []string{"文件", "保存", "读取", "file", "save", "read"}},
	{"search", []string{"搜索", "查找", "search", "find"}},
}

// Tags derives the task's tag set from a fixed trigger dictionary. The
// result is duplicate-free and ordered by dictionary position.
func Tags(text string) []string {
	lower := strings.ToLower(text)

	var tags []string
	for _, entry := range tagDictionary {
		for _, trigger := range entry.triggers {
			if strings.Contains(lower, trigger) {
				tags = append(tags, entry.tag)
				break
			}
		}
	}
	return tags
}
