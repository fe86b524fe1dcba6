package prompt

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
	encodingErr  error
)

// TokenCount estimates the token footprint of a prompt with the cl100k_base
// encoding. Falls back to a bytes/4 guess when the encoding is unavailable.
func TokenCount(text string) int {
	encodingOnce.Do(func() {
		encoding, encodingErr = tiktoken.GetEncoding("cl100k_base")
	})
	if encodingErr != nil {
		return len(text) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}
