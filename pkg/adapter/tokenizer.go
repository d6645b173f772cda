package adapter

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/pkoukk/tiktoken-go"
)

// fallback estimate when no encoding is available
const charsPerToken = 4

// Tokenizer counts tokens with tiktoken's cl100k_base encoding. When the
// encoding cannot be loaded (tiktoken fetches its vocabulary lazily) the
// counter falls back to a characters-per-token estimate.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenizer loads the cl100k_base encoding. The returned error is
// informational: a Tokenizer with a nil encoding still works in fallback
// mode.
func NewTokenizer() (*Tokenizer, error) {
	encoding, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	if err != nil {
		return &Tokenizer{}, goerr.Wrap(err, "failed to load tiktoken encoding")
	}
	return &Tokenizer{encoding: encoding}, nil
}

// Count returns the token count of text.
func (t *Tokenizer) Count(text string) int {
	if t == nil || t.encoding == nil {
		return (len(text) + charsPerToken - 1) / charsPerToken
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// Truncate cuts text down to at most maxTokens tokens. In fallback mode the
// cut is by the same character estimate.
func (t *Tokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}

	if t == nil || t.encoding == nil {
		maxChars := maxTokens * charsPerToken
		if len(text) <= maxChars {
			return text
		}
		return text[:maxChars]
	}

	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.encoding.Decode(tokens[:maxTokens])
}
