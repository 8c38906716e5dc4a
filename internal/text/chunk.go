package text

import (
	"strings"
	"unicode"
)

// DefaultChunkSize is the character budget per chunk.
const DefaultChunkSize = 1000

// SplitSentences splits s after '.', '!' or '?' when the terminator is
// followed by whitespace. Sentences are trimmed and empty ones dropped.
func SplitSentences(s string) []string {
	var (
		sentences []string
		start     int
	)
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				if sent := strings.TrimSpace(string(runes[start : i+1])); sent != "" {
					sentences = append(sentences, sent)
				}
				start = i + 1
			}
		}
	}
	if start < len(runes) {
		if sent := strings.TrimSpace(string(runes[start:])); sent != "" {
			sentences = append(sentences, sent)
		}
	}
	return sentences
}

// Chunk groups the sentences of s into chunks of at most budget characters,
// joining sentences with a single space. A sentence longer than the budget
// is emitted as a chunk of its own. A non-positive budget uses DefaultChunkSize.
func Chunk(s string, budget int) []string {
	if budget <= 0 {
		budget = DefaultChunkSize
	}

	var (
		chunks []string
		buf    strings.Builder
	)
	flush := func() {
		if buf.Len() > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
	}

	for _, sent := range SplitSentences(s) {
		if buf.Len() == 0 {
			buf.WriteString(sent)
			continue
		}
		if buf.Len()+1+len(sent) > budget {
			flush()
			buf.WriteString(sent)
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(sent)
	}
	flush()
	return chunks
}
