package transcript

import (
	"regexp"
	"strings"
)

// DefaultChunkThreshold is the maximum chunk length in characters. Long
// transcripts are split so one extraction request stays inside the
// backend's context window.
const DefaultChunkThreshold = 100000

var sentenceEndRe = regexp.MustCompile(`([.!?])\s+`)

// Chunker splits oversized transcripts into bounded segments at sentence
// boundaries, falling back to word boundaries for pathological sentences.
type Chunker struct {
	threshold int
}

// NewChunker creates a Chunker with the given maximum chunk length.
// Non-positive thresholds fall back to the default.
func NewChunker(threshold int) *Chunker {
	if threshold <= 0 {
		threshold = DefaultChunkThreshold
	}
	return &Chunker{threshold: threshold}
}

// Split returns the text in order as chunks no longer than the threshold.
// Sentences are packed greedily; a single sentence longer than the threshold
// is split again on word boundaries. Only an indivisible word can exceed the
// threshold. Concatenating the chunks reproduces the input modulo the
// whitespace inserted at chunk boundaries.
func (c *Chunker) Split(text string) []string {
	if len(text) <= c.threshold {
		return []string{text}
	}

	sentences := splitSentences(text)

	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, sentence := range sentences {
		if len(sentence) > c.threshold {
			// Pathological sentence: pack words instead
			flush()
			for _, word := range strings.Fields(sentence) {
				if current.Len() > 0 && current.Len()+1+len(word) > c.threshold {
					flush()
				}
				if current.Len() > 0 {
					current.WriteString(" ")
				}
				current.WriteString(word)
			}
			flush()
			continue
		}

		if current.Len() > 0 && current.Len()+1+len(sentence) > c.threshold {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	flush()

	return chunks
}

// splitSentences cuts text after end-of-sentence punctuation followed by
// whitespace, keeping the punctuation with the sentence.
func splitSentences(text string) []string {
	marked := sentenceEndRe.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}
