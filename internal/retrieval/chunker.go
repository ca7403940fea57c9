// Package retrieval turns documents into searchable semantic indices and
// retrieves the most relevant passages for a query.
package retrieval

import (
	"strings"

	"github.com/hyperjump/kaiwa/pkg/utils"
)

// Chunker splits extracted text into bounded-size passages on paragraph
// boundaries.
type Chunker struct {
	maxWords int
}

// NewChunker creates a chunker with the given word budget per chunk.
func NewChunker(maxWords int) *Chunker {
	if maxWords <= 0 {
		maxWords = 200
	}
	return &Chunker{maxWords: maxWords}
}

// Chunk splits text into ordered chunk strings. Paragraphs (non-empty lines)
// are accumulated greedily until adding the next one would exceed the word
// budget. A single paragraph longer than the budget is emitted whole as its
// own oversized chunk rather than split mid-paragraph. Empty input yields nil;
// callers must treat that as a hard failure for indexing.
func (c *Chunker) Chunk(text string) []string {
	var paragraphs []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentWords := 0
	for _, para := range paragraphs {
		words := utils.WordCount(para)
		if currentWords > 0 && currentWords+words > c.maxWords {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
			currentWords = 0
		}
		current = append(current, para)
		currentWords += words
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}
