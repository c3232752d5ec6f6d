package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a new chunker
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 4
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// ChunkPages joins ordered page texts and splits the result into
// overlapping chunks. Deterministic for a given input and configuration.
func (c *Chunker) ChunkPages(pages []string) []string {
	return c.ChunkText(strings.Join(pages, "\n"))
}

func (c *Chunker) ChunkText(text string) []string {
	// clean text
	text = strings.TrimSpace(text)
	text = cleanText(text)

	if len(text) == 0 {
		return nil
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + c.chunkSize
		if end > len(text) {
			end = len(text)
		}

		// try to break at a sentence boundary in the back half
		if end < len(text) {
			for i := end; i > start+c.chunkSize/2; i-- {
				if text[i] == '.' || text[i] == '!' || text[i] == '?' {
					end = i + 1
					break
				}
			}
		}

		// never cut inside a multi-byte rune
		for end < len(text) && end > start && !utf8.RuneStart(text[end]) {
			end--
		}
		chunk := strings.TrimSpace(text[start:end])
		if len(chunk) > 0 {
			chunks = append(chunks, chunk)
		}

		if end >= len(text) {
			break
		}

		// move the window back by the overlap, always making progress
		newStart := end - c.chunkOverlap
		if newStart <= start {
			newStart = start + 1
		}
		for newStart < len(text) && !utf8.RuneStart(text[newStart]) {
			newStart++
		}
		start = newStart
	}

	return chunks
}

func cleanText(text string) string {
	// collapse whitespace runs to a single space
	var result strings.Builder
	prevSpace := false

	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace {
				result.WriteRune(' ')
				prevSpace = true
			}
		} else {
			result.WriteRune(r)
			prevSpace = false
		}
	}

	return result.String()
}
