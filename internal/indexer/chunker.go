package indexer

import (
	"fmt"
	"unicode"
)

// Chunker splits text into overlapping rune windows.
//
// Each window holds at most Size runes. A window that does not reach the end of the
// text may end early, at the last whitespace within its final Overlap runes, so words
// are not cut. The next window always starts exactly Overlap runes before the end of
// the previous one, so chunk[0] followed by chunk[i][Overlap:] for every later chunk
// reproduces the text.
type Chunker struct {
	Size    int
	Overlap int
}

// NewChunker validates size and overlap.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{Size: size, Overlap: overlap}, nil
}

// Split returns the chunks of text. Empty text yields no chunks.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for {
		end := min(start+c.Size, n)
		if end < n {
			end = c.backoff(runes, start, end)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == n {
			return chunks
		}
		start = end - c.Overlap
	}
}

// backoff moves end back to just after the last whitespace in the final Overlap runes
// of the window. The lower bound keeps the next window start ahead of start.
func (c *Chunker) backoff(runes []rune, start, end int) int {
	lo := max(end-c.Overlap, start+c.Overlap)
	for j := end - 1; j >= lo; j-- {
		if unicode.IsSpace(runes[j]) {
			return j + 1
		}
	}
	return end
}

// Reassemble joins chunks produced with the given overlap back into the original text.
func Reassemble(chunks []string, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	out := []rune(chunks[0])
	for _, ch := range chunks[1:] {
		r := []rune(ch)
		if len(r) > overlap {
			out = append(out, r[overlap:]...)
		}
	}
	return string(out)
}
