package chunker

import (
	"errors"
	"strings"
)

var (
	ErrBadMaxLen  = errors.New("chunker: maxLen must be positive")
	ErrBadOverlap = errors.New("chunker: overlap must be non-negative and smaller than maxLen")
)

// Chunk splits text into fixed-stride windows of at most maxLen runes where
// consecutive chunks share exactly overlap runes. It is a pure function:
// the same inputs always produce the same chunks, and Reassemble inverts it.
// Empty text yields no chunks; text shorter than maxLen yields one chunk
// with no overlap applied.
func Chunk(text string, maxLen, overlap int) ([]string, error) {
	if maxLen <= 0 {
		return nil, ErrBadMaxLen
	}
	if overlap < 0 || overlap >= maxLen {
		return nil, ErrBadOverlap
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}, nil
	}

	stride := maxLen - overlap
	var chunks []string
	for start := 0; ; start += stride {
		end := start + maxLen
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}

// Reassemble reconstructs the original text by dropping each chunk's
// leading overlap. Used to assert the round-trip law in tests.
func Reassemble(chunks []string, overlap int) string {
	var sb strings.Builder
	for i, c := range chunks {
		if i == 0 {
			sb.WriteString(c)
			continue
		}
		runes := []rune(c)
		if overlap >= len(runes) {
			continue
		}
		sb.WriteString(string(runes[overlap:]))
	}
	return sb.String()
}
