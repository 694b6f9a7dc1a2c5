package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_RoundTrip(t *testing.T) {
	texts := []string{
		"",
		"short",
		strings.Repeat("a", 500),
		strings.Repeat("abcde ", 200),
		"Lorem ipsum dolor sit amet, consectetuer adipiscing elit. Aenean commodo ligula eget dolor. " +
			"Aenean massa. Cum sociis natoque penatibus et magnis dis parturient montes.",
		"zażółć gęślą jaźń " + strings.Repeat("ü", 300), //multibyte
	}

	for _, text := range texts {
		chunks, err := Chunk(text, 100, 20)
		require.NoError(t, err)
		assert.Equal(t, text, Reassemble(chunks, 20), "round trip mismatch for %q", text[:min(len(text), 30)])
	}
}

func TestChunk_OverlapLaw(t *testing.T) {
	text := strings.Repeat("0123456789", 50)
	maxLen, overlap := 120, 30

	chunks, err := Chunk(text, maxLen, overlap)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), maxLen, "chunk %d exceeds maxLen", i)
		if i == 0 {
			continue
		}
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-overlap:])
		assert.True(t, strings.HasPrefix(c, tail), "chunk %d does not start with previous tail", i)
	}
}

func TestChunk_EdgeCases(t *testing.T) {
	chunks, err := Chunk("", 100, 10)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = Chunk("tiny", 100, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"tiny"}, chunks)

	_, err = Chunk("x", 0, 0)
	assert.ErrorIs(t, err, ErrBadMaxLen)

	_, err = Chunk("x", 10, 10)
	assert.ErrorIs(t, err, ErrBadOverlap)

	_, err = Chunk("x", 10, -1)
	assert.ErrorIs(t, err, ErrBadOverlap)
}

func TestChunk_Deterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox ", 100)
	first, err := Chunk(text, 500, 50)
	require.NoError(t, err)
	second, err := Chunk(text, 500, 50)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
