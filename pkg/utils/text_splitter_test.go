package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	t.Run("short text stays whole", func(t *testing.T) {
		chunks := SplitText("halo dunia", 100, 10)
		if len(chunks) != 1 || chunks[0] != "halo dunia" {
			t.Errorf("got %v", chunks)
		}
	})

	t.Run("chunks overlap", func(t *testing.T) {
		text := strings.Repeat("abcdefghij", 10) // 100 chars
		chunks := SplitText(text, 40, 10)

		if len(chunks) < 3 {
			t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
		}
		for i := 1; i < len(chunks); i++ {
			prevTail := chunks[i-1][len(chunks[i-1])-10:]
			if !strings.HasPrefix(chunks[i], prevTail) {
				t.Errorf("chunk %d does not start with the previous tail", i)
			}
		}
	})

	t.Run("full coverage", func(t *testing.T) {
		text := strings.Repeat("x", 95)
		chunks := SplitText(text, 40, 10)

		last := chunks[len(chunks)-1]
		if !strings.HasSuffix(text, last) {
			t.Error("last chunk must end the text")
		}
	})

	t.Run("multibyte characters survive", func(t *testing.T) {
		text := strings.Repeat("数据分析很有用。", 20)
		chunks := SplitText(text, 30, 5)

		for i, chunk := range chunks {
			if strings.ContainsRune(chunk, '�') {
				t.Errorf("chunk %d contains a broken rune", i)
			}
		}
	})

	t.Run("overlap larger than chunk falls back", func(t *testing.T) {
		chunks := SplitText(strings.Repeat("y", 50), 10, 20)
		if len(chunks) != 5 {
			t.Errorf("expected 5 non-overlapping chunks, got %d", len(chunks))
		}
	})
}
