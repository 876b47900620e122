// FILE: pkg/assistant/guard/messages.go
// PURPOSE: Map accumulated guard errors to one user-facing fallback message

package guard

import (
	"strings"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
)

// FallbackMessage maps the error set to exactly one human-readable, mode-aware
// message using substring matching over the accumulated error text. This is a
// total function: every error combination yields one message, defaulting to
// the generic retry case.
func FallbackMessage(mode assistant.OperatingMode, errs []string) string {
	joined := strings.ToLower(strings.Join(errs, " | "))

	switch {
	case strings.Contains(joined, "market"):
		return "Permintaan ini menyangkut data pasar. Silakan buka mode Analisis Pasar untuk melihat harga dan grafik aset, karena mode saat ini tidak menampilkan data pasar."
	case strings.Contains(joined, "mismatch") || strings.Contains(joined, "invented") || strings.Contains(joined, "absent"):
		return "Data pada jawaban tidak sesuai dengan data yang Anda berikan, sehingga visualisasinya tidak ditampilkan. Silakan periksa kembali data Anda dan coba lagi."
	case strings.Contains(joined, "schema"):
		return "Format visualisasi dari jawaban tidak valid sehingga tidak dapat ditampilkan. Silakan coba kirim ulang pertanyaan Anda."
	default:
		return "Maaf, visualisasi tidak dapat ditampilkan saat ini. Silakan coba lagi."
	}
}

func containsAnyOf(s string, subs []string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
