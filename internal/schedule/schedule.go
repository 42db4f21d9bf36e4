// Package schedule selects words deterministically from a seeded source.
// For a fixed seed and elapsed-time sequence the word sequence is identical
// on every platform, which is what lets the server replay a client session
// without re-running the browser.
package schedule

import (
	"strings"

	"github.com/samber/lo"

	"kanatype/internal/kana"
	"kanatype/internal/models"
	"kanatype/internal/prng"
)

// Sentinel is yielded when the active pool is empty, instead of failing.
var Sentinel = models.Word{Display: "NO DATA", Phonetic: "のでた"}

// Difficulty bands by phonetic token length, switched on elapsed seconds.
const (
	bandTwoAtSec   = 20
	bandThreeAtSec = 40
	bandFourAtSec  = 60
)

// BandRange returns the inclusive token-length range for the elapsed time.
func BandRange(elapsedSec float64) (minLen, maxLen int) {
	switch {
	case elapsedSec < bandTwoAtSec:
		return 1, 3
	case elapsedSec < bandThreeAtSec:
		return 3, 5
	case elapsedSec < bandFourAtSec:
		return 4, 6
	default:
		return 5, 20
	}
}

// ActiveWords filters the raw pool down to playable words. Words carrying
// the long-vowel mark stay in the raw pool but are never scheduled.
func ActiveWords(raw []models.Word) []models.Word {
	return lo.Filter(raw, func(w models.Word, _ int) bool {
		return !strings.Contains(w.Phonetic, kana.LongVowelMark)
	})
}

// SelectWord picks the next word for the elapsed time. Band selection
// degrades gracefully: an empty band falls back to the full active pool, an
// empty active pool yields the sentinel without advancing the source.
func SelectWord(active []models.Word, elapsedSec float64, src *prng.Source) models.Word {
	if len(active) == 0 {
		return Sentinel
	}
	minLen, maxLen := BandRange(elapsedSec)
	candidates := lo.Filter(active, func(w models.Word, _ int) bool {
		n := kana.Length(w.Phonetic)
		return n >= minLen && n <= maxLen
	})
	if len(candidates) == 0 {
		candidates = active
	}
	idx := int(src.Float() * float64(len(candidates)))
	if idx >= len(candidates) {
		idx = len(candidates) - 1
	}
	return candidates[idx]
}
