package kana

import (
	"strings"

	"github.com/samber/lo"
)

type MatchResult int

const (
	Reject MatchResult = iota
	Continue
	Complete
)

func (r MatchResult) String() string {
	switch r {
	case Continue:
		return "continue"
	case Complete:
		return "complete"
	default:
		return "reject"
	}
}

// vowels plus n: doubling these is not a valid sokuon spelling, and a bare
// "n" prefix would collide with the nasal rule.
func isDoubleableInitial(b byte) bool {
	switch b {
	case 'a', 'i', 'u', 'e', 'o', 'n':
		return false
	}
	return true
}

// ValidPatterns produces the ordered set of acceptable spellings for a token
// at its position in the word. Order is significant: the first entry is the
// canonical completion used for hinting.
//
// Geminate case: with a known next token, the first letters of the next
// token's own patterns are prepended as single-consonant entries, modeling
// doubled-consonant romanization (っ+た accepts "t" ahead of "xtu").
//
// Digraph case: a two-character fused token appends the pairwise
// cross-product of its halves' pattern lists after the direct entries
// (きゃ yields "kya" then "kixya", "kilya").
func ValidPatterns(token, next string) []string {
	if token == Geminate && next != "" {
		doubled := lo.FilterMap(ValidPatterns(next, ""), func(p string, _ int) (string, bool) {
			if p == "" || !isDoubleableInitial(p[0]) {
				return "", false
			}
			return string(p[0]), true
		})
		return append(lo.Uniq(doubled), table[Geminate]...)
	}

	direct := table[token]
	runes := []rune(token)
	if len(runes) != 2 {
		return direct
	}

	first := table[string(runes[0])]
	second := table[string(runes[1])]
	if len(first) == 0 || len(second) == 0 {
		return direct
	}
	patterns := make([]string, 0, len(direct)+len(first)*len(second))
	patterns = append(patterns, direct...)
	for _, a := range first {
		for _, b := range second {
			patterns = append(patterns, a+b)
		}
	}
	return patterns
}

// AmbiguousNasal reports whether a lone "n" must not auto-complete the
// nasal token: when the next token's romanization can itself start with a
// vowel, y or n, a single "n" has to wait for a disambiguating repeat or
// non-vowel key.
func AmbiguousNasal(token, next string) bool {
	if token != "ん" || next == "" {
		return false
	}
	return lo.SomeBy(ValidPatterns(next, ""), func(p string) bool {
		if p == "" {
			return false
		}
		switch p[0] {
		case 'a', 'i', 'u', 'e', 'o', 'y', 'n':
			return true
		}
		return false
	})
}

// MatchStep decides what appending key to buffer does against the token's
// patterns. Completion requires an exact pattern match and, when
// ambiguousNasal is set, forbids the bare "n" from completing early.
func MatchStep(buffer, key string, patterns []string, ambiguousNasal bool) MatchResult {
	next := buffer + key
	anyPrefix := lo.SomeBy(patterns, func(p string) bool {
		return strings.HasPrefix(p, next)
	})
	if !anyPrefix {
		return Reject
	}
	if lo.Contains(patterns, next) && !(ambiguousNasal && next == "n") {
		return Complete
	}
	return Continue
}

// CanonicalHint is the first acceptable spelling for the position, shown to
// the player as the suggested completion.
func CanonicalHint(token, next string) string {
	patterns := ValidPatterns(token, next)
	if len(patterns) == 0 {
		return ""
	}
	return patterns[0]
}
