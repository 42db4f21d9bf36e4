// Package kana holds the phonetic table, the tokenizer and the input
// matcher shared by the live play engine and the replay verifier.
package kana

// Tokenize splits a phonetic word into syllable tokens, fusing a base
// character with a following small vowel or glide into one token. The
// geminate marker stays a token of its own so the matcher can borrow the
// next token's initial consonant. Total and deterministic: unknown
// characters become singleton tokens and are rejected later by the matcher,
// never here. Concatenating the result reconstructs the input exactly.
func Tokenize(word string) []string {
	runes := []rune(word)
	tokens := make([]string, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		if i+1 < len(runes) {
			if _, small := smallFuse[runes[i+1]]; small {
				tokens = append(tokens, string(runes[i])+string(runes[i+1]))
				i++
				continue
			}
		}
		tokens = append(tokens, string(runes[i]))
	}
	return tokens
}

// Length is the phonetic length of a word in tokens, used for difficulty
// banding and scoring.
func Length(word string) int {
	return len(Tokenize(word))
}

// Known reports whether a token is typeable against the table. The long
// vowel mark counts as known so corpus rows carrying it load into the raw
// pool; the scheduler keeps them out of the active pool.
func Known(token string) bool {
	if token == LongVowelMark {
		return true
	}
	return len(ValidPatterns(token, "")) > 0
}

// WordTypeable reports whether every token of a phonetic word is known.
func WordTypeable(phonetic string) bool {
	tokens := Tokenize(phonetic)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !Known(tok) {
			return false
		}
	}
	return true
}
