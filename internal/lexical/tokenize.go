// Package lexical scores token overlap between queries and memory content,
// complementing semantic search with exact keyword weight.
package lexical

import (
	"strings"
	"unicode"
)

func isJapanese(r rune) bool {
	return unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han)
}

func isWordRune(r rune) bool {
	return r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// Tokenize splits text into ASCII words (lowercased) and Japanese character
// bigrams. Bigrams catch shared substrings without a morphological analyzer:
// 打ち合わせ and 打合せ score low against each other here but the semantic
// layer covers that gap.
func Tokenize(text string) []string {
	var tokens []string
	var word strings.Builder
	var jp []rune

	flushWord := func() {
		if word.Len() > 0 {
			tokens = append(tokens, strings.ToLower(word.String()))
			word.Reset()
		}
	}

	for _, r := range text {
		switch {
		case isWordRune(r):
			word.WriteRune(r)
		case isJapanese(r):
			flushWord()
			jp = append(jp, r)
		default:
			flushWord()
		}
	}
	flushWord()

	for i := 0; i+1 < len(jp); i++ {
		tokens = append(tokens, string(jp[i])+string(jp[i+1]))
	}
	return tokens
}
