// Package normalize canonicalizes text so that indexing and querying agree.
//
// One policy is applied everywhere, at save time and at query time:
//
//  1. NFKC normalization (full-width alnum to half-width, half-width kana to full-width)
//  2. katakana v-sounds to b-sounds (ヴァ → バ)
//  3. hyphen-family characters to the prolonged sound mark ー
//  4. small kana widened (ウィ → ウイ; the sokuon ッ/っ is kept)
//  5. ASCII lowercasing
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var hyphenReplacer = strings.NewReplacer(
	"-", "ー",
	"‐", "ー",
	"‑", "ー",
	"‒", "ー",
	"–", "ー",
	"—", "ー",
	"―", "ー",
	"⁻", "ー",
	"₋", "ー",
	"−", "ー",
	"﹣", "ー",
	"－", "ー",
)

var vSoundReplacer = strings.NewReplacer(
	"ヴァ", "バ",
	"ヴィ", "ビ",
	"ヴェ", "ベ",
	"ヴォ", "ボ",
	"ヴ", "ブ",
)

// Small kana widened to their full-size forms. ッ/っ mark gemination and stay as-is.
var smallKanaReplacer = strings.NewReplacer(
	"ァ", "ア",
	"ィ", "イ",
	"ゥ", "ウ",
	"ェ", "エ",
	"ォ", "オ",
	"ぁ", "あ",
	"ぃ", "い",
	"ぅ", "う",
	"ぇ", "え",
	"ぉ", "お",
)

// Text applies the canonical normalization policy. Idempotent and deterministic.
func Text(s string) string {
	s = norm.NFKC.String(s)
	s = vSoundReplacer.Replace(s)
	s = hyphenReplacer.Replace(s)
	s = smallKanaReplacer.Replace(s)
	return strings.ToLower(s)
}

// ReadingFunc returns a canonical pronunciation key for text, used for
// exact-match bonuses in scored search. Returns ("", false) when no
// reading is available.
type ReadingFunc func(text string) (string, bool)

// NoReading is the default reading provider: no reading available.
// A morphological analyzer can be injected where okurigana variants
// (打ち合わせ / 打合せ) need to match.
func NoReading(string) (string, bool) { return "", false }
