package services

import (
	"strings"
	"unicode"
)

// Keywords tokenizes text into a set of lowercase keywords: maximal runs of
// word characters (letters and digits, ideographs included) at least two
// runes long. Punctuation and whitespace delimit runs.
func Keywords(text string) map[string]struct{} {
	set := make(map[string]struct{})
	var run []rune
	flush := func() {
		if len(run) >= 2 {
			set[strings.ToLower(string(run))] = struct{}{}
		}
		run = run[:0]
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			run = append(run, r)
		} else {
			flush()
		}
	}
	flush()
	return set
}

// KeywordOverlap computes the Jaccard ratio |A∩B| / |A∪B| of two keyword
// sets. Two empty sets overlap not at all.
func KeywordOverlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// FuzzyContains reports whether keyword is present in text: an exact
// substring always counts, and so does text containing every rune of the
// keyword in any order. The loose rune-subset rule matches how learners
// paraphrase element names; it is deliberately permissive.
func FuzzyContains(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	if strings.Contains(text, keyword) {
		return true
	}
	present := make(map[rune]struct{})
	for _, r := range text {
		present[r] = struct{}{}
	}
	for _, r := range keyword {
		if unicode.IsSpace(r) {
			continue
		}
		if _, ok := present[r]; !ok {
			return false
		}
	}
	return true
}

// runeLen counts runes, not bytes; submissions are frequently CJK.
func runeLen(s string) int {
	return len([]rune(s))
}

// containsAny reports whether text contains any of the markers.
func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
