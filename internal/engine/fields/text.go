// internal/engine/fields/text.go
package fields

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Terms up to this many runes must match on word boundaries.
const shortTermLen = 3

// Fold returns the caseless form of s used for every case-insensitive match.
// A Caser is stateful, so a fresh one is built per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold is a case-insensitive substring test.
func ContainsFold(text, sub string) bool {
	return strings.Contains(Fold(text), Fold(sub))
}

// ContainsTerm reports whether text mentions term, ignoring case. Short
// abbreviations such as "fd" or "sip" only count as whole words so that
// "rd" does not match "standard".
func ContainsTerm(text, term string) bool {
	t := Fold(strings.TrimSpace(term))
	if t == "" {
		return false
	}
	h := Fold(text)
	if utf8.RuneCountInString(t) > shortTermLen {
		return strings.Contains(h, t)
	}

	for offset := 0; offset < len(h); {
		idx := strings.Index(h[offset:], t)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(t)
		if wordEdge(h[:start], true) && wordEdge(h[end:], false) {
			return true
		}
		_, size := utf8.DecodeRuneInString(h[start:])
		offset = start + size
	}
	return false
}

// ContainsAnyTerm reports whether any of the texts mentions any of the terms.
func ContainsAnyTerm(texts []string, terms []string) bool {
	for _, text := range texts {
		if text == "" {
			continue
		}
		for _, term := range terms {
			if ContainsTerm(text, term) {
				return true
			}
		}
	}
	return false
}

func wordEdge(side string, before bool) bool {
	if side == "" {
		return true
	}
	var r rune
	if before {
		r, _ = utf8.DecodeLastRuneInString(side)
	} else {
		r, _ = utf8.DecodeRuneInString(side)
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
