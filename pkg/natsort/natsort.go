// Package natsort implements a total order on strings that compares
// embedded integer runs numerically instead of byte-by-byte, so that
// reference names such as "chr1", "chr2", "chr10" sort in the order a human
// expects rather than lexicographic order. A Roman-numeral variant is
// provided for yeast and worm chromosome naming (I, II, ..., XVI).
package natsort

import (
	"strconv"
	"strings"
)

// tokenize splits s into runs of same-class characters, in order. Each set
// in classes is one character class; characters in none of them form a
// further class of their own.
func tokenize(s string, classes ...string) []string {
	if s == "" {
		return nil
	}
	class := func(b byte) int {
		for i, set := range classes {
			if strings.IndexByte(set, b) >= 0 {
				return i
			}
		}
		return -1
	}
	var tokens []string
	start := 0
	cur := class(s[0])
	for i := 1; i < len(s); i++ {
		c := class(s[i])
		if c != cur {
			tokens = append(tokens, s[start:i])
			start = i
			cur = c
		}
	}
	tokens = append(tokens, s[start:])
	return tokens
}

// Less reports whether s1 sorts before s2 under natural-numeric order:
// digit runs compare by magnitude, non-digit runs compare lexicographically,
// and ties fall back to a raw byte comparison.
func Less(s1, s2 string) bool {
	if s1 == s2 {
		return false
	}
	if s1 == "" {
		return s2 != ""
	}
	if s2 == "" {
		return false
	}

	tokens1 := tokenize(s1, "0123456789")
	tokens2 := tokenize(s2, "0123456789")

	for i, t1 := range tokens1 {
		if i >= len(tokens2) {
			return false
		}
		t2 := tokens2[i]

		if isOnlyDigits(t1) && isOnlyDigits(t2) {
			d1, err1 := strconv.ParseUint(t1, 10, 64)
			d2, err2 := strconv.ParseUint(t2, 10, 64)
			if err1 == nil && err2 == nil && d1 != d2 {
				return d1 < d2
			}
		} else if t1 != t2 {
			return t1 < t2
		}
	}

	return s1 < s2
}

// LessRoman is the Roman-numeral variant of Less: runs made up of Roman
// numeral characters (M, D, C, L, X, V, I) are additionally compared by
// their numeral value when both tokens parse as valid Roman numerals.
func LessRoman(s1, s2 string) bool {
	if s1 == s2 {
		return false
	}
	if s1 == "" {
		return s2 != ""
	}
	if s2 == "" {
		return false
	}

	tokens1 := tokenize(s1, "0123456789", "CDILMVX")
	tokens2 := tokenize(s2, "0123456789", "CDILMVX")

	for i, t1 := range tokens1 {
		if i >= len(tokens2) {
			return false
		}
		t2 := tokens2[i]

		switch {
		case IsRomanNumeral(t1) && IsRomanNumeral(t2):
			d1, d2 := RomanToInt(t1), RomanToInt(t2)
			if d1 != d2 {
				return d1 < d2
			}
		case isOnlyDigits(t1) && isOnlyDigits(t2):
			d1, err1 := strconv.ParseUint(t1, 10, 64)
			d2, err2 := strconv.ParseUint(t2, 10, 64)
			if err1 == nil && err2 == nil && d1 != d2 {
				return d1 < d2
			}
		default:
			if t1 != t2 {
				return t1 < t2
			}
		}
	}

	return s1 < s2
}

func isOnlyDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

var romanConversions = []struct {
	symbol string
	value  int
}{
	{"M", 1000}, {"CM", 900}, {"D", 500}, {"CD", 400},
	{"C", 100}, {"XC", 90}, {"L", 50}, {"XL", 40},
	{"X", 10}, {"IX", 9}, {"V", 5}, {"IV", 4}, {"I", 1},
}

// IntToRoman renders i (expected to be a small positive integer, e.g. a
// yeast or worm chromosome number) as a Roman numeral.
func IntToRoman(i int) string {
	var b strings.Builder
	for _, c := range romanConversions {
		for i >= c.value {
			b.WriteString(c.symbol)
			i -= c.value
		}
	}
	return b.String()
}

// RomanToInt parses a Roman numeral by greedy prefix matching. Parsing
// stops at the first character that does not continue the numeral and the
// rest of the string is ignored, so a string with no Roman prefix parses
// to 0.
func RomanToInt(s string) int {
	value := 0
	pos := 0
	for _, c := range romanConversions {
		for strings.HasPrefix(s[pos:], c.symbol) {
			value += c.value
			pos += len(c.symbol)
		}
	}
	return value
}

// IsRomanNumeral reports whether s parses to a positive Roman numeral
// value, i.e. RomanToInt(s) > 0.
func IsRomanNumeral(s string) bool {
	return RomanToInt(s) > 0
}
