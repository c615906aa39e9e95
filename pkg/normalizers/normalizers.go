// Package normalizers provides field normalization functions for duplicate matching
package normalizers

import (
	"strings"
	"unicode"
)

// diacriticFolds maps accented characters to their unaccented base
// letters. Covers Greek vowels with tonos/dialytika (final sigma folds to
// sigma) plus the Latin accents that show up in imported records.
// Unmapped characters pass through unchanged.
var diacriticFolds = map[rune]rune{
	'ά': 'α', 'έ': 'ε', 'ή': 'η', 'ί': 'ι', 'ϊ': 'ι', 'ΐ': 'ι',
	'ό': 'ο', 'ύ': 'υ', 'ϋ': 'υ', 'ΰ': 'υ', 'ώ': 'ω', 'ς': 'σ',
	'á': 'a', 'à': 'a', 'â': 'a', 'ä': 'a', 'ã': 'a', 'å': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'ö': 'o', 'õ': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ý': 'y', 'ç': 'c', 'ñ': 'n',
}

// NormalizeText lowercases, trims and folds diacritics so that values can
// be compared. Total function; applying it twice yields the same result.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if folded, ok := diacriticFolds[r]; ok {
			r = folded
		}
		result.WriteRune(r)
	}
	return result.String()
}

// DigitsOnly keeps only digit characters
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// NormalizeTaxID strips every non-digit character from a tax identifier.
func NormalizeTaxID(s string) string {
	return DigitsOnly(s)
}

const (
	mobilePrefix = "69"
	mobileLength = 10
)

// NormalizePhone strips every non-digit character from a phone number.
// Mobile numbers (69 prefix) are fixed length in this locale, so anything
// past ten digits on them is trailing noise and is dropped.
func NormalizePhone(s string) string {
	digits := DigitsOnly(s)
	if strings.HasPrefix(digits, mobilePrefix) && len(digits) >= mobileLength {
		return digits[:mobileLength]
	}
	return digits
}
