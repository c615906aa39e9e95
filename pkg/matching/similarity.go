package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// Scorer computes per-field similarity scores between a search input and
// a candidate record. All scores are integers in [0, 100]; a blank side
// always scores 0.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// NameSimilarity scores two company names. Prefix and substring
// relationships are scored by relative length so that "acme" against
// "acme corporation" still ranks high; unrelated names fall through to a
// token-sorted Levenshtein ratio, which makes the score word-order
// independent.
func (s *Scorer) NameSimilarity(a, b string) int {
	a = normalizers.NormalizeText(a)
	b = normalizers.NormalizeText(b)

	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	aLen := len([]rune(a))
	bLen := len([]rune(b))
	minLen := min(aLen, bLen)
	maxLen := max(aLen, bLen)
	ratio := float64(minLen) / float64(maxLen)

	if strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
		if minLen >= 4 && ratio >= 0.5 {
			return int(math.Round(60 + ratio*40))
		}
		if minLen >= 2 && ratio >= 0.15 {
			return int(math.Round(65 + ratio*30))
		}
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		if minLen >= 4 {
			return int(math.Round(65 + ratio*30))
		}
		if minLen >= 2 {
			return int(math.Round(65 + ratio*15))
		}
	}

	return s.TokenSortRatio(a, b)
}

// TokenSortRatio sorts the whitespace tokens of both strings, rejoins
// them and scores the result by Levenshtein distance relative to the
// longer string.
func (s *Scorer) TokenSortRatio(a, b string) int {
	aTokens := strings.Fields(a)
	bTokens := strings.Fields(b)
	sort.Strings(aTokens)
	sort.Strings(bTokens)

	aSorted := strings.Join(aTokens, " ")
	bSorted := strings.Join(bTokens, " ")

	if aSorted == bSorted {
		return 100
	}

	maxLen := max(len([]rune(aSorted)), len([]rune(bSorted)))
	if maxLen == 0 {
		return 0
	}

	distance := LevenshteinDistance(aSorted, bSorted)
	return int(math.Round(100 * (1 - float64(distance)/float64(maxLen))))
}

// LevenshteinDistance computes the edit distance between two strings,
// counting runes rather than bytes.
func LevenshteinDistance(a, b string) int {
	aRunes := []rune(a)
	bRunes := []rune(b)

	if len(aRunes) == 0 {
		return len(bRunes)
	}
	if len(bRunes) == 0 {
		return len(aRunes)
	}

	previous := make([]int, len(bRunes)+1)
	current := make([]int, len(bRunes)+1)

	for j := range previous {
		previous[j] = j
	}

	for i := 1; i <= len(aRunes); i++ {
		current[0] = i
		for j := 1; j <= len(bRunes); j++ {
			cost := 1
			if aRunes[i-1] == bRunes[j-1] {
				cost = 0
			}
			current[j] = min(previous[j]+1, current[j-1]+1, previous[j-1]+cost)
		}
		previous, current = current, previous
	}

	return previous[len(bRunes)]
}

// PhoneSimilarity scores two phone numbers on their normalized digits.
// Containment handles numbers stored with country codes or extensions;
// shared prefixes handle partial input while the user is still typing.
func (s *Scorer) PhoneSimilarity(a, b string) int {
	a = normalizers.NormalizePhone(a)
	b = normalizers.NormalizePhone(b)

	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	minLen := min(len(a), len(b))

	if strings.Contains(a, b) || strings.Contains(b, a) {
		switch {
		case minLen >= 7:
			return min(80+(minLen-7)*5, 95)
		case minLen >= 5:
			return 70 + (minLen-5)*5
		case minLen == 4:
			return 40
		case minLen == 3:
			return 30
		default:
			return minLen * 10
		}
	}

	prefix := commonPrefixLength(a, b)
	switch {
	case prefix >= 7:
		return min(70+(prefix-7)*10, 100)
	case prefix >= 5:
		return 50 + (prefix-5)*10
	case prefix >= 3:
		return 30 + (prefix-3)*10
	default:
		return 0
	}
}

func commonPrefixLength(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// TaxIDSimilarity scores two tax identifiers. Tax IDs are registry keys,
// so anything short of an exact digit match scores zero.
func (s *Scorer) TaxIDSimilarity(a, b string) int {
	a = normalizers.NormalizeTaxID(a)
	b = normalizers.NormalizeTaxID(b)

	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	return 0
}
