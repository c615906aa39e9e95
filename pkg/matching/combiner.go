package matching

import (
	"math"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

const (
	nameWeight  = 0.4
	phoneWeight = 0.4
	taxIDWeight = 0.2

	nameReasonThreshold  = 50
	phoneReasonThreshold = 50
	taxIDReasonThreshold = 80
)

// FieldScores holds the per-field similarity scores for one candidate.
type FieldScores struct {
	Name  int
	Phone int
	TaxID int
}

// Reasons reports which fields crossed their significance thresholds.
func (f FieldScores) Reasons() models.MatchReasons {
	return models.MatchReasons{
		CompanyName: f.Name >= nameReasonThreshold,
		Phone:       f.Phone >= phoneReasonThreshold,
		TaxID:       f.TaxID >= taxIDReasonThreshold,
	}
}

// CombineScores collapses per-field scores into one confidence value.
// Conclusive identifier matches short-circuit; otherwise the supplied
// fields are averaged by weight, with boosts for strong multi-field
// agreement. Rules are evaluated in order and the first match wins.
func (s *Scorer) CombineScores(input models.DuplicateSearchInput, scores FieldScores) int {
	nameSupplied := normalizers.NormalizeText(input.CompanyName) != ""
	phoneDigits := normalizers.NormalizePhone(input.Phone)
	taxDigits := normalizers.NormalizeTaxID(input.TaxID)

	if scores.TaxID == 100 && len(taxDigits) >= 3 {
		return 100
	}

	if scores.Phone == 100 && len(phoneDigits) >= 3 {
		return 85
	}

	phoneOnly := phoneDigits != "" && !nameSupplied && taxDigits == ""
	if phoneOnly {
		if scores.Phone >= 70 {
			return max(60, scores.Phone)
		}
		if scores.Phone >= 40 && len(phoneDigits) <= 5 {
			return max(40, scores.Phone)
		}
	}

	if !nameSupplied && phoneDigits == "" && taxDigits == "" {
		return 0
	}

	var weightedSum, totalWeight float64
	if nameSupplied {
		weightedSum += float64(scores.Name) * nameWeight
		totalWeight += nameWeight
	}
	if phoneDigits != "" {
		weightedSum += float64(scores.Phone) * phoneWeight
		totalWeight += phoneWeight
	}
	if taxDigits != "" {
		weightedSum += float64(scores.TaxID) * taxIDWeight
		totalWeight += taxIDWeight
	}

	combined := int(math.Round(weightedSum / totalWeight))

	switch {
	case scores.Name == 100 && scores.Phone == 100:
		return 100
	case (scores.Name == 100 && scores.Phone >= 70) || (scores.Phone == 100 && scores.Name >= 70):
		return 95
	case scores.Name >= 80 && scores.Phone >= 80:
		return 90
	}

	return combined
}

// CombinePhoneNameBoost scores a phone-led search. Without a name the
// phone score stands alone; with one, the phone score dominates a fixed
// 60/40 blend, subject to the same multi-field boosts as CombineScores.
func (s *Scorer) CombinePhoneNameBoost(phoneScore, nameScore int, nameSupplied bool) int {
	if !nameSupplied {
		return phoneScore
	}

	combined := int(math.Round(0.6*float64(phoneScore) + 0.4*float64(nameScore)))

	switch {
	case nameScore == 100 && phoneScore == 100:
		return 100
	case (nameScore == 100 && phoneScore >= 70) || (phoneScore == 100 && nameScore >= 70):
		return 95
	case nameScore >= 80 && phoneScore >= 80:
		return 90
	}

	return combined
}
