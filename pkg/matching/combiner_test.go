package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/fern/pkg/models"
)

func TestCombineScores(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name     string
		input    models.DuplicateSearchInput
		scores   FieldScores
		expected int
	}{
		{
			name:     "exact tax id is conclusive",
			input:    models.DuplicateSearchInput{TaxID: "12345678", CompanyName: "Totally Different Name"},
			scores:   FieldScores{Name: 10, TaxID: 100},
			expected: 100,
		},
		{
			name:     "exact phone is a strong signal",
			input:    models.DuplicateSearchInput{Phone: "6912345678"},
			scores:   FieldScores{Phone: 100},
			expected: 85,
		},
		{
			name:     "phone only search with strong partial",
			input:    models.DuplicateSearchInput{Phone: "691234"},
			scores:   FieldScores{Phone: 75},
			expected: 75,
		},
		{
			name:     "phone only search at the strong partial boundary",
			input:    models.DuplicateSearchInput{Phone: "6912345"},
			scores:   FieldScores{Phone: 70},
			expected: 70,
		},
		{
			name:     "short phone only search with weak partial",
			input:    models.DuplicateSearchInput{Phone: "1234"},
			scores:   FieldScores{Phone: 40},
			expected: 40,
		},
		{
			name:     "blank input",
			input:    models.DuplicateSearchInput{},
			scores:   FieldScores{},
			expected: 0,
		},
		{
			name:     "weighted average over supplied fields",
			input:    models.DuplicateSearchInput{CompanyName: "Alpha", Phone: "691234", TaxID: "12345678"},
			scores:   FieldScores{Name: 80, Phone: 60, TaxID: 0},
			expected: 56,
		},
		{
			name:     "weighted average ignores missing fields",
			input:    models.DuplicateSearchInput{CompanyName: "Alpha", Phone: "691234"},
			scores:   FieldScores{Name: 50, Phone: 20},
			expected: 35,
		},
		{
			name:     "exact name and phone boost to certainty",
			input:    models.DuplicateSearchInput{CompanyName: "Alpha", Phone: "6912349999"},
			scores:   FieldScores{Name: 100, Phone: 100},
			expected: 100,
		},
		{
			name:     "one exact one strong boosts to 95",
			input:    models.DuplicateSearchInput{CompanyName: "Alpha", Phone: "691234"},
			scores:   FieldScores{Name: 100, Phone: 70},
			expected: 95,
		},
		{
			name:     "both strong boost to 90",
			input:    models.DuplicateSearchInput{CompanyName: "Alpha", Phone: "691234"},
			scores:   FieldScores{Name: 85, Phone: 80},
			expected: 90,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, scorer.CombineScores(test.input, test.scores))
		})
	}
}

func TestCombinePhoneNameBoost(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name         string
		phoneScore   int
		nameScore    int
		nameSupplied bool
		expected     int
	}{
		{
			name:       "no name supplied returns phone score",
			phoneScore: 80,
			expected:   80,
		},
		{
			name:         "phone dominated blend",
			phoneScore:   80,
			nameScore:    60,
			nameSupplied: true,
			expected:     72,
		},
		{
			name:         "both exact",
			phoneScore:   100,
			nameScore:    100,
			nameSupplied: true,
			expected:     100,
		},
		{
			name:         "exact phone strong name capped at 95",
			phoneScore:   100,
			nameScore:    76,
			nameSupplied: true,
			expected:     95,
		},
		{
			name:         "both strong boost to 90",
			phoneScore:   90,
			nameScore:    85,
			nameSupplied: true,
			expected:     90,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, scorer.CombinePhoneNameBoost(test.phoneScore, test.nameScore, test.nameSupplied))
		})
	}
}

func TestFieldScores_Reasons(t *testing.T) {
	reasons := FieldScores{Name: 50, Phone: 49, TaxID: 80}.Reasons()
	assert.True(t, reasons.CompanyName)
	assert.False(t, reasons.Phone)
	assert.True(t, reasons.TaxID)

	reasons = FieldScores{Name: 49, Phone: 100, TaxID: 79}.Reasons()
	assert.False(t, reasons.CompanyName)
	assert.True(t, reasons.Phone)
	assert.False(t, reasons.TaxID)
}
