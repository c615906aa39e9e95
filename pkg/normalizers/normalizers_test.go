package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases and trims",
			input:    "  Alpha Services  ",
			expected: "alpha services",
		},
		{
			name:     "folds greek accents",
			input:    "ΑΛΦΑ ΥΠΗΡΕΣΊΕΣ",
			expected: "αλφα υπηρεσιεσ",
		},
		{
			name:     "folds final sigma",
			input:    "Υπηρεσίες",
			expected: "υπηρεσιεσ",
		},
		{
			name:     "folds latin accents",
			input:    "Café Niño",
			expected: "cafe nino",
		},
		{
			name:     "unmapped characters pass through",
			input:    "a&b #1",
			expected: "a&b #1",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, NormalizeText(test.input))
		})
	}
}

func TestNormalizeText_Idempotent(t *testing.T) {
	inputs := []string{
		"Alpha Services",
		"ΑΛΦΑ ΥΠΗΡΕΣΊΕΣ Α.Ε.",
		"Café Ñandú",
		"  mixed ΚΕΊΜΕΝΟ 123  ",
		"",
	}

	for _, input := range inputs {
		once := NormalizeText(input)
		assert.Equal(t, once, NormalizeText(once), "input: %q", input)
	}
}

func TestNormalizeTaxID(t *testing.T) {
	assert.Equal(t, "12345678", NormalizeTaxID("EL-12345678"))
	assert.Equal(t, "12345678", NormalizeTaxID(" 123 456 78 "))
	assert.Equal(t, "", NormalizeTaxID("no digits"))
	assert.Equal(t, "", NormalizeTaxID(""))
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips formatting",
			input:    "210-123.4567",
			expected: "2101234567",
		},
		{
			name:     "mobile number truncated to ten digits",
			input:    "6912345678999",
			expected: "6912345678",
		},
		{
			name:     "mobile number with separators",
			input:    "691 234 5678",
			expected: "6912345678",
		},
		{
			name:     "short mobile prefix left alone",
			input:    "691234",
			expected: "691234",
		},
		{
			name:     "international prefix is not a mobile prefix",
			input:    "+30 691 234 5678",
			expected: "306912345678",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, NormalizePhone(test.input))
		})
	}
}
