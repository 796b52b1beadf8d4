package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatWhole(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{name: "zero", value: 0, expected: "$0"},
		{name: "small", value: 999.4, expected: "$999"},
		{name: "rounds half up", value: 999.5, expected: "$1,000"},
		{name: "exact thousands", value: 5000, expected: "$5,000"},
		{name: "fifty million", value: 50000000.49, expected: "$50,000,000"},
		{name: "seven digits", value: 1234567, expected: "$1,234,567"},
		{name: "negative", value: -1234.6, expected: "-$1,235"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatWhole(tt.value, "$"))
		})
	}
}

func TestFormat_Decimals(t *testing.T) {
	assert.Equal(t, "€12,345.68", Format(12345.678, "€", 2))
	assert.Equal(t, "1,000.50", Format(1000.5, "", 2))
}
