package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []float64{5000, 5000.5, 49876543.125}))

	assert.Equal(t, "Annual Loss\n5000\n5000.5\n49876543.125\n", buf.String())
}

func TestWriteCSV_RowsMatchYears(t *testing.T) {
	series := make([]float64, 50)
	for i := range series {
		series[i] = float64(i) * 1000.25
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, series))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 51)
	assert.Equal(t, CSVHeader, lines[0])
	for _, line := range lines[1:] {
		assert.NotContains(t, line, ",", "no index column")
	}

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, series, parsed)
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Annual Loss\n", buf.String())
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "wrong header", input: "Loss\n1\n"},
		{name: "index column", input: ",Annual Loss\n0,1\n"},
		{name: "not a number", input: "Annual Loss\nabc\n"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
