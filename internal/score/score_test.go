package score

import (
	"io"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testPolicy() Policy {
	return Policy{
		HomeCity:           "Dhaka",
		AdjoiningDistricts: []string{"Gazipur", "Narayanganj", "Narsingdi", "Munshiganj", "Manikganj"},
	}
}

func TestCalculate(t *testing.T) {
	policy := testPolicy()

	testCases := []struct {
		name     string
		input    Input
		expected float64
	}{
		{
			name:     "second year with CGPA from an adjoining district",
			input:    Input{Year: 2, CGPA: 3.5, HomeAddress: "Gazipur"},
			expected: 62.49, // 16.665 + 29.16375 + 16.665
		},
		{
			name:     "first year merit rank 1 living in the home city",
			input:    Input{Year: 1, CGPA: 4.0, MeritRank: 1, HomeAddress: "Mirpur, Dhaka"},
			expected: 41.66, // 8.3325 + 33.33 + 0
		},
		{
			name:     "top senior from a distant district",
			input:    Input{Year: 4, CGPA: 4.0, HomeAddress: "Khulna"},
			expected: 99.99,
		},
		{
			name:     "first year with invalid merit rank falls back to CGPA",
			input:    Input{Year: 1, CGPA: 3.0, MeritRank: 0, HomeAddress: "Dhaka"},
			expected: 33.33, // 8.3325 + 24.9975 + 0
		},
		{
			name:     "missing address contributes nothing",
			input:    Input{Year: 2, CGPA: 2.0},
			expected: 33.33, // 16.665 + 16.665
		},
		{
			name:     "negative CGPA degrades to zero contribution",
			input:    Input{Year: 3, CGPA: -1, HomeAddress: "Sylhet"},
			expected: 58.33, // 24.9975 + 0 + 33.33
		},
		{
			name:     "out-of-range year contributes nothing",
			input:    Input{Year: 9, CGPA: 4.0, HomeAddress: "Dhaka"},
			expected: 33.33,
		},
		{
			name:     "address matching is case-insensitive",
			input:    Input{Year: 2, CGPA: 2.0, HomeAddress: "GAZIPUR sadar"},
			expected: 49.99, // 16.665 + 16.665 + 16.665 = 49.995
		},
		{
			name:     "zero input",
			input:    Input{},
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Calculate(tc.input, policy), 0.001)
		})
	}
}

func TestParseFloatLenient(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	v, ok := ParseFloat("cgpa", "3.75", log)
	assert.True(t, ok)
	assert.Equal(t, 3.75, v)

	v, ok = ParseFloat("cgpa", "  3.5 ", log)
	assert.True(t, ok)
	assert.Equal(t, 3.5, v)

	v, ok = ParseFloat("cgpa", "three point five", log)
	assert.False(t, ok)
	assert.Zero(t, v)

	v, ok = ParseFloat("cgpa", "", log)
	assert.False(t, ok)
	assert.Zero(t, v)

	n, ok := ParseInt("merit_rank", "42", log)
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	n, ok = ParseInt("merit_rank", "n/a", log)
	assert.False(t, ok)
	assert.Zero(t, n)
}

func TestScoreProperties(t *testing.T) {
	policy := testPolicy()
	properties := gopter.NewProperties(nil)

	properties.Property("a smaller merit rank never yields a lower score", prop.ForAll(
		func(rankA, rankB int, cgpa float64, address string) bool {
			lower, higher := rankA, rankB
			if lower > higher {
				lower, higher = higher, lower
			}
			scoreLower := Calculate(Input{Year: 1, CGPA: cgpa, MeritRank: lower, HomeAddress: address}, policy)
			scoreHigher := Calculate(Input{Year: 1, CGPA: cgpa, MeritRank: higher, HomeAddress: address}, policy)
			return scoreLower >= scoreHigher
		},
		gen.IntRange(1, 5000),
		gen.IntRange(1, 5000),
		gen.Float64Range(0, 4),
		gen.OneConstOf("Dhaka", "Gazipur", "Khulna", "Rajshahi", ""),
	))

	properties.Property("scores stay within [0,100] for any input", prop.ForAll(
		func(year int, cgpa float64, rank int, address string) bool {
			s := Calculate(Input{Year: year, CGPA: cgpa, MeritRank: rank, HomeAddress: address}, policy)
			return s >= 0 && s <= 100
		},
		gen.IntRange(-2, 10),
		gen.Float64Range(-5, 10),
		gen.IntRange(-10, 100000),
		gen.OneConstOf("Dhaka", "Gazipur", "Narayanganj", "Chattogram", "somewhere far away", ""),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
