package display

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompose(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  Parts
	}{
		{name: "integer", value: "5", want: Parts{"05", "00", "0"}},
		{name: "one fractional digit", value: "12.3", want: Parts{"12", "30", "0"}},
		{name: "three fractional digits", value: "7.256", want: Parts{"07", "25", "6"}},
		{name: "leading fractional zero", value: "0.04", want: Parts{"00", "04", "0"}},
		{name: "zero", value: "0", want: Parts{"00", "00", "0"}},
		{name: "two digit whole not padded", value: "42", want: Parts{"42", "00", "0"}},
		{name: "long whole", value: "123456.5", want: Parts{"123456", "50", "0"}},
		{name: "long fraction", value: "1.123456", want: Parts{"01", "12", "3456"}},
		{name: "trailing zeros trimmed", value: "3.100", want: Parts{"03", "10", "0"}},
		{name: "negative keeps sign on whole", value: "-5", want: Parts{"-5", "00", "0"}},
		{name: "negative fraction", value: "-12.345", want: Parts{"-12", "34", "5"}},
		{name: "large value has no exponent", value: "1e21", want: Parts{"1000000000000000000000", "00", "0"}},
		{name: "tiny value has no exponent", value: "1e-7", want: Parts{"00", "00", "00001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decompose(decimal.RequireFromString(tt.value))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecomposeFloat(t *testing.T) {
	assert.Equal(t, Parts{"07", "25", "6"}, DecomposeFloat(7.256))
	assert.Equal(t, Parts{"00", "04", "0"}, DecomposeFloat(0.04))
	assert.Equal(t, Parts{"12", "30", "0"}, DecomposeFloat(12.3))
}

func TestDecomposeDeterministic(t *testing.T) {
	v := decimal.RequireFromString("98.7654")
	first := Decompose(v)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Decompose(v))
	}
}

func TestDecomposeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		// Non-negative values with at most three fractional digits.
		v := decimal.New(rng.Int63n(10_000_000), -int32(rng.Intn(4)))

		parts := Decompose(v)
		back, err := parts.Decimal()
		require.NoError(t, err)
		require.True(t, back.Equal(v), "round trip of %s gave %s", v, back)

		// Decomposing the reconstruction yields the same triple.
		assert.Equal(t, parts, Decompose(back), "re-decomposition of %s", v)
	}
}

func TestPartsString(t *testing.T) {
	assert.Equal(t, "07.256", Parts{"07", "25", "6"}.String())
	assert.Equal(t, "05.000", Decompose(decimal.NewFromInt(5)).String())
}
