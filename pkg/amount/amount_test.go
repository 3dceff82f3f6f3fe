package amount

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		units    uint64
		decimals uint8
		want     string
	}{
		{0, 9, "0.000000000"},
		{1, 9, "0.000000001"},
		{1_500_000_000, 9, "1.500000000"},
		{600_000_000_000_000, 9, "600000.000000000"},
		{42, 0, "42"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.units, tt.decimals))
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr error
	}{
		{"1", 1_000_000_000, nil},
		{"1.5", 1_500_000_000, nil},
		{"0.000000001", 1, nil},
		{"15000", 15_000_000_000_000, nil},
		{"", 0, ErrEmpty},
		{"-1", 0, ErrNegative},
		{"0.0000000001", 0, ErrPrecision},
		{"18446744074", 0, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in, 9)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse("1.2.3", 9)
	assert.Error(t, err)
}

func TestParseMax(t *testing.T) {
	got, err := Parse("18446744073709551615", 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got)
}
