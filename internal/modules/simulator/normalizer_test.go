package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAllocations_FullSum(t *testing.T) {
	fractions, err := NormalizeAllocations([]string{"SPY", "QQQ"}, []float64{50, 50})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, fractions)
}

func TestNormalizeAllocations_SingleTicker(t *testing.T) {
	fractions, err := NormalizeAllocations([]string{"SPY"}, []float64{100})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0}, fractions)
}

func TestNormalizeAllocations_FloatNoise(t *testing.T) {
	// 33.33 + 33.33 + 33.34 is exactly 100 but goes through float addition
	fractions, err := NormalizeAllocations([]string{"A", "B", "C"}, []float64{33.33, 33.33, 33.34})
	require.NoError(t, err)
	assert.InDelta(t, 0.3333, fractions[0], 1e-9)
}

func TestNormalizeAllocations_RejectsPartialSum(t *testing.T) {
	// Strict-100 policy: [40, 40] is a typo, not an implicit rescale
	_, err := NormalizeAllocations([]string{"SPY", "QQQ"}, []float64{40, 40})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAllocation)
}

func TestNormalizeAllocations_RejectsOversum(t *testing.T) {
	_, err := NormalizeAllocations([]string{"SPY", "QQQ"}, []float64{60, 60})
	assert.ErrorIs(t, err, ErrInvalidAllocation)
}

func TestNormalizeAllocations_RejectsEmpty(t *testing.T) {
	_, err := NormalizeAllocations(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidAllocation)
}

func TestNormalizeAllocations_RejectsDuplicates(t *testing.T) {
	_, err := NormalizeAllocations([]string{"SPY", "SPY"}, []float64{50, 50})
	assert.ErrorIs(t, err, ErrInvalidAllocation)
}

func TestNormalizeAllocations_RejectsNegative(t *testing.T) {
	_, err := NormalizeAllocations([]string{"SPY", "QQQ"}, []float64{150, -50})
	assert.ErrorIs(t, err, ErrInvalidAllocation)
}

func TestNormalizeAllocations_RejectsLengthMismatch(t *testing.T) {
	_, err := NormalizeAllocations([]string{"SPY", "QQQ"}, []float64{100})
	assert.ErrorIs(t, err, ErrInvalidAllocation)
}

func TestInitialHoldings(t *testing.T) {
	holdings, err := InitialHoldings(
		[]string{"SPY", "QQQ"},
		[]float64{0.6, 0.4},
		10000,
		map[string]float64{"SPY": 500, "QQQ": 400},
	)
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	assert.InDelta(t, 12.0, holdings[0].Shares, 1e-9) // 6000 / 500
	assert.InDelta(t, 10.0, holdings[1].Shares, 1e-9) // 4000 / 400
	assert.Equal(t, 0.6, holdings[0].AllocationFraction)
}

func TestInitialHoldings_MissingPrice(t *testing.T) {
	_, err := InitialHoldings(
		[]string{"SPY"},
		[]float64{1.0},
		10000,
		map[string]float64{},
	)
	assert.ErrorIs(t, err, ErrDataGap)
}
