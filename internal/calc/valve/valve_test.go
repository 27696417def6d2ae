package valve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCharacter(t *testing.T) {
	c, err := ParseCharacter("Equal Percentage")
	require.NoError(t, err)
	assert.Equal(t, EqualPercentage, c)

	_, err = ParseCharacter("Butterfly")
	assert.Error(t, err)
}

func TestRatedCvLookup(t *testing.T) {
	cv, err := RatedCv("6", Linear)
	require.NoError(t, err)
	assert.Equal(t, 480.0, cv)

	cv, err = RatedCv("6", EqualPercentage)
	require.NoError(t, err)
	assert.Equal(t, 450.0, cv)

	_, err = RatedCv("7", Linear)
	assert.Error(t, err)
}

func TestActualCvOpeningFactors(t *testing.T) {
	cv, err := ActualCv(100, 50, Linear)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, cv, 1e-12)

	cv, err = ActualCv(100, 50, EqualPercentage)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, cv, 1e-12)

	cv, err = ActualCv(100, 50, QuickOpening)
	require.NoError(t, err)
	assert.InDelta(t, 100*math.Sqrt(0.5), cv, 1e-12)
}

func TestPressureDrop(t *testing.T) {
	// 200 m3/hr through Cv 231.2 (kv = 200) of water: (200/200)^2 * 1 = 1 bar.
	drop := PressureDrop(200, 231.2, 1000)
	assert.InDelta(t, 1.0, drop, 1e-9)

	// Lighter fluid scales the drop by density/1000.
	drop = PressureDrop(200, 231.2, 800)
	assert.InDelta(t, 0.8, drop, 1e-9)
}
