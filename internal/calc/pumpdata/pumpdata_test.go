package pumpdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCalculationMethod(t *testing.T) {
	m, err := ParseCalculationMethod(" Downstream_Pressure ")
	require.NoError(t, err)
	assert.Equal(t, DownstreamPressure, m)

	m, err = ParseCalculationMethod("cv_opening")
	require.NoError(t, err)
	assert.Equal(t, CvOpening, m)

	_, err = ParseCalculationMethod("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not defined")

	_, err = ParseCalculationMethod("guesswork")
	require.Error(t, err)
}

func TestParseMaybe(t *testing.T) {
	v := ParseMaybe(" 0.92 ")
	assert.True(t, v.Set)
	assert.InDelta(t, 0.92, v.Value, 1e-9)

	v = ParseMaybe("")
	assert.False(t, v.Set)
	assert.Empty(t, v.Raw)

	v = ParseMaybe("see datasheet")
	assert.False(t, v.Set)
	assert.Equal(t, "see datasheet", v.Raw)
}

func TestUnitMapDefaults(t *testing.T) {
	u := UnitMap{}
	assert.Equal(t, "default", u.Flowrate())
	assert.Equal(t, "bar", u.Pressure())

	u = UnitMap{"flowrate": "gpm", "pressure": "psi"}
	assert.Equal(t, "gpm", u.Flowrate())
	assert.Equal(t, "psi", u.Pressure())
}
