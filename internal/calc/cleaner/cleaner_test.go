package cleaner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Pumpwise/internal/calc/pumpdata"
)

func testDesign(method pumpdata.CalculationMethod) pumpdata.DesignData {
	return pumpdata.DesignData{
		Tag:               "P-101A",
		RatedFlow:         500,
		Density:           1000,
		CalculationMethod: method,
		SparingFactor:     1,
	}
}

func TestCleanMissingColumn(t *testing.T) {
	raw := RawTable{
		Columns: []string{ColSuctionPressure, ColDischargeFlowrate},
		Rows:    [][]string{{"2.0", "400"}},
	}
	_, err := Clean(raw, testDesign(pumpdata.DownstreamPressure), pumpdata.DefaultConfig(), nil)
	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{ColDischargePressure}, missing.Columns)
}

func TestCleanDropsTextRowsAndEmptyColumns(t *testing.T) {
	raw := RawTable{
		Columns: []string{"timestamp", ColSuctionPressure, ColDischargePressure, ColDischargeFlowrate, ColDownstreamPressure},
		Rows: [][]string{
			{"note", "see data below", "", "", ""}, // entirely non-numeric, dropped
			{"t1", "2.0", "12.0", "400", "9.0"},
			{"t2", "2.1", "12.5", "420", "9.4"},
		},
	}
	out, err := Clean(raw, testDesign(pumpdata.DownstreamPressure), pumpdata.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out.N)
	assert.Equal(t, []float64{400, 420}, out.DischargeFlowrate)
}

func TestCleanUnitConversion(t *testing.T) {
	raw := RawTable{
		Columns: []string{ColSuctionPressure, ColDischargePressure, ColDischargeFlowrate, ColDownstreamPressure},
		Rows:    [][]string{{"29.0", "174.0", "1000", "130.5"}},
	}
	design := testDesign(pumpdata.DownstreamPressure)
	design.RatedFlow = 2000
	unitMap := pumpdata.UnitMap{"flowrate": "gpm", "pressure": "psi"}
	out, err := Clean(raw, design, pumpdata.DefaultConfig(), unitMap)
	require.NoError(t, err)
	assert.InDelta(t, 1000*0.22712, out.DischargeFlowrate[0], 1e-9)
	assert.InDelta(t, 29.0*0.0689476, out.SuctionPressure[0], 1e-9)
	assert.InDelta(t, 174.0*0.0689476, out.DischargePressure[0], 1e-9)
	assert.InDelta(t, 130.5*0.0689476, out.DownstreamPressure[0], 1e-9)
	// Rated flow is normalized on the returned snapshot, not the input.
	assert.InDelta(t, 2000*0.22712, out.Design.RatedFlow, 1e-9)
	assert.Equal(t, 2000.0, design.RatedFlow)
}

func TestCleanUnsupportedUnit(t *testing.T) {
	raw := RawTable{
		Columns: []string{ColSuctionPressure, ColDischargePressure, ColDischargeFlowrate, ColDownstreamPressure},
		Rows:    [][]string{{"2", "12", "400", "9"}},
	}
	_, err := Clean(raw, testDesign(pumpdata.DownstreamPressure), pumpdata.DefaultConfig(), pumpdata.UnitMap{"flowrate": "l/s"})
	assert.Error(t, err)
}

func TestCleanNonOperatingRowsDownstream(t *testing.T) {
	raw := RawTable{
		Columns: []string{ColSuctionPressure, ColDischargePressure, ColDischargeFlowrate, ColDownstreamPressure},
		Rows: [][]string{
			{"2.0", "12.0", "400", "9.0"},  // kept
			{"2.0", "12.0", "0", "9.0"},    // zero flow
			{"12.5", "12.0", "400", "9.0"}, // suction >= discharge
			{"2.0", "12.0", "400", "13.0"}, // downstream >= discharge
			{"2.0", "12.0", "400", "n/a"},  // downstream not numeric
		},
	}
	out, err := Clean(raw, testDesign(pumpdata.DownstreamPressure), pumpdata.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, out.N)
}

func TestCleanNonOperatingRowsCvOpening(t *testing.T) {
	cfg := pumpdata.DefaultConfig()
	cfg.MinCvOpening = 10
	raw := RawTable{
		Columns: []string{ColSuctionPressure, ColDischargePressure, ColDischargeFlowrate, ColCvOpening},
		Rows: [][]string{
			{"2.0", "12.0", "400", "45"}, // kept
			{"2.0", "12.0", "400", "8"},  // opening below threshold
			{"2.0", "12.0", "400", ""},   // opening blank
		},
	}
	design := testDesign(pumpdata.CvOpening)
	out, err := Clean(raw, design, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, out.N)
	assert.Equal(t, 45.0, out.CvOpening[0])
}

func TestCleanMethodColumnRequired(t *testing.T) {
	raw := RawTable{
		Columns: []string{ColSuctionPressure, ColDischargePressure, ColDischargeFlowrate},
		Rows:    [][]string{{"2.0", "12.0", "400"}},
	}
	_, err := Clean(raw, testDesign(pumpdata.CvOpening), pumpdata.DefaultConfig(), nil)
	assert.ErrorContains(t, err, ColCvOpening)
}

func TestCleanDropsIrrelevantColumnsAndKeepsRecognized(t *testing.T) {
	raw := RawTable{
		Columns: []string{ColSuctionPressure, ColDischargePressure, ColDischargeFlowrate, ColDownstreamPressure, ColMotorPower, "operator_note"},
		Rows: [][]string{
			{"2.0", "12.0", "400", "9.0", "180", "1"},
		},
	}
	out, err := Clean(raw, testDesign(pumpdata.DownstreamPressure), pumpdata.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Contains(t, out.Extra, ColMotorPower)
	assert.NotContains(t, out.Extra, "operator_note")
	// Absent optional columns are NaN padded.
	require.Len(t, out.CvOpening, 1)
	assert.True(t, math.IsNaN(out.CvOpening[0]))
}
