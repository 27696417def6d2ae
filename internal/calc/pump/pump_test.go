package pump

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Pumpwise/internal/calc/cleaner"
	"Pumpwise/internal/calc/compute"
	"Pumpwise/internal/calc/pumpdata"
)

func testInput() Input {
	raw := cleaner.RawTable{
		Columns: []string{"suction_pressure", "discharge_pressure", "discharge_flowrate", "downstream_pressure"},
	}
	addRows := func(n int, flow float64) {
		for i := 0; i < n; i++ {
			raw.Rows = append(raw.Rows, []string{
				"2", "12", strconv.FormatFloat(flow, 'f', -1, 64), "10",
			})
		}
	}
	addRows(40, 80)
	addRows(20, 90)

	return Input{
		Site: "alpha",
		Design: pumpdata.DesignData{
			Tag:               "P-101",
			RatedFlow:         100,
			RatedHead:         60,
			Density:           1000,
			BEPFlowrate:       pumpdata.Number(100),
			BEPEfficiency:     pumpdata.Number(0.8),
			MotorEfficiency:   pumpdata.Number(0.95),
			CalculationMethod: pumpdata.DownstreamPressure,
			SparingFactor:     2,
		},
		Operation:       raw,
		Units:           pumpdata.UnitMap{},
		Config:          pumpdata.DefaultConfig(),
		EmissionFactors: map[string]float64{"alpha": 0.5},
	}
}

func TestProcessEndToEnd(t *testing.T) {
	in := testInput()
	res, err := Process(in)
	require.NoError(t, err)

	require.Len(t, res.Bins, 2)
	assert.InDelta(t, 0.80, res.Bins[0].FlowratePercent, 1e-9)
	assert.InDelta(t, 0.90, res.Bins[1].FlowratePercent, 1e-9)
	assert.Len(t, res.Samples, 60)

	require.NotNil(t, res.VSD)
	require.NotNil(t, res.Impeller)
	assert.Greater(t, res.VSD.Summary.AnnualEnergySaving, 0.0)

	// a fixed trim sized to the worst bin can never beat per-point
	// speed matching
	assert.GreaterOrEqual(t,
		res.VSD.Summary.AnnualEnergySaving,
		res.Impeller.Summary.AnnualEnergySaving)

	// sparing factor halves every capex share but not the opex, which is
	// priced off the full list price
	cfg := in.Config
	assert.InDelta(t, cfg.VSDCapex/2, res.EconomicsVSD.Capex, 1e-9)
	assert.InDelta(t, cfg.VFDCapex/2, res.EconomicsVFD.Capex, 1e-9)
	assert.InDelta(t, cfg.ImpellerCapex/2, res.EconomicsImpeller.Capex, 1e-9)
	assert.Len(t, res.EconomicsVSD.CashFlows, cfg.ProjectLife+1)
	wantOpex := cfg.VSDOpexRate * cfg.VSDCapex * (1 + cfg.InflationRate)
	assert.InDelta(t, wantOpex, res.EconomicsVSD.CashFlows[1].Opex, 1e-9)

	// NaN sentinels in the optional columns must encode as null
	payload, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"cv_opening":null`)
}

func TestProcessDeterministic(t *testing.T) {
	in := testInput()
	a, err := Process(in)
	require.NoError(t, err)
	b, err := Process(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestProcessMissingEmissionFactor(t *testing.T) {
	in := testInput()
	in.Site = "unknown-site"

	_, err := Process(in)
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "setup", stageErr.Stage)
	assert.Equal(t, "P-101", stageErr.Tag)
	assert.Contains(t, err.Error(), "unknown-site")
}

func TestProcessQualityGateAbortsTag(t *testing.T) {
	in := testInput()
	in.Design.RatedFlow = 1000 // max flow now 9% of rated

	_, err := Process(in)
	require.ErrorIs(t, err, compute.ErrQualityGate)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "compute", stageErr.Stage)
}

func TestProcessMissingColumn(t *testing.T) {
	in := testInput()
	in.Operation.Columns = []string{"suction_pressure", "discharge_flowrate", "downstream_pressure"}
	for i := range in.Operation.Rows {
		in.Operation.Rows[i] = []string{"2", "80", "10"}
	}

	_, err := Process(in)
	var missing *cleaner.MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"discharge_pressure"}, missing.Columns)
}
