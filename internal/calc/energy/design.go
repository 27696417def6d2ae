package energy

import (
	"fmt"
	"math"

	"Pumpwise/internal/calc/bins"
	"Pumpwise/internal/calc/curve"
	"Pumpwise/internal/calc/pumpfunc"
)

// designMotorEfficiency is assumed for design-stage studies, where no
// measured motor data exists yet.
const designMotorEfficiency = 0.90

// designSteps are the flow fractions a design-stage table is evaluated
// at: 0% to 100% of rated flow in even steps.
const designSteps = 11

// SampleRatedFlow is the rated flow of the illustrative pump used when a
// design-stage study has no vendor curve data, m3/hr.
const SampleRatedFlow = 638

// SampleCurves returns illustrative pump, system and efficiency curves
// for a typical centrifugal pump, so a design-stage study can run before
// any vendor datasheet exists.
func SampleCurves() (pump, system, efficiency curve.QuadCoeffs) {
	pump = curve.QuadCoeffs{A: -0.0006, B: -0.1382, C: 727}
	system = curve.QuadCoeffs{A: 0.00093}
	efficiency = curve.QuadCoeffs{A: -0.0003, B: 0.286}
	return pump, system, efficiency
}

// DutyPoint is one entry of a user-supplied flow-duration profile for a
// pump without historian data.
type DutyPoint struct {
	FlowratePercent float64 `json:"flowrate_percent"`
	WorkingPercent  float64 `json:"working_percent"`
}

// DesignTable synthesizes a flow-duration table from fitted pump, system
// and efficiency curves, merging in the duty profile by flow fraction.
// Fractions missing from the profile get zero occupancy and drop out.
// The result feeds Evaluate exactly like a historian-derived table.
func DesignTable(ratedFlow float64, pump, system, efficiency curve.QuadCoeffs, profile []DutyPoint) ([]bins.FlowBin, error) {
	if ratedFlow <= 0 {
		return nil, fmt.Errorf("rated flow must be positive, got %v", ratedFlow)
	}

	duty := map[float64]float64{}
	for _, p := range profile {
		duty[round2(p.FlowratePercent)] = p.WorkingPercent
	}

	table := make([]bins.FlowBin, 0, designSteps)
	for i := 0; i < designSteps; i++ {
		frac := round2(float64(i) / float64(designSteps-1))
		flow := frac * ratedFlow

		head := pump.Eval(flow)
		required := system.Eval(flow)
		sv, err := pumpfunc.SpeedVariation(head, required)
		if err != nil {
			return nil, fmt.Errorf("flow fraction %.2f: %w", frac, err)
		}

		hydraulic := pumpfunc.BaseHydraulicPower(flow, head)
		b := bins.FlowBin{
			FlowratePercent:              frac,
			DischargeFlowrate:            flow,
			DifferentialPressure:         head,
			RequiredDifferentialPressure: required,
			RequiredSpeedVariation:       sv,
			BaseHydraulicPower:           hydraulic,
			OldPumpEfficiency:            efficiency.Eval(flow),
			OldMotorEfficiency:           designMotorEfficiency,
			BaseMotorPower:               hydraulic / designMotorEfficiency,
			WorkingPercent:               duty[frac],
		}
		b.WorkingHours = b.WorkingPercent * bins.HoursPerYear
		table = append(table, b)
	}

	out := table[:0]
	for _, b := range table {
		if b.WorkingPercent > 0 {
			out = append(out, b)
		}
	}

	total := 0.0
	for _, b := range out {
		total += b.WorkingPercent
	}
	if total > 0 {
		for i := range out {
			out[i].WorkingPercent /= total
			out[i].WorkingHours = out[i].WorkingPercent * bins.HoursPerYear
		}
	}
	return out, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
