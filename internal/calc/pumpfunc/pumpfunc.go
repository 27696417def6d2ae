// Package pumpfunc holds the stateless physics formulas shared by the
// pump analysis pipeline.
package pumpfunc

import (
	"errors"
	"math"
)

// ErrNonPositiveDifferentialPressure is returned when the speed-variation
// law is fed a differential pressure that has no physical meaning for a
// running centrifugal pump.
var ErrNonPositiveDifferentialPressure = errors.New("differential pressure must be positive for the speed variation law")

// DifferentialPressure is the pressure rise across the pump in bar.
func DifferentialPressure(dischargePressure, suctionPressure float64) float64 {
	return dischargePressure - suctionPressure
}

// SpeedVariation returns the fraction of rated speed needed to produce
// newPressure instead of oldPressure, per the affinity law head ∝ speed².
// Combined with the system resistance following flow², the required speed
// ratio reduces to the cube root of the pressure ratio.
func SpeedVariation(oldPressure, newPressure float64) (float64, error) {
	if oldPressure <= 0 || newPressure < 0 {
		return 0, ErrNonPositiveDifferentialPressure
	}
	return math.Cbrt(newPressure / oldPressure), nil
}

// BaseHydraulicPower returns pump hydraulic power in MW.
// Flow in m3/hr, differential pressure in bar.
func BaseHydraulicPower(dischargeFlowrate, differentialPressure float64) float64 {
	return (dischargeFlowrate / 3600) * (differentialPressure * 1e5) / 1e6
}

// ProposedHydraulicPower scales hydraulic power by the affinity cube law.
func ProposedHydraulicPower(baseHydraulicPower, speedVariation float64) float64 {
	return baseHydraulicPower * math.Pow(speedVariation, 3)
}

// PumpEfficiency estimates operating efficiency away from the best
// efficiency point with a parabolic correction:
// eta = etaBEP * (1 - (1 - Q/Qbep)^2).
func PumpEfficiency(bepFlowrate, bepEfficiency, actualFlowrate float64) float64 {
	d := 1 - actualFlowrate/bepFlowrate
	return bepEfficiency * (1 - d*d)
}
