package units

import (
	"fmt"
	"strings"
)

// Conversion factors to the reference units used by the pipeline:
// flow in m3/hr, pressure in bar.
var flowFactors = map[string]float64{
	"m3/hr":   1,
	"default": 1,
	"bpd":     0.0066245,
	"gpm":     0.22712,
	"bph":     0.15899,
	"mbph":    158.99,
}

var pressureFactors = map[string]float64{
	"bar": 1,
	"psi": 0.0689476,
}

// FlowFactor returns the multiplier that converts a flow value in the
// given unit to m3/hr. The unit string is case-insensitive; an empty
// string means "default".
func FlowFactor(unit string) (float64, error) {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		u = "default"
	}
	f, ok := flowFactors[u]
	if !ok {
		return 0, fmt.Errorf("flow unit %q is not supported, supported units are %s", unit, supportedFlowUnits())
	}
	return f, nil
}

// PressureFactor returns the multiplier that converts a pressure value in
// the given unit to bar. An empty string means bar.
func PressureFactor(unit string) (float64, error) {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		u = "bar"
	}
	f, ok := pressureFactors[u]
	if !ok {
		return 0, fmt.Errorf("pressure unit %q is not supported, supported units are bar, psi", unit)
	}
	return f, nil
}

// ConvertFlow converts a flow value between any two supported units.
func ConvertFlow(value float64, from, to string) (float64, error) {
	ff, err := FlowFactor(from)
	if err != nil {
		return 0, err
	}
	ft, err := FlowFactor(to)
	if err != nil {
		return 0, err
	}
	return value * ff / ft, nil
}

// ConvertPressure converts a pressure value between any two supported units.
func ConvertPressure(value float64, from, to string) (float64, error) {
	ff, err := PressureFactor(from)
	if err != nil {
		return 0, err
	}
	ft, err := PressureFactor(to)
	if err != nil {
		return 0, err
	}
	return value * ff / ft, nil
}

func supportedFlowUnits() string {
	return "m3/hr, default, bpd, gpm, bph, mbph"
}
