// Package bins collapses computed operating samples into a yearly
// flow-duration table on an 8760-hour basis.
package bins

import (
	"encoding/json"
	"math"
	"sort"

	"Pumpwise/internal/calc/compute"
	"Pumpwise/internal/calc/pumpdata"
)

// HoursPerYear is the normalization basis of the working-hours column.
const HoursPerYear = 8760.0

// FlowBin is one flow-fraction group with the arithmetic means of its
// samples and its share of the operating year.
type FlowBin struct {
	// FlowratePercent is the bin label; NaN marks the group of samples
	// outside the bin range.
	FlowratePercent float64 `json:"flowrate_percent"`

	DischargeFlowrate            float64 `json:"discharge_flowrate"`
	DifferentialPressure         float64 `json:"differential_pressure"`
	RequiredDifferentialPressure float64 `json:"required_differential_pressure"`
	RequiredSpeedVariation       float64 `json:"required_speed_variation"`
	BaseHydraulicPower           float64 `json:"base_hydraulic_power"`
	OldPumpEfficiency            float64 `json:"old_pump_efficiency"`
	OldMotorEfficiency           float64 `json:"old_motor_efficiency"`
	BaseMotorPower               float64 `json:"base_motor_power"`

	WorkingHours   float64 `json:"working_hours"`
	WorkingPercent float64 `json:"working_percent"`
}

// MarshalJSON encodes the out-of-range group's NaN label as null.
func (b FlowBin) MarshalJSON() ([]byte, error) {
	type alias FlowBin
	return json.Marshal(struct {
		alias
		FlowratePercent interface{} `json:"flowrate_percent"`
	}{alias: alias(b), FlowratePercent: pumpdata.JSONNumber(b.FlowratePercent)})
}

// Aggregate groups samples by flow bin, suppresses bins occupied for
// less than the configured minimum share of samples, and renormalizes
// the survivors so the hours sum to a full year and the shares to one.
func Aggregate(samples []compute.Sample, cfg pumpdata.Config) []FlowBin {
	groups := map[float64][]compute.Sample{}
	var outOfRange []compute.Sample
	for _, s := range samples {
		if math.IsNaN(s.FlowratePercent) {
			outOfRange = append(outOfRange, s)
			continue
		}
		groups[s.FlowratePercent] = append(groups[s.FlowratePercent], s)
	}

	labels := make([]float64, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Float64s(labels)

	out := make([]FlowBin, 0, len(groups)+1)
	for _, label := range labels {
		out = append(out, meanBin(label, groups[label]))
	}
	if len(outOfRange) > 0 {
		out = append(out, meanBin(math.NaN(), outOfRange))
	}

	total := 0.0
	for _, b := range out {
		total += b.WorkingHours
	}
	for i := range out {
		out[i].WorkingPercent = out[i].WorkingHours / total
	}

	// Bins too sparsely populated to be statistically meaningful are
	// suppressed entirely.
	for i := range out {
		if out[i].WorkingPercent < cfg.MinWorkingPercent {
			out[i].WorkingHours = 0
			out[i].WorkingPercent = 0
		}
	}

	renormalize(out)
	out = filterWorking(out)
	renormalize(out)
	return out
}

func meanBin(label float64, group []compute.Sample) FlowBin {
	b := FlowBin{FlowratePercent: label, WorkingHours: float64(len(group))}
	n := float64(len(group))
	for _, s := range group {
		b.DischargeFlowrate += s.DischargeFlowrate / n
		b.DifferentialPressure += s.DifferentialPressure / n
		b.RequiredDifferentialPressure += s.RequiredDifferentialPressure / n
		b.RequiredSpeedVariation += s.RequiredSpeedVariation / n
		b.BaseHydraulicPower += s.BaseHydraulicPower / n
		b.OldPumpEfficiency += s.OldPumpEfficiency / n
		b.OldMotorEfficiency += s.OldMotorEfficiency / n
		b.BaseMotorPower += s.BaseMotorPower / n
	}
	return b
}

// renormalize rescales the shares to sum to one and restates the hours
// on the yearly basis.
func renormalize(bins []FlowBin) {
	total := 0.0
	for _, b := range bins {
		total += b.WorkingPercent
	}
	if total <= 0 {
		return
	}
	for i := range bins {
		bins[i].WorkingPercent /= total
		bins[i].WorkingHours = bins[i].WorkingPercent * HoursPerYear
	}
}

func filterWorking(bins []FlowBin) []FlowBin {
	out := bins[:0]
	for _, b := range bins {
		if b.WorkingPercent > 0 {
			out = append(out, b)
		}
	}
	return out
}
