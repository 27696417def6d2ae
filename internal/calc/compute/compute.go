// Package compute enriches cleaned operating samples with the derived
// physical quantities the strategy model works on.
package compute

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"Pumpwise/internal/calc/cleaner"
	"Pumpwise/internal/calc/pumpdata"
	"Pumpwise/internal/calc/pumpfunc"
	"Pumpwise/internal/calc/valve"
)

// ErrQualityGate is returned when the historian data is clearly
// mis-scaled: a VSD or trim recommendation would be meaningless.
var ErrQualityGate = errors.New("maximum discharge flowrate is below 30% of rated flow, check the flowrate unit")

// DefaultMotorEfficiency is assumed when the design data leaves the
// motor efficiency blank.
const DefaultMotorEfficiency = 0.90

// binStart is the lower edge of the first flow-fraction bin; its label
// is the bin's upper edge.
const binStart = 0.275

// Sample is one operating point with its derived columns.
type Sample struct {
	SuctionPressure    float64 `json:"suction_pressure"`
	DischargePressure  float64 `json:"discharge_pressure"`
	DischargeFlowrate  float64 `json:"discharge_flowrate"`
	CvOpening          float64 `json:"cv_opening"`
	DownstreamPressure float64 `json:"downstream_pressure"`
	RecirculationFlow  float64 `json:"recirculation_flow"`

	DifferentialPressure         float64 `json:"differential_pressure"`
	ActualCv                     float64 `json:"actual_cv"`
	CalculatedCvDrop             float64 `json:"calculated_cv_drop"`
	MeasuredCvDrop               float64 `json:"measured_cv_drop"`
	CvPressureDrop               float64 `json:"cv_pressure_drop"`
	InherentPipingLoss           float64 `json:"inherent_piping_loss"`
	RequiredDifferentialPressure float64 `json:"required_differential_pressure"`
	RequiredSpeedVariation       float64 `json:"required_speed_variation"`
	BaseHydraulicPower           float64 `json:"base_hydraulic_power"`
	OldPumpEfficiency            float64 `json:"old_pump_efficiency"`
	OldMotorEfficiency           float64 `json:"old_motor_efficiency"`
	BaseMotorPower               float64 `json:"base_motor_power"`

	// FlowratePercent is the bin label (upper edge of the right-closed
	// bin); NaN when the sample falls outside the bin range.
	FlowratePercent float64 `json:"flowrate_percent"`
}

// MarshalJSON encodes the NaN-padded optional columns and an
// out-of-range bin label as null.
func (s Sample) MarshalJSON() ([]byte, error) {
	type alias Sample
	return json.Marshal(struct {
		alias
		CvOpening          interface{} `json:"cv_opening"`
		DownstreamPressure interface{} `json:"downstream_pressure"`
		RecirculationFlow  interface{} `json:"recirculation_flow"`
		ActualCv           interface{} `json:"actual_cv"`
		CalculatedCvDrop   interface{} `json:"calculated_cv_drop"`
		MeasuredCvDrop     interface{} `json:"measured_cv_drop"`
		FlowratePercent    interface{} `json:"flowrate_percent"`
	}{
		alias:              alias(s),
		CvOpening:          pumpdata.JSONNumber(s.CvOpening),
		DownstreamPressure: pumpdata.JSONNumber(s.DownstreamPressure),
		RecirculationFlow:  pumpdata.JSONNumber(s.RecirculationFlow),
		ActualCv:           pumpdata.JSONNumber(s.ActualCv),
		CalculatedCvDrop:   pumpdata.JSONNumber(s.CalculatedCvDrop),
		MeasuredCvDrop:     pumpdata.JSONNumber(s.MeasuredCvDrop),
		FlowratePercent:    pumpdata.JSONNumber(s.FlowratePercent),
	})
}

// Result bundles the computed samples with the design snapshot they were
// derived from.
type Result struct {
	Design  pumpdata.DesignData
	Samples []Sample
}

// Compute derives the physical columns for every cleaned sample. It is
// row-wise and pure; warnings about default fallbacks are returned as
// diagnostics.
func Compute(c *cleaner.Cleaned, cfg pumpdata.Config) (*Result, []pumpdata.Diagnostic, error) {
	var diags []pumpdata.Diagnostic
	design := c.Design

	bepFlowrate := resolveBEPFlowrate(design, &diags)
	bepEfficiency := resolveBEPEfficiency(design, cfg, &diags)
	motorEfficiency := resolveMotorEfficiency(design, &diags)

	samples := make([]Sample, c.N)
	for i := 0; i < c.N; i++ {
		s := Sample{
			SuctionPressure:    c.SuctionPressure[i],
			DischargePressure:  c.DischargePressure[i],
			DischargeFlowrate:  c.DischargeFlowrate[i],
			CvOpening:          c.CvOpening[i],
			DownstreamPressure: c.DownstreamPressure[i],
			RecirculationFlow:  c.RecirculationFlow[i],
			ActualCv:           math.NaN(),
			CalculatedCvDrop:   math.NaN(),
			MeasuredCvDrop:     math.NaN(),
		}

		s.DifferentialPressure = pumpfunc.DifferentialPressure(s.DischargePressure, s.SuctionPressure)

		if err := cvDrop(&s, design, cfg); err != nil {
			return nil, diags, err
		}

		s.RequiredDifferentialPressure = s.DifferentialPressure + s.InherentPipingLoss - s.CvPressureDrop

		sv, err := pumpfunc.SpeedVariation(s.DifferentialPressure, s.RequiredDifferentialPressure)
		if err != nil {
			return nil, diags, fmt.Errorf("sample %d: %w", i, err)
		}
		s.RequiredSpeedVariation = sv

		s.BaseHydraulicPower = pumpfunc.BaseHydraulicPower(s.DischargeFlowrate, s.DifferentialPressure)
		s.OldPumpEfficiency = pumpfunc.PumpEfficiency(bepFlowrate, bepEfficiency, s.DischargeFlowrate)
		s.OldMotorEfficiency = motorEfficiency
		s.BaseMotorPower = s.BaseHydraulicPower / s.OldPumpEfficiency / s.OldMotorEfficiency

		s.FlowratePercent = binLabel(s.DischargeFlowrate/design.RatedFlow, cfg.BinPercent)
		samples[i] = s
	}

	checkRecirculation(c, &diags)

	if err := qualityGate(c, design); err != nil {
		return nil, diags, err
	}

	return &Result{Design: design, Samples: samples}, diags, nil
}

// cvDrop fills the control-valve pressure drop columns per the
// configured calculation method.
func cvDrop(s *Sample, design pumpdata.DesignData, cfg pumpdata.Config) error {
	switch design.CalculationMethod {
	case pumpdata.CvOpening:
		if design.ValveSize == "" {
			return fmt.Errorf("valve size is not defined in the design data")
		}
		ratedCv, err := valve.RatedCv(design.ValveSize, design.ValveCharacter)
		if err != nil {
			return err
		}
		actual, err := valve.ActualCv(ratedCv, s.CvOpening, design.ValveCharacter)
		if err != nil {
			return err
		}
		s.ActualCv = actual
		s.CalculatedCvDrop = valve.PressureDrop(s.DischargeFlowrate, actual, design.Density)
		s.CvPressureDrop = s.CalculatedCvDrop
		s.InherentPipingLoss = 0
	case pumpdata.DownstreamPressure:
		s.MeasuredCvDrop = s.DischargePressure - s.DownstreamPressure
		s.CvPressureDrop = s.MeasuredCvDrop
		s.InherentPipingLoss = s.CvPressureDrop * cfg.PipingLoss
	default:
		return fmt.Errorf("invalid calculation method in design data")
	}
	return nil
}

func resolveBEPFlowrate(design pumpdata.DesignData, diags *[]pumpdata.Diagnostic) float64 {
	bep := design.BEPFlowrate
	if bep.Set {
		return bep.Value
	}
	if bep.Raw != "" {
		*diags = append(*diags, pumpdata.Diagnostic{
			Stage:   "compute",
			Message: fmt.Sprintf("BEP flowrate %q is not numeric, using rated flowrate", bep.Raw),
		})
	}
	return design.RatedFlow
}

func resolveBEPEfficiency(design pumpdata.DesignData, cfg pumpdata.Config, diags *[]pumpdata.Diagnostic) float64 {
	bep := design.BEPEfficiency
	if bep.Set {
		return bep.Value
	}
	if bep.Raw != "" {
		*diags = append(*diags, pumpdata.Diagnostic{
			Stage:   "compute",
			Message: fmt.Sprintf("BEP efficiency %q is not numeric, using the default pump efficiency", bep.Raw),
		})
	}
	return cfg.PumpEfficiency
}

func resolveMotorEfficiency(design pumpdata.DesignData, diags *[]pumpdata.Diagnostic) float64 {
	eff := design.MotorEfficiency
	if eff.Set {
		return eff.Value
	}
	*diags = append(*diags, pumpdata.Diagnostic{
		Stage:   "compute",
		Message: fmt.Sprintf("motor efficiency is not set, assuming %.0f%%", DefaultMotorEfficiency*100),
	})
	return DefaultMotorEfficiency
}

func checkRecirculation(c *cleaner.Cleaned, diags *[]pumpdata.Diagnostic) {
	if c.N == 0 {
		return
	}
	all := true
	for i := 0; i < c.N; i++ {
		if !(c.RecirculationFlow[i] > c.DischargeFlowrate[i]) {
			all = false
			break
		}
	}
	if all {
		*diags = append(*diags, pumpdata.Diagnostic{
			Stage:   "compute",
			Message: "recirculation flow is greater than discharge flow",
		})
	}
}

func qualityGate(c *cleaner.Cleaned, design pumpdata.DesignData) error {
	maxFlow := math.Inf(-1)
	for _, f := range c.DischargeFlowrate {
		if f > maxFlow {
			maxFlow = f
		}
	}
	if maxFlow < 0.3*design.RatedFlow {
		return ErrQualityGate
	}
	return nil
}

// binLabel discretizes a flow fraction into right-closed bins of the
// configured width starting at binStart, labelled by the upper edge
// rounded to the label grid (0.30, 0.30+step, ...). The bins run past
// rated flow, five steps beyond 100%, so above-rated operation keeps its
// own groups instead of collapsing into the out-of-range one.
func binLabel(ratio, step float64) float64 {
	if step <= 0 || math.IsNaN(ratio) {
		return math.NaN()
	}
	edges := math.Ceil((1+5*step-binStart)/step - 1e-12)
	upper := binStart + (edges-1)*step
	if ratio <= binStart || ratio > upper {
		return math.NaN()
	}
	idx := int(math.Ceil((ratio-binStart)/step - 1e-12))
	label := binStart + 0.025 + float64(idx-1)*step
	return math.Round(label*1e6) / 1e6
}
