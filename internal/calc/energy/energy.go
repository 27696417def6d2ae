// Package energy evaluates retrofit strategies against the yearly
// flow-duration table and prices their energy and emission impact.
package energy

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"Pumpwise/internal/calc/bins"
	"Pumpwise/internal/calc/pumpdata"
)

// ErrZeroBaseEnergy is returned when the base case consumes no energy
// at all, leaving nothing to compare a retrofit against.
var ErrZeroBaseEnergy = errors.New("base case energy consumption is zero, no comparison possible")

// Strategy is a retrofit option.
type Strategy int

const (
	// VSD drives every operating point at exactly the speed that sheds
	// the throttling loss of its flow bin.
	VSD Strategy = iota + 1
	// Impeller models a fixed trim sized to the worst-case bin.
	Impeller
)

func (s Strategy) String() string {
	switch s {
	case VSD:
		return "vsd"
	case Impeller:
		return "impeller"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy parses a strategy name, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "vsd":
		return VSD, nil
	case "impeller":
		return Impeller, nil
	}
	return 0, fmt.Errorf("invalid strategy %q", s)
}

// Row is the per-bin outcome of one strategy. Energies are MWh/yr,
// emissions tonnes CO2/yr.
type Row struct {
	FlowratePercent        float64 `json:"flowrate_percent"`
	WorkingHours           float64 `json:"working_hours"`
	WorkingPercent         float64 `json:"working_percent"`
	SelectedSpeedVariation float64 `json:"selected_speed_variation"`
	NewPumpEfficiency      float64 `json:"new_pump_efficiency"`
	NewMotorEfficiency     float64 `json:"new_motor_efficiency"`
	BaseEnergy             float64 `json:"base_case_energy_consumption"`
	ProposedEnergy         float64 `json:"proposed_case_energy_consumption"`
	AnnualEnergySaving     float64 `json:"annual_energy_saving"`
	BaseEmission           float64 `json:"base_case_emission"`
	ProposedEmission       float64 `json:"proposed_case_emission"`
	GHGReduction           float64 `json:"ghg_reduction"`
}

// MarshalJSON encodes the out-of-range group's NaN label as null.
func (r Row) MarshalJSON() ([]byte, error) {
	type alias Row
	return json.Marshal(struct {
		alias
		FlowratePercent interface{} `json:"flowrate_percent"`
	}{alias: alias(r), FlowratePercent: pumpdata.JSONNumber(r.FlowratePercent)})
}

// Summary totals a scenario over its bins.
type Summary struct {
	BaseEnergy          float64 `json:"base_case_energy_consumption"`
	ProposedEnergy      float64 `json:"proposed_case_energy_consumption"`
	AnnualEnergySaving  float64 `json:"annual_energy_saving"`
	BaseEmission        float64 `json:"base_case_emission"`
	ProposedEmission    float64 `json:"proposed_case_emission"`
	GHGReduction        float64 `json:"ghg_reduction"`
	GHGReductionPercent float64 `json:"ghg_reduction_percent"`

	// SpeedVariationRange reads e.g. "95% - 82%", highest to lowest
	// selected speed over the visited bins.
	SpeedVariationRange string `json:"speed_variation_range"`
}

// Scenario is the evaluated outcome of one strategy.
type Scenario struct {
	Strategy Strategy `json:"strategy"`
	Rows     []Row    `json:"rows"`
	Summary  Summary  `json:"summary"`
}

// Evaluate runs one strategy over the flow-duration table. The emission
// factor is tonnes CO2 per MWh for the equipment's site.
func Evaluate(table []bins.FlowBin, strategy Strategy, emissionFactor float64) (*Scenario, error) {
	selected := selectedSpeeds(table, strategy)

	sc := &Scenario{Strategy: strategy, Rows: make([]Row, len(table))}
	for i, b := range table {
		sv := selected[i]
		base := b.BaseMotorPower * b.WorkingHours // MW * h = MWh

		// Retrofit keeps the pump and motor efficiencies of the base
		// case, so the efficiency factor is unity for now.
		newPump := b.OldPumpEfficiency
		newMotor := b.OldMotorEfficiency
		effFactor := 1.0
		if oldProduct := b.OldPumpEfficiency * b.OldMotorEfficiency; oldProduct != 0 {
			effFactor = newPump * newMotor / oldProduct
		}

		// Affinity cube law
		proposed := base * math.Pow(sv, 3) * effFactor

		r := Row{
			FlowratePercent:        b.FlowratePercent,
			WorkingHours:           b.WorkingHours,
			WorkingPercent:         b.WorkingPercent,
			SelectedSpeedVariation: sv,
			NewPumpEfficiency:      newPump,
			NewMotorEfficiency:     newMotor,
			BaseEnergy:             base,
			ProposedEnergy:         proposed,
			AnnualEnergySaving:     base - proposed,
			BaseEmission:           base * emissionFactor,
			ProposedEmission:       proposed * emissionFactor,
			GHGReduction:           (base - proposed) * emissionFactor,
		}
		sc.Rows[i] = r

		sc.Summary.BaseEnergy += r.BaseEnergy
		sc.Summary.ProposedEnergy += r.ProposedEnergy
		sc.Summary.AnnualEnergySaving += r.AnnualEnergySaving
		sc.Summary.BaseEmission += r.BaseEmission
		sc.Summary.ProposedEmission += r.ProposedEmission
		sc.Summary.GHGReduction += r.GHGReduction
	}

	if sc.Summary.BaseEnergy == 0 {
		return nil, ErrZeroBaseEnergy
	}
	if sc.Summary.BaseEmission != 0 {
		sc.Summary.GHGReductionPercent = sc.Summary.GHGReduction / sc.Summary.BaseEmission
	}
	sc.Summary.SpeedVariationRange = speedRange(sc.Rows)
	return sc, nil
}

// selectedSpeeds maps each bin to the speed fraction the strategy would
// run it at.
func selectedSpeeds(table []bins.FlowBin, strategy Strategy) []float64 {
	out := make([]float64, len(table))
	switch strategy {
	case VSD:
		for i, b := range table {
			out[i] = b.RequiredSpeedVariation
		}
	case Impeller:
		// A fixed trim cannot adapt per bin; size to the visited bin
		// with the smallest head margin.
		trim := 0.0
		for _, b := range table {
			if b.WorkingPercent > 0 && b.RequiredSpeedVariation > trim {
				trim = b.RequiredSpeedVariation
			}
		}
		for i, b := range table {
			if b.WorkingPercent > 0 {
				out[i] = trim
			}
		}
	}
	return out
}

func speedRange(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		if r.SelectedSpeedVariation < lo {
			lo = r.SelectedSpeedVariation
		}
		if r.SelectedSpeedVariation > hi {
			hi = r.SelectedSpeedVariation
		}
	}
	return fmt.Sprintf("%.0f%% - %.0f%%", hi*100, lo*100)
}
