// Package pumpdata holds the immutable context types passed through the
// pump analysis pipeline: nameplate design data, analysis configuration
// and the unit map of the operating-data table.
package pumpdata

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"Pumpwise/internal/calc/valve"
)

// CalculationMethod selects how the control-valve pressure drop is
// derived from the operating data.
type CalculationMethod int

const (
	DownstreamPressure CalculationMethod = iota + 1
	CvOpening
)

func (m CalculationMethod) String() string {
	switch m {
	case DownstreamPressure:
		return "downstream_pressure"
	case CvOpening:
		return "cv_opening"
	}
	return fmt.Sprintf("CalculationMethod(%d)", int(m))
}

// ParseCalculationMethod parses the method as written in design-data
// sheets. An empty or unknown value fails the tag.
func ParseCalculationMethod(s string) (CalculationMethod, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "downstream_pressure":
		return DownstreamPressure, nil
	case "cv_opening":
		return CvOpening, nil
	case "":
		return 0, fmt.Errorf("calculation method is not defined in the design data")
	}
	return 0, fmt.Errorf("invalid calculation method %q", s)
}

// MaybeNumber is an optional numeric design field. Spreadsheet cells may
// be blank or hold stray text; both fall back to a default, text with a
// warning.
type MaybeNumber struct {
	Value float64
	Set   bool
	Raw   string // original cell text when non-numeric
}

// Number returns a set MaybeNumber.
func Number(v float64) MaybeNumber { return MaybeNumber{Value: v, Set: true} }

// Blank returns an unset MaybeNumber.
func Blank() MaybeNumber { return MaybeNumber{} }

// ParseMaybe coerces a cell to a MaybeNumber.
func ParseMaybe(cell string) MaybeNumber {
	s := strings.TrimSpace(cell)
	if s == "" {
		return Blank()
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(v)
	}
	return MaybeNumber{Raw: s}
}

// DesignData is the per-equipment nameplate record. It is treated as a
// read-only snapshot for one analysis run; the cleaner returns a copy
// with the rated flow normalized to m3/hr.
type DesignData struct {
	Tag               string
	RatedFlow         float64 // m3/hr after unit normalization
	RatedHead         float64 // m
	Density           float64 // kg/m3
	MotorEfficiency   MaybeNumber
	BEPFlowrate       MaybeNumber
	BEPEfficiency     MaybeNumber
	ValveSize         string
	ValveCharacter    valve.Character
	CalculationMethod CalculationMethod
	SparingFactor     float64
	HeaderRow         int // 1-based header row of the operational sheet
}

// Config holds the process-wide scalar parameters, read-only after load.
type Config struct {
	BinPercent        float64 // flow-bin step, e.g. 0.05
	MinWorkingPercent float64 // bins below this occupancy are zeroed
	MinCvOpening      float64 // percent
	PipingLoss        float64 // fraction of the measured cv drop
	PumpEfficiency    float64 // default BEP efficiency

	DiscountRate     float64
	InflationRate    float64
	ProjectLife      int
	ElectricityPrice float64 // currency per kWh

	VSDCapex         float64
	VSDOpexRate      float64 // yearly opex as a fraction of capex
	VFDCapex         float64
	VFDOpexRate      float64
	ImpellerCapex    float64
	ImpellerOpexRate float64
}

// DefaultConfig mirrors the stock analysis configuration workbook.
func DefaultConfig() Config {
	return Config{
		BinPercent:        0.05,
		MinWorkingPercent: 0.025,
		MinCvOpening:      10,
		PipingLoss:        0.15,
		PumpEfficiency:    0.75,
		DiscountRate:      0.08,
		InflationRate:     0.02,
		ProjectLife:       20,
		ElectricityPrice:  0.08,
		VSDCapex:          150000,
		VSDOpexRate:       0.02,
		VFDCapex:          100000,
		VFDOpexRate:       0.02,
		ImpellerCapex:     30000,
		ImpellerOpexRate:  0.01,
	}
}

// UnitMap maps operating-data parameters to the unit strings of the
// source historian export.
type UnitMap map[string]string

// Flowrate returns the flow unit, defaulting to the reference unit.
func (u UnitMap) Flowrate() string {
	if v, ok := u["flowrate"]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return "default"
}

// Pressure returns the pressure unit, defaulting to bar.
func (u UnitMap) Pressure() string {
	if v, ok := u["pressure"]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return "bar"
}

// JSONNumber encodes NaN sentinels as null; encoding/json rejects NaN
// outright.
func JSONNumber(f float64) interface{} {
	if math.IsNaN(f) {
		return nil
	}
	return f
}

// Diagnostic is a non-fatal finding raised by a pipeline stage.
type Diagnostic struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string { return d.Stage + ": " + d.Message }
