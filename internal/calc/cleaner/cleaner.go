// Package cleaner turns a raw historian export into a validated,
// unit-normalized sample table ready for the computed-columns stage.
package cleaner

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"Pumpwise/internal/calc/pumpdata"
	"Pumpwise/internal/calc/units"
)

// Operating-data column names as written by the historian export.
const (
	ColSuctionPressure    = "suction_pressure"
	ColDischargePressure  = "discharge_pressure"
	ColDischargeFlowrate  = "discharge_flowrate"
	ColCvOpening          = "cv_opening"
	ColDownstreamPressure = "downstream_pressure"
	ColRecirculationFlow  = "recirculation_flow"
	ColMotorPower         = "motor_power"
	ColPowerFactor        = "power_factor"
	ColRunStatus          = "run_status"
	ColSpeed              = "speed"
	ColMotorAmp           = "motor_amp"
)

// MandatoryColumns must be present in every operating-data table.
var MandatoryColumns = []string{ColSuctionPressure, ColDischargePressure, ColDischargeFlowrate}

// OptionalColumns are recognized and carried; anything else is dropped.
var OptionalColumns = []string{
	ColCvOpening, ColDownstreamPressure, ColRecirculationFlow,
	ColMotorPower, ColPowerFactor, ColRunStatus, ColSpeed, ColMotorAmp,
}

// MissingColumnsError reports the mandatory columns absent from the
// operating-data table.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("operational data is missing the required columns: %s", strings.Join(e.Columns, ", "))
}

// RawTable is an untyped operating-data table as read from the source
// workbook. Cells may hold numbers, blanks or stray text.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Cleaned is the validated sample set. Optional columns are NaN-filled
// where the source had no usable value. Design carries the rated flow
// normalized to m3/hr; the caller's DesignData is left untouched.
type Cleaned struct {
	Design pumpdata.DesignData
	N      int

	SuctionPressure    []float64
	DischargePressure  []float64
	DischargeFlowrate  []float64
	CvOpening          []float64
	DownstreamPressure []float64
	RecirculationFlow  []float64

	// Extra keeps the remaining recognized columns for reporting.
	Extra map[string][]float64
}

// Clean validates, unit-converts and filters the raw table per the
// design data's calculation method.
func Clean(raw RawTable, design pumpdata.DesignData, cfg pumpdata.Config, unitMap pumpdata.UnitMap) (*Cleaned, error) {
	cols, data := coerceNumeric(raw)

	missing := missingMandatory(cols)
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	cols, data = keepRelevant(cols, data)

	flowFactor, err := units.FlowFactor(unitMap.Flowrate())
	if err != nil {
		return nil, err
	}
	pressureFactor, err := units.PressureFactor(unitMap.Pressure())
	if err != nil {
		return nil, err
	}
	scaleColumn(cols, data, ColDischargeFlowrate, flowFactor)
	scaleColumn(cols, data, ColSuctionPressure, pressureFactor)
	scaleColumn(cols, data, ColDischargePressure, pressureFactor)
	scaleColumn(cols, data, ColDownstreamPressure, pressureFactor)
	design.RatedFlow *= flowFactor

	keep, err := operatingRows(cols, data, design, cfg)
	if err != nil {
		return nil, err
	}

	out := &Cleaned{Design: design, Extra: map[string][]float64{}}
	for i, col := range cols {
		var dst *[]float64
		switch col {
		case ColSuctionPressure:
			dst = &out.SuctionPressure
		case ColDischargePressure:
			dst = &out.DischargePressure
		case ColDischargeFlowrate:
			dst = &out.DischargeFlowrate
		case ColCvOpening:
			dst = &out.CvOpening
		case ColDownstreamPressure:
			dst = &out.DownstreamPressure
		case ColRecirculationFlow:
			dst = &out.RecirculationFlow
		default:
			extra := filterRows(data[i], keep)
			out.Extra[col] = extra
			continue
		}
		*dst = filterRows(data[i], keep)
	}
	out.N = len(keep)
	fillAbsent(out)
	return out, nil
}

// coerceNumeric parses every cell, drops rows and columns that end up
// entirely empty, and returns column-oriented data.
func coerceNumeric(raw RawTable) ([]string, [][]float64) {
	nCols := len(raw.Columns)
	parsed := make([][]float64, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		vals := make([]float64, nCols)
		any := false
		for i := range vals {
			v := math.NaN()
			if i < len(row) {
				if f, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64); err == nil {
					v = f
					any = true
				}
			}
			vals[i] = v
		}
		if any {
			parsed = append(parsed, vals)
		}
	}

	var cols []string
	var data [][]float64
	for i, name := range raw.Columns {
		col := make([]float64, len(parsed))
		any := false
		for r := range parsed {
			col[r] = parsed[r][i]
			if !math.IsNaN(col[r]) {
				any = true
			}
		}
		if any {
			cols = append(cols, name)
			data = append(data, col)
		}
	}
	return cols, data
}

func missingMandatory(cols []string) []string {
	var missing []string
	for _, want := range MandatoryColumns {
		if colIndex(cols, want) < 0 {
			missing = append(missing, want)
		}
	}
	return missing
}

func keepRelevant(cols []string, data [][]float64) ([]string, [][]float64) {
	relevant := map[string]bool{}
	for _, c := range MandatoryColumns {
		relevant[c] = true
	}
	for _, c := range OptionalColumns {
		relevant[c] = true
	}
	var outCols []string
	var outData [][]float64
	for i, name := range cols {
		if relevant[name] {
			outCols = append(outCols, name)
			outData = append(outData, data[i])
		}
	}
	return outCols, outData
}

// operatingRows builds the dense index of rows that represent real pump
// operation under the configured calculation method.
func operatingRows(cols []string, data [][]float64, design pumpdata.DesignData, cfg pumpdata.Config) ([]int, error) {
	suction := column(cols, data, ColSuctionPressure)
	discharge := column(cols, data, ColDischargePressure)
	flow := column(cols, data, ColDischargeFlowrate)

	var methodCol []float64
	switch design.CalculationMethod {
	case pumpdata.DownstreamPressure:
		methodCol = column(cols, data, ColDownstreamPressure)
		if methodCol == nil {
			return nil, fmt.Errorf("calculation method %s requires a %s column in the operational data", design.CalculationMethod, ColDownstreamPressure)
		}
	case pumpdata.CvOpening:
		methodCol = column(cols, data, ColCvOpening)
		if methodCol == nil {
			return nil, fmt.Errorf("calculation method %s requires a %s column in the operational data", design.CalculationMethod, ColCvOpening)
		}
	default:
		return nil, fmt.Errorf("invalid calculation method in design data")
	}

	var keep []int
	for r := range flow {
		if math.IsNaN(suction[r]) || math.IsNaN(discharge[r]) || math.IsNaN(flow[r]) {
			continue
		}
		if flow[r] <= 0 || suction[r] >= discharge[r] {
			continue
		}
		switch design.CalculationMethod {
		case pumpdata.DownstreamPressure:
			if math.IsNaN(methodCol[r]) || methodCol[r] >= discharge[r] {
				continue
			}
		case pumpdata.CvOpening:
			if math.IsNaN(methodCol[r]) || methodCol[r] <= cfg.MinCvOpening {
				continue
			}
		}
		keep = append(keep, r)
	}
	return keep, nil
}

func column(cols []string, data [][]float64, name string) []float64 {
	i := colIndex(cols, name)
	if i < 0 {
		return nil
	}
	return data[i]
}

func colIndex(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

func scaleColumn(cols []string, data [][]float64, name string, factor float64) {
	col := column(cols, data, name)
	for i := range col {
		col[i] *= factor
	}
}

func filterRows(col []float64, keep []int) []float64 {
	out := make([]float64, len(keep))
	for i, r := range keep {
		out[i] = col[r]
	}
	return out
}

// fillAbsent pads optional columns missing from the source with NaN so
// downstream stages can index them uniformly.
func fillAbsent(c *Cleaned) {
	nan := func() []float64 {
		s := make([]float64, c.N)
		for i := range s {
			s[i] = math.NaN()
		}
		return s
	}
	if c.CvOpening == nil {
		c.CvOpening = nan()
	}
	if c.DownstreamPressure == nil {
		c.DownstreamPressure = nan()
	}
	if c.RecirculationFlow == nil {
		c.RecirculationFlow = nan()
	}
}
