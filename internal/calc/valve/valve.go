package valve

import (
	"fmt"
	"math"
)

// Character is the inherent flow characteristic of a control valve.
type Character int

const (
	Linear Character = iota
	EqualPercentage
	QuickOpening
)

func (c Character) String() string {
	switch c {
	case Linear:
		return "Linear"
	case EqualPercentage:
		return "Equal Percentage"
	case QuickOpening:
		return "Quick Opening"
	}
	return fmt.Sprintf("Character(%d)", int(c))
}

// ParseCharacter parses the valve character as written in design-data
// sheets. An unknown value is a construction-time error.
func ParseCharacter(s string) (Character, error) {
	switch s {
	case "Linear":
		return Linear, nil
	case "Equal Percentage":
		return EqualPercentage, nil
	case "Quick Opening":
		return QuickOpening, nil
	}
	return 0, fmt.Errorf("unsupported valve character: %q", s)
}

// ratedCv holds catalog rated-Cv values (gpm basis) for globe control
// valves by nominal size in inches. Quick-opening trim shares the linear
// column.
type ratedCvEntry struct {
	linear float64
	equal  float64
}

var ratedCv = map[string]ratedCvEntry{
	"1":   {linear: 14, equal: 12},
	"1.5": {linear: 31, equal: 28},
	"2":   {linear: 52, equal: 48},
	"3":   {linear: 120, equal: 110},
	"4":   {linear: 210, equal: 195},
	"6":   {linear: 480, equal: 450},
	"8":   {linear: 820, equal: 750},
	"10":  {linear: 1250, equal: 1160},
	"12":  {linear: 1750, equal: 1620},
	"16":  {linear: 3100, equal: 2900},
	"20":  {linear: 4800, equal: 4500},
	"24":  {linear: 7000, equal: 6500},
}

// RatedCv returns the fully open Cv for a valve size and character.
func RatedCv(size string, character Character) (float64, error) {
	entry, ok := ratedCv[size]
	if !ok {
		return 0, fmt.Errorf("valve size %q not found in rated Cv table", size)
	}
	switch character {
	case Linear, QuickOpening:
		return entry.linear, nil
	case EqualPercentage:
		return entry.equal, nil
	}
	return 0, fmt.Errorf("unsupported valve character: %v", character)
}

// ActualCv derives the operating Cv from the rated Cv and the valve
// opening in percent.
func ActualCv(ratedCv, opening float64, character Character) (float64, error) {
	x := opening / 100
	switch character {
	case Linear:
		return ratedCv * x, nil
	case EqualPercentage:
		return ratedCv * x * x * x, nil
	case QuickOpening:
		return ratedCv * math.Sqrt(x), nil
	}
	return 0, fmt.Errorf("unsupported valve character: %v", character)
}

// PressureDrop returns the liquid pressure drop across the valve in bar.
// Flow in m3/hr, density in kg/m3. The 1.156 factor converts the gpm
// basis Cv to metric.
func PressureDrop(flow, cv, density float64) float64 {
	kv := cv / 1.156
	return math.Pow(flow/kv, 2) * (density / 1000)
}

// CvGas sizes a gas control valve.
//
// w mass flow in kg/hr, pIn/pOut in barg, t in degC, z compressibility,
// mw molecular weight in kg/kmol, k specific heat ratio.
func CvGas(w, pIn, pOut, t, z, mw, k float64) float64 {
	pIn += 1.01325
	pOut += 1.01325
	x := (pIn - pOut) / pIn
	const xt = 0.7
	xChoke := (k / 1.4) * xt
	xSize := math.Min(x, xChoke)
	y := 1 - (xSize / (3 * xChoke))
	return (w / (94.8 * y * pIn)) * math.Sqrt((t+273.15)*z/(xSize*mw))
}
