// Package economics prices a retrofit option: discounted cash flow over
// the project life, IRR, payback and the cost per tonne of CO2 avoided.
package economics

import (
	"errors"
	"fmt"
	"math"

	"Pumpwise/internal/calc/pumpdata"
	"Pumpwise/internal/calc/solve"
)

// ErrIRRNotFound is returned when the cash-flow series has no internal
// rate of return in the searched range.
var ErrIRRNotFound = errors.New("internal rate of return not found")

// Payback is the first year the cumulative cash flow turns non-negative.
// Never is set when that does not happen within the project life.
type Payback struct {
	Year  int
	Never bool
}

func (p Payback) String() string {
	if p.Never {
		return "Never"
	}
	return fmt.Sprintf("%d", p.Year)
}

// MarshalJSON renders the year as a number and the sentinel as "Never".
func (p Payback) MarshalJSON() ([]byte, error) {
	if p.Never {
		return []byte(`"Never"`), nil
	}
	return []byte(fmt.Sprintf("%d", p.Year)), nil
}

// CashFlow is one yearly line of the project cash-flow table. Year 0
// carries only the investment.
type CashFlow struct {
	Year       int     `json:"year"`
	FuelSaving float64 `json:"fuel_saving"`
	Opex       float64 `json:"opex"`
	Net        float64 `json:"net"`
	Cumulative float64 `json:"cumulative"`
}

// Result is the priced outcome of one equipment quote.
type Result struct {
	Capex              float64    `json:"capex"`
	CashFlows          []CashFlow `json:"cash_flows"`
	NPV                float64    `json:"npv"`
	IRR                float64    `json:"irr"`
	IRRFound           bool       `json:"irr_found"`
	Payback            Payback    `json:"payback"`
	AnnualizedSpending float64    `json:"annualized_spending"`
	GHGReductionCost   float64    `json:"ghg_reduction_cost"`
}

// Evaluate builds the cash-flow table for one retrofit quote and derives
// its investment figures. Savings are MWh/yr, the electricity price is
// per kWh, the emission reduction tonnes CO2/yr. Opex is quoted at
// year-0 price level and escalates with the configured inflation rate,
// so year 1 already carries one year of inflation.
func Evaluate(capex, annualOpex, annualSavingsMWh, emissionReduction float64, cfg pumpdata.Config) Result {
	res := Result{Capex: capex}

	fuelSaving := annualSavingsMWh * 1000 * cfg.ElectricityPrice

	flows := make([]CashFlow, cfg.ProjectLife+1)
	flows[0] = CashFlow{Year: 0, Net: -capex, Cumulative: -capex}
	for y := 1; y <= cfg.ProjectLife; y++ {
		opex := annualOpex * math.Pow(1+cfg.InflationRate, float64(y))
		net := fuelSaving - opex
		flows[y] = CashFlow{
			Year:       y,
			FuelSaving: fuelSaving,
			Opex:       opex,
			Net:        net,
			Cumulative: flows[y-1].Cumulative + net,
		}
	}
	res.CashFlows = flows

	nets := make([]float64, len(flows))
	for i, f := range flows {
		nets[i] = f.Net
	}
	res.NPV = NPV(nets, cfg.DiscountRate)

	if irr, err := IRR(nets); err == nil {
		res.IRR = irr
		res.IRRFound = true
	}

	res.Payback = payback(flows)

	annuity := (1 - math.Pow(1+cfg.DiscountRate, -float64(cfg.ProjectLife)))
	res.AnnualizedSpending = -res.NPV * cfg.DiscountRate / annuity

	if emissionReduction != 0 {
		res.GHGReductionCost = res.AnnualizedSpending / emissionReduction
	}
	return res
}

// NPV discounts a year-indexed cash-flow series, year 0 undiscounted.
func NPV(cash []float64, rate float64) float64 {
	npv := 0.0
	for t, c := range cash {
		npv += c / math.Pow(1+rate, float64(t))
	}
	return npv
}

// IRR finds the discount rate zeroing the NPV of the series by bisection
// over (-1, 10].
func IRR(cash []float64) (float64, error) {
	r, err := solve.Bisect(func(rate float64) float64 {
		return NPV(cash, rate)
	}, -0.9999, 10, 1e-7)
	if err != nil {
		return 0, ErrIRRNotFound
	}
	return r, nil
}

func payback(flows []CashFlow) Payback {
	for _, f := range flows {
		if f.Cumulative >= 0 {
			return Payback{Year: f.Year}
		}
	}
	return Payback{Never: true}
}
