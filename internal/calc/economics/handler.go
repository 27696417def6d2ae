package economics

import (
	"encoding/json"
	"net/http"

	"Pumpwise/internal/calc/pumpdata"
)

type Handler struct{}

type Input struct {
	Capex                   float64 `json:"capex"`
	OpexRate                float64 `json:"opex_rate"`
	SparingFactor           float64 `json:"sparing_factor"`
	AnnualEnergySavings     float64 `json:"annual_energy_savings"` // MWh
	AnnualEmissionReduction float64 `json:"annual_emission_reduction"`

	// zero values fall back to the stock configuration
	DiscountRate     float64 `json:"discount_rate"`
	InflationRate    float64 `json:"inflation_rate"`
	ProjectLife      int     `json:"project_life"`
	ElectricityPrice float64 `json:"electricity_price"`
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if input.Capex <= 0 {
		http.Error(w, "Capex must be positive", http.StatusBadRequest)
		return
	}

	cfg := pumpdata.DefaultConfig()
	if input.DiscountRate > 0 {
		cfg.DiscountRate = input.DiscountRate
	}
	if input.InflationRate > 0 {
		cfg.InflationRate = input.InflationRate
	}
	if input.ProjectLife > 0 {
		cfg.ProjectLife = input.ProjectLife
	}
	if input.ElectricityPrice > 0 {
		cfg.ElectricityPrice = input.ElectricityPrice
	}

	// capex is shared across spared installations, opex is priced off the
	// full list price
	capex := input.Capex
	if input.SparingFactor > 0 {
		capex /= input.SparingFactor
	}
	opex := input.OpexRate * input.Capex

	res := Evaluate(capex, opex, input.AnnualEnergySavings, input.AnnualEmissionReduction, cfg)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
