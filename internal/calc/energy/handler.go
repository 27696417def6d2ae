package energy

import (
	"encoding/json"
	"net/http"

	"Pumpwise/internal/calc/curve"
)

type Handler struct{}

// DesignStageInput describes an early-design study: fitted curves plus
// an expected flow-duration profile, no historian data.
type DesignStageInput struct {
	RatedFlow      float64          `json:"rated_flow"`
	Pump           curve.QuadCoeffs `json:"pump_curve"`
	System         curve.QuadCoeffs `json:"system_curve"`
	Efficiency     curve.QuadCoeffs `json:"efficiency_curve"`
	Profile        []DutyPoint      `json:"duty_profile"`
	EmissionFactor float64          `json:"emission_factor"`
}

type DesignStageResult struct {
	VSD      *Scenario `json:"vsd"`
	Impeller *Scenario `json:"impeller"`
}

func (h *Handler) DesignStage(w http.ResponseWriter, r *http.Request) {
	var input DesignStageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	// No vendor data yet: fall back to the illustrative curves.
	zero := curve.QuadCoeffs{}
	if input.Pump == zero && input.System == zero {
		input.Pump, input.System, input.Efficiency = SampleCurves()
		if input.RatedFlow == 0 {
			input.RatedFlow = SampleRatedFlow
		}
	}

	table, err := DesignTable(input.RatedFlow, input.Pump, input.System, input.Efficiency, input.Profile)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	vsd, err := Evaluate(table, VSD, input.EmissionFactor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	impeller, err := Evaluate(table, Impeller, input.EmissionFactor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DesignStageResult{VSD: vsd, Impeller: impeller})
}
