package curve

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type Handler struct{}

type Input struct {
	Mode        string    `json:"mode"` // two_point, three_point, multi_point
	RatedFlow   float64   `json:"rated_flow"`
	RatedHead   float64   `json:"rated_head"`
	ShutoffHead float64   `json:"shutoff_head"`
	Flows       []float64 `json:"flows"`
	Heads       []float64 `json:"heads"`
}

type Point struct {
	Flow float64 `json:"flow"`
	Head float64 `json:"head"`
}

type Result struct {
	Coeffs QuadCoeffs `json:"coeffs"`
	Points []Point    `json:"points"`
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	coeffs, err := fit(input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := Result{Coeffs: coeffs}
	maxFlow := input.RatedFlow
	if maxFlow == 0 && len(input.Flows) > 0 {
		maxFlow = input.Flows[len(input.Flows)-1]
	}
	for i := 0; i <= 10; i++ {
		q := maxFlow * float64(i) / 10
		res.Points = append(res.Points, Point{Flow: q, Head: coeffs.Eval(q)})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func fit(input Input) (QuadCoeffs, error) {
	switch input.Mode {
	case "", "two_point":
		return TwoPoint(input.RatedFlow, input.RatedHead)
	case "three_point":
		return ThreePoint(input.RatedFlow, input.RatedHead, input.ShutoffHead)
	case "multi_point":
		return MultiPoint(input.Flows, input.Heads)
	default:
		return QuadCoeffs{}, fmt.Errorf("unknown curve mode %q", input.Mode)
	}
}
