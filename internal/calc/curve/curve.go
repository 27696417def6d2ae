// Package curve fits quadratic head and efficiency curves from sparse
// design points and evaluates them.
package curve

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"Pumpwise/internal/calc/solve"
)

// QuadCoeffs are the coefficients of y = a*Q^2 + b*Q + c.
type QuadCoeffs struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

// Eval evaluates the curve at the given flow.
func (q QuadCoeffs) Eval(flow float64) float64 {
	return q.A*flow*flow + q.B*flow + q.C
}

// TwoPoint derives a head curve from the rated point alone, assuming a
// shutoff head of 1.3x rated head and no linear term.
func TwoPoint(ratedFlow, ratedHead float64) (QuadCoeffs, error) {
	return ThreePoint(ratedFlow, ratedHead, ratedHead*1.3)
}

// ThreePoint derives a head curve from the rated point and an explicit
// shutoff head, with the linear term pinned to zero. The quadratic
// coefficient is solved numerically.
func ThreePoint(ratedFlow, ratedHead, shutoffHead float64) (QuadCoeffs, error) {
	if ratedFlow == 0 {
		return QuadCoeffs{}, fmt.Errorf("rated flow must be non-zero")
	}
	f := func(a float64) float64 {
		return QuadCoeffs{A: a, B: 0, C: shutoffHead}.Eval(ratedFlow) - ratedHead
	}
	a, err := solve.Root(f, 1)
	if err != nil {
		return QuadCoeffs{}, fmt.Errorf("head curve coefficient: %w", err)
	}
	return QuadCoeffs{A: a, B: 0, C: shutoffHead}, nil
}

// MultiPoint fits a, b, c to an arbitrary point set by least squares.
// When the first point sits at zero flow its head is taken as the exact
// shutoff head and only a and b are fitted.
func MultiPoint(flows, heads []float64) (QuadCoeffs, error) {
	if len(flows) != len(heads) {
		return QuadCoeffs{}, fmt.Errorf("flow and head slices must be of the same length")
	}
	if len(flows) == 0 {
		return QuadCoeffs{}, fmt.Errorf("flow and head slices must not be empty")
	}

	pinC := flows[0] == 0
	cols := 3
	if pinC {
		cols = 2
	}

	n := len(flows)
	a := mat.NewDense(n, cols, nil)
	y := mat.NewDense(n, 1, nil)
	for i, q := range flows {
		a.Set(i, 0, q*q)
		a.Set(i, 1, q)
		if !pinC {
			a.Set(i, 2, 1)
		}
		h := heads[i]
		if pinC {
			h -= heads[0]
		}
		y.Set(i, 0, h)
	}

	var qr mat.QR
	qr.Factorize(a)
	var x mat.Dense
	if err := qr.SolveTo(&x, false, y); err != nil {
		return QuadCoeffs{}, fmt.Errorf("least squares fit: %w", err)
	}

	coeffs := QuadCoeffs{A: x.At(0, 0), B: x.At(1, 0)}
	if pinC {
		coeffs.C = heads[0]
	} else {
		coeffs.C = x.At(2, 0)
	}
	return coeffs, nil
}
