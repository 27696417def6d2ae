// Package solve provides the scalar root finder shared by the curve
// fitter and the IRR calculation.
package solve

import (
	"errors"
	"math"
)

// ErrNoRoot is returned when no sign change can be bracketed or the
// iteration budget runs out before the tolerance is met.
var ErrNoRoot = errors.New("root not found")

const (
	defaultTol     = 1e-9
	defaultMaxIter = 200
)

// Bisect finds a root of f inside [lo, hi] by bisection. f(lo) and f(hi)
// must have opposite signs.
func Bisect(f func(float64) float64, lo, hi, tol float64) (float64, error) {
	if tol <= 0 {
		tol = defaultTol
	}
	flo, fhi := f(lo), f(hi)
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	if math.IsNaN(flo) || math.IsNaN(fhi) || flo*fhi > 0 {
		return 0, ErrNoRoot
	}
	for i := 0; i < defaultMaxIter; i++ {
		mid := lo + (hi-lo)/2
		fm := f(mid)
		if math.Abs(fm) <= tol || (hi-lo)/2 < tol {
			return mid, nil
		}
		if flo*fm < 0 {
			hi = mid
		} else {
			lo, flo = mid, fm
		}
	}
	return 0, ErrNoRoot
}

// Root brackets a root of f by expanding an interval around the initial
// guess, then bisects. Used where no natural bracket is known up front.
func Root(f func(float64) float64, guess float64) (float64, error) {
	step := math.Max(math.Abs(guess), 1)
	lo, hi := guess-step, guess+step
	for i := 0; i < 60; i++ {
		flo, fhi := f(lo), f(hi)
		if !math.IsNaN(flo) && !math.IsNaN(fhi) && flo*fhi <= 0 {
			return Bisect(f, lo, hi, defaultTol)
		}
		step *= 2
		lo -= step
		hi += step
	}
	return 0, ErrNoRoot
}
