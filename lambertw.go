/*
Copyright © 2025 the PEC authors.
This file is part of PEC.

PEC is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PEC is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PEC.  If not, see <http://www.gnu.org/licenses/>.*/

package pec

import "math"

// LambertW returns the principal branch of the Lambert W function,
// the w satisfying w·exp(w) = x, for x >= 0. It returns NaN for
// negative x.
func LambertW(x float64) float64 {
	switch {
	case math.IsNaN(x) || x < 0:
		return math.NaN()
	case x == 0:
		return 0
	case math.IsInf(x, 1):
		return math.Inf(1)
	}
	return lambertWExp(math.Log(x))
}

// lambertWExp returns W(exp(l)). Working with the logarithm of the
// argument keeps the diode equation finite when exp(l) would
// overflow a float64. It solves w + ln(w) = l with Newton's method.
func lambertWExp(l float64) float64 {
	if math.IsInf(l, 1) {
		return math.Inf(1)
	}
	if l < -20 {
		// W(x) = x - x² + O(x³) near zero.
		x := math.Exp(l)
		return x - x*x
	}
	var w float64
	if l > 1 {
		w = l - math.Log(l)
	} else {
		w = math.Log1p(math.Exp(l))
	}
	for i := 0; i < 100; i++ {
		step := (w + math.Log(w) - l) * w / (w + 1)
		wn := w - step
		if wn <= 0 {
			wn = w / 2
		}
		if math.Abs(wn-w) <= 1e-15*math.Max(1, math.Abs(wn)) {
			return wn
		}
		w = wn
	}
	return w
}
