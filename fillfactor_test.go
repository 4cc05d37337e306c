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

import (
	"math"
	"testing"
)

func TestFillFactor(t *testing.T) {
	c := Curve{V: []float64{0, 1, 2}, J: []float64{1, 1, 0}}
	if ff := FillFactor(c); different(ff, 0.5, testTolerance) {
		t.Errorf("have %g, want 0.5", ff)
	}
	// Without an open-circuit point the largest voltage is used.
	c = Curve{V: []float64{0, 1, 2}, J: []float64{1, 1, 1}}
	if ff := FillFactor(c); different(ff, 1, testTolerance) {
		t.Errorf("have %g, want 1", ff)
	}
	if ff := FillFactor(Curve{}); ff != 0 {
		t.Errorf("empty curve: have %g, want 0", ff)
	}
}

func TestMatchFillFactor(t *testing.T) {
	s := referenceGlobal(t)
	for _, eg := range []float64{1.1, 1.6, 2.2} {
		r, err := MatchFillFactor(s, eg, 0.85, Top)
		if err != nil {
			t.Fatal(err)
		}
		if r.Status != Converged {
			t.Errorf("%g eV: status %v after %d iterations, ff=%g", eg, r.Status, r.Iterations, r.FF)
		}
		if math.Abs(r.FF-0.85) > ffTolerance {
			t.Errorf("%g eV: fill factor %g", eg, r.FF)
		}
		if !(r.Rs > 0) {
			t.Errorf("%g eV: series resistance %g", eg, r.Rs)
		}
		if different(FillFactor(r.Curve), r.FF, testTolerance) {
			t.Errorf("%g eV: reported fill factor does not match curve", eg)
		}
		if r.Suspect() {
			t.Errorf("%g eV: open-circuit voltage shifted by %g V", eg, r.VocShift)
		}
	}
}

func TestMatchFillFactorTargets(t *testing.T) {
	s := referenceGlobal(t)
	for _, target := range []float64{0.65, 0.75, 0.85} {
		for _, eg := range Arange(0.6, 2.55, 0.1) {
			j, err := NewJunction(s, eg, Top)
			if err != nil {
				t.Fatal(err)
			}
			ideal := FillFactor(j.Curve(0, 0))
			r := j.MatchFillFactor(target)
			switch {
			case ideal <= target:
				if r.Status != Unmodified || r.FF != ideal {
					t.Errorf("ff %g, %.2f eV: status %v, fill factor %g, want the ideal %g", target, eg, r.Status, r.FF, ideal)
				}
			case math.Abs(r.FF-target) > ffTolerance:
				t.Errorf("ff %g, %.2f eV: fill factor %g after %d iterations", target, eg, r.FF, r.Iterations)
			case r.Iterations > ffMaxIterations:
				t.Errorf("ff %g, %.2f eV: %d iterations", target, eg, r.Iterations)
			}
			for i := 1; i < len(r.J); i++ {
				if r.J[i] > r.J[i-1]+1e-9*math.Abs(r.J[0]) {
					t.Errorf("ff %g, %.2f eV: current rises from %g to %g at %g V", target, eg, r.J[i-1], r.J[i], r.V[i])
					break
				}
			}
		}
	}
}

func TestMatchFillFactorUnmodified(t *testing.T) {
	s := referenceGlobal(t)
	j, err := NewJunction(s, 1.6, Top)
	if err != nil {
		t.Fatal(err)
	}
	r := j.MatchFillFactor(0.99)
	if r.Status != Unmodified || r.Rs != 0 || r.Iterations != 0 {
		t.Errorf("have status %v, rs %g, %d iterations; want an unmodified curve", r.Status, r.Rs, r.Iterations)
	}
	if r.FF > 0.99 {
		t.Errorf("ideal fill factor %g should be below 0.99", r.FF)
	}
}
