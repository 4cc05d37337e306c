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
	"testing"
)

func TestVaryIllumination(t *testing.T) {
	m := testModel(t, testConfig())
	const conc = 10.
	v, err := m.VaryIllumination([]float64{2.0, 1.5}, conc, []float64{0.5, 1})
	if err != nil {
		t.Fatal(err)
	}
	c := m.Catalyst()
	for i, f := range v.X {
		if different(v.Insolation[i], f*globalStandardPower, testTolerance) {
			t.Errorf("factor %g: insolation %g", f, v.Insolation[i])
		}
		if v.Status[i] == NoIntersection {
			t.Fatalf("factor %g: no intersection", f)
		}
		if different(v.ReductionCurrent[i], v.Current[i]*conc, testTolerance) {
			t.Errorf("factor %g: reduction current %g", f, v.ReductionCurrent[i])
		}
		if v.FaradaicEfficiency[i] != c.FaradaicEfficiencyAt(v.Current[i]*conc) {
			t.Errorf("factor %g: Faradaic efficiency %g", f, v.FaradaicEfficiency[i])
		}
	}
	if !(v.Current[1] > v.Current[0]) {
		t.Errorf("current should grow with light: %v", v.Current)
	}

	if _, err := m.VaryIllumination([]float64{2.0, 1.5}, 0, nil); err == nil {
		t.Error("expected an error for a zero concentrator")
	}
	if _, err := m.VaryIllumination([]float64{2.0, 1.5}, conc, []float64{0}); err == nil {
		t.Error("expected an error for a zero factor")
	}
}

func TestVaryIlluminationMirror(t *testing.T) {
	cfg := testConfig()
	cfg.MirrorFactor = 3
	m := testModel(t, cfg)
	v, err := m.VaryIllumination([]float64{2.0, 1.5}, 1, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if different(v.Insolation[0], 3*directStandardPower, testTolerance) {
		t.Errorf("insolation: have %g, want %g", v.Insolation[0], 3*directStandardPower)
	}
}

func TestDegrade(t *testing.T) {
	m := testModel(t, testConfig())
	const conc = 10.
	v, err := m.Degrade([]float64{2.0, 1.5}, conc, []float64{0, 20, 50})
	if err != nil {
		t.Fatal(err)
	}
	for i, d := range v.X {
		if v.Status[i] == NoIntersection {
			t.Fatalf("%g%%: no intersection", d)
		}
		f := 100 / (100 - d)
		if different(v.ReductionCurrent[i], v.Current[i]*conc*f, testTolerance) {
			t.Errorf("%g%%: reduction current %g", d, v.ReductionCurrent[i])
		}
		if i > 0 && v.Current[i] > v.Current[i-1]+1e-9 {
			t.Errorf("%g%%: current %g should not exceed %g", d, v.Current[i], v.Current[i-1])
		}
	}

	// Undegraded, the demand matches the illumination variation at one
	// sun.
	u, err := m.VaryIllumination([]float64{2.0, 1.5}, conc, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if absDifferent(v.Current[0], u.Current[0], 1e-6) {
		t.Errorf("undegraded current %g, want %g", v.Current[0], u.Current[0])
	}

	for _, d := range []float64{-1, 100} {
		if _, err := m.Degrade([]float64{2.0, 1.5}, conc, []float64{d}); err == nil {
			t.Errorf("%g%%: expected an error", d)
		}
	}
}
