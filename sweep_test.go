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
	"sync/atomic"
	"testing"
)

func TestNewArray(t *testing.T) {
	a := newArray([3][]float64{{1, 2}, {1, 2, 3}, {1, 2, 3, 4}})
	if len(a.Elements) != 24 || len(a.Shape) != 3 {
		t.Fatalf("shape %v with %d elements", a.Shape, len(a.Elements))
	}
	for n := range a.Elements {
		idx := a.IndexNd(n)
		if want := (idx[0]*3+idx[1])*4 + idx[2]; want != n || a.Index1d(idx...) != n {
			t.Fatalf("cell %d maps to %v", n, idx)
		}
	}
	a.Set(5, 1, 2, 3)
	a.Set(5, 0, 1, 3)
	if v, n := maxCell(a); v != 5 || n != a.Index1d(0, 1, 3) {
		t.Errorf("max: have (%g, %d), want the first occurrence", v, n)
	}
}

func TestCalculations(t *testing.T) {
	const n = 1000
	var sum int64
	seen := make([]int32, n)
	Calculations(n, func(_, c int) {
		atomic.AddInt64(&sum, int64(c))
		atomic.AddInt32(&seen[c], 1)
	})
	if sum != n*(n-1)/2 {
		t.Errorf("sum: have %d, want %d", sum, n*(n-1)/2)
	}
	for c, s := range seen {
		if s != 1 {
			t.Fatalf("cell %d calculated %d times", c, s)
		}
	}
	if p := Calculations(0, func(_, _ int) { t.Error("no cells to calculate") }); p != 0 {
		t.Errorf("have %d workers for no cells", p)
	}
}

func TestSweepSparse(t *testing.T) {
	m := testModel(t, testConfig())
	r, err := m.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	c := m.Catalyst()
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	if total != 4 || r.Counts[NoIntersection] != 0 {
		t.Errorf("status counts: %v", r.Counts)
	}
	for n := range r.Efficiency.Elements {
		if !r.Computed[n] {
			t.Fatalf("cell %v not computed", r.Bandgaps(n))
		}
		j, fe := r.Current.Elements[n], r.FaradaicEfficiency.Elements[n]
		if !(j > 0) || fe != c.PeakFE {
			t.Errorf("%v: operating point (%g mA/cm², %g%%)", r.Bandgaps(n), j, fe)
		}
		if different(r.Efficiency.Elements[n], SolarToEthylene(j, fe, r.Power.Elements[n]), testTolerance) {
			t.Errorf("%v: efficiency %g", r.Bandgaps(n), r.Efficiency.Elements[n])
		}
		if different(r.Production.Elements[n], EthyleneProduction(j, fe, 1), testTolerance) {
			t.Errorf("%v: production %g", r.Bandgaps(n), r.Production.Elements[n])
		}
		if different(r.Extra.Elements[n], c.PeakJ/j, testTolerance) {
			t.Errorf("%v: concentrator %g", r.Bandgaps(n), r.Extra.Elements[n])
		}
	}
	best, _ := maxCell(r.Efficiency)
	if r.Efficiency.Elements[r.Best] != best {
		t.Errorf("best cell %d does not have the highest efficiency", r.Best)
	}
	if r.Concentrator != r.Extra.Elements[r.Best] {
		t.Errorf("concentrator: have %g, want %g", r.Concentrator, r.Extra.Elements[r.Best])
	}
	if len(r.BestBandgaps) != 2 {
		t.Errorf("best bandgaps: %v", r.BestBandgaps)
	}
}

func TestSweepSkipsInvalidStacks(t *testing.T) {
	cfg := testConfig()
	cfg.Bandgaps = []Range{{2.0, 2.5, 0.25}, {1.5, 2.25, 0.25}}
	m := testModel(t, cfg)
	r, err := m.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	computed := 0
	for n, ok := range r.Computed {
		if ok {
			computed++
			continue
		}
		if b := r.Bandgaps(n); b[0] != 2.0 || b[1] != 2.0 {
			t.Errorf("cell %v should have been computed", b)
		}
		if r.Efficiency.Elements[n] != 0 {
			t.Errorf("skipped cell has efficiency %g", r.Efficiency.Elements[n])
		}
	}
	if computed != 5 {
		t.Errorf("have %d computed cells, want 5", computed)
	}
}

func TestSweepOneOnOne(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = OneOnOne
	cfg.FixedEthyleneOutput = false
	m := testModel(t, cfg)
	r, err := m.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	c := m.Catalyst()
	for n := range r.Efficiency.Elements {
		j, fe := r.Current.Elements[n], r.FaradaicEfficiency.Elements[n]
		if r.Status[n] == NoIntersection {
			t.Errorf("%v: no intersection", r.Bandgaps(n))
			continue
		}
		if fe != c.FaradaicEfficiencyAt(j) {
			t.Errorf("%v: Faradaic efficiency %g, want %g", r.Bandgaps(n), fe, c.FaradaicEfficiencyAt(j))
		}
		if r.Extra.Elements[n] != 0 {
			t.Errorf("%v: extra %g", r.Bandgaps(n), r.Extra.Elements[n])
		}
	}
	if r.Concentrator != 1 {
		t.Errorf("concentrator: have %g, want 1", r.Concentrator)
	}
}

func TestSweepHydrogen(t *testing.T) {
	cfg := testConfig()
	cfg.Chemistry = HydrogenEvolution
	cfg.Bandgaps = []Range{{1.75, 2.25, 0.25}, {1.0, 1.5, 0.25}}
	m := testModel(t, cfg)
	r, err := m.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	for n := range r.Efficiency.Elements {
		j := r.Current.Elements[n]
		if r.Status[n] == NoIntersection || !(j > 0) {
			t.Errorf("%v: no operating point", r.Bandgaps(n))
			continue
		}
		if different(r.Efficiency.Elements[n], SolarToHydrogen(j, r.Power.Elements[n]), testTolerance) {
			t.Errorf("%v: efficiency %g", r.Bandgaps(n), r.Efficiency.Elements[n])
		}
		if r.Production.Elements[n] != 0 || r.FaradaicEfficiency.Elements[n] != 100 {
			t.Errorf("%v: production %g, FE %g", r.Bandgaps(n), r.Production.Elements[n], r.FaradaicEfficiency.Elements[n])
		}
	}
}

func TestSweepThreeJunctions(t *testing.T) {
	cfg := testConfig()
	cfg.Bandgaps = []Range{{2.0, 2.5, 0.25}, {1.5, 2.0, 0.25}, {1.0, 1.5, 0.25}}
	m := testModel(t, cfg)
	r, err := m.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Efficiency.Elements) != 8 || len(r.BestBandgaps) != 3 {
		t.Fatalf("have %d cells, best %v", len(r.Efficiency.Elements), r.BestBandgaps)
	}
	for n, ok := range r.Computed {
		if !ok {
			t.Errorf("cell %v not computed", r.Bandgaps(n))
		}
	}
}

func TestSweepSolarCells(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = SolarCells
	m := testModel(t, cfg)
	r, err := m.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	for n, e := range r.Efficiency.Elements {
		if !(e > 0 && e < 60) || e != r.SolarEfficiency.Elements[n] {
			t.Errorf("%v: efficiency %g, solar efficiency %g", r.Bandgaps(n), e, r.SolarEfficiency.Elements[n])
		}
	}
}

func TestSweepPVEC(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = PVEC
	m := testModel(t, cfg)
	r, err := m.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	c := m.Catalyst()
	for n, e := range r.Efficiency.Elements {
		want := r.SolarEfficiency.Elements[n] * c.ElectrolyzerEfficiency() * c.PeakFE / 100
		if different(e, want, testTolerance) {
			t.Errorf("%v: efficiency %g, want %g", r.Bandgaps(n), e, want)
		}
		if different(r.Extra.Elements[n], c.PeakJ/r.Current.Elements[n], testTolerance) {
			t.Errorf("%v: area ratio %g", r.Bandgaps(n), r.Extra.Elements[n])
		}
		if r.FaradaicEfficiency.Elements[n] != c.PeakFE {
			t.Errorf("%v: Faradaic efficiency %g", r.Bandgaps(n), r.FaradaicEfficiency.Elements[n])
		}
	}
	if different(c.ElectrolyzerVoltage(), 1.23+0.327+0.615+0.1, testTolerance) {
		t.Errorf("electrolyzer voltage %g", c.ElectrolyzerVoltage())
	}
}
