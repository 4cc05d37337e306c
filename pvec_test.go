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

func TestElectrolyzer(t *testing.T) {
	c, err := NewCatalyst(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	v := c.ElectrolyzerVoltage()
	want := OxygenEvolutionPotential + c.OER.RefOverpotential - c.PeakV + membraneLoss
	if different(v, want, testTolerance) {
		t.Errorf("voltage: have %g, want %g", v, want)
	}
	if v <= ethyleneCellVoltage {
		t.Errorf("electrolyzer voltage %g should exceed the cell voltage %g", v, ethyleneCellVoltage)
	}
	eff := c.ElectrolyzerEfficiency()
	if !(eff > 0 && eff < 1) || math.IsNaN(eff) {
		t.Errorf("efficiency %g should be in (0, 1)", eff)
	}
}

func TestAreaRatio(t *testing.T) {
	tests := []struct{ peakJ, j, want float64 }{
		{peakJ: 10, j: 5, want: 2},
		{peakJ: 10, j: 0, want: 1000},
		{peakJ: 10, j: -1, want: 1000},
	}
	for _, test := range tests {
		if have := areaRatio(test.peakJ, test.j); different(have, test.want, testTolerance) {
			t.Errorf("areaRatio(%g, %g): have %g, want %g", test.peakJ, test.j, have, test.want)
		}
	}
}
