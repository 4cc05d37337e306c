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

func TestIsocurves(t *testing.T) {
	m := testModel(t, testConfig())
	iso, err := m.Isocurves([]float64{-0.4, -0.8}, 60, []float64{30, 60})
	if err != nil {
		t.Fatal(err)
	}
	if !(iso.Current[0] >= iso.Current[1]) || !(iso.Current[1] > 0) {
		t.Errorf("a more negative peak voltage should not raise the current: %v", iso.Current)
	}
	for i, j := range iso.Current {
		if different(iso.Production[1][i], 2*iso.Production[0][i], testTolerance) {
			t.Errorf("production should scale with Faradaic efficiency: %v", iso.Production)
		}
		if different(iso.Efficiency[1][i], SolarToEthylene(j, 60, 100), testTolerance) {
			t.Errorf("efficiency %g", iso.Efficiency[1][i])
		}
	}
	if m.Config().CO2RR != OIIDCu {
		t.Error("isocurves should not change the model configuration")
	}
}

func TestIsocurvesHydrogen(t *testing.T) {
	cfg := testConfig()
	cfg.Chemistry = HydrogenEvolution
	m := testModel(t, cfg)
	if _, err := m.Isocurves(nil, 60, nil); err == nil {
		t.Error("expected an error")
	}
}
