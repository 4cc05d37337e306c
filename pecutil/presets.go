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

package pecutil

import (
	"fmt"
	"sort"

	"github.com/spatialmodel/pec"
)

// scenario holds the settings of a named cell scenario.
type scenario struct {
	mode      pec.Mode
	chemistry pec.Chemistry
	oer       pec.OERCatalyst
	her       pec.HERCatalyst
	co2rr     pec.CO2RRCatalyst
	fluidR    float64 // Ω cm²
	ffGoal    float64
	junctions int
}

// co2Scenario returns a CO2 reduction scenario with a NiFeOx anode at
// pH 14, 5 Ω cm² of electrolyte resistance and a fill factor of 0.85.
func co2Scenario(mode pec.Mode, cat pec.CO2RRCatalyst) scenario {
	return scenario{
		mode:      mode,
		chemistry: pec.CO2Reduction,
		oer:       pec.NiFeOxPH14,
		her:       pec.Platinum,
		co2rr:     cat,
		fluidR:    5,
		ffGoal:    0.85,
		junctions: 2,
	}
}

func herScenario(her pec.HERCatalyst, oer pec.OERCatalyst) scenario {
	return scenario{
		mode:      pec.OneOnOne,
		chemistry: pec.HydrogenEvolution,
		oer:       oer,
		her:       her,
		co2rr:     pec.OIIDCu,
		fluidR:    5,
		ffGoal:    0.85,
		junctions: 2,
	}
}

// scenarios holds the named scenarios. The hydrogen evolution scenarios
// reproduce Hu et al., Energy Environ. Sci. 6, 2984 (2013).
var scenarios = map[string]scenario{
	"Best_HER_Hu_2013":             herScenario(pec.Platinum, pec.RuO2Neutral),
	"Common_earth_HER_Hu_2013":     herScenario(pec.CommonNiMo, pec.NiFeOxNeutral),
	"Scenario F: no concentration": co2Scenario(pec.OneOnOne, pec.OIIDCu),
	"Scenario A: sparse coverage":  co2Scenario(pec.SparseCoverage, pec.OIIDCu),
	"FF 0.75 sparse coverage": func() scenario {
		s := co2Scenario(pec.SparseCoverage, pec.OIIDCu)
		s.ffGoal = 0.75
		return s
	}(),
	"FF 0.65 sparse coverage": func() scenario {
		s := co2Scenario(pec.SparseCoverage, pec.OIIDCu)
		s.ffGoal = 0.65
		return s
	}(),
	"Scenario B: solar concentration": func() scenario {
		s := co2Scenario(pec.SolarConcentration, pec.OIIDCu)
		s.fluidR = 1
		return s
	}(),
	"Scenario C: PV-EC":   co2Scenario(pec.PVEC, pec.OIIDCu),
	"CuAg-NiFeOx_high_pH": co2Scenario(pec.SparseCoverage, pec.CuAg),
	"Scenario T: sparse coverage with a triple junction": func() scenario {
		s := co2Scenario(pec.SparseCoverage, pec.OIIDCu)
		s.junctions = 3
		return s
	}(),
	"CO2RR_Greatzel2022_NiFeOx_high_pH":                    co2Scenario(pec.SparseCoverage, pec.Greatzel2022),
	"OD(I)-Cu_NiFeOx_high_pH_sparse_coverage":              co2Scenario(pec.SparseCoverage, pec.OIDCu),
	"Solar cells & Electrolyzers OD(II)-Cu_NiFeOx_high_pH": co2Scenario(pec.SparseCoverage, pec.Variable),
	"VariableCO2RRcatalyst":                                co2Scenario(pec.SparseCoverage, pec.Variable),
}

// ScenarioNames returns the names of the available scenarios in
// alphabetical order.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for n := range scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ApplyScenario sets the catalysts, mode, resistance, fill factor and
// bandgap grid of c to those of the named scenario. Other fields of c
// are left unchanged.
func ApplyScenario(c *pec.Config, name string) error {
	s, ok := scenarios[name]
	if !ok {
		return fmt.Errorf("pecutil: invalid scenario %q; options are %q", name, ScenarioNames())
	}
	c.Mode = s.mode
	c.Chemistry = s.chemistry
	c.OER = s.oer
	c.HER = s.her
	c.CO2RR = s.co2rr
	c.FluidResistance = s.fluidR
	c.FFGoal = s.ffGoal
	c.Bandgaps = pec.DefaultBandgaps(s.mode, s.chemistry, s.junctions)
	return nil
}
